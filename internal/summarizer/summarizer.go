// Package summarizer produces AI summaries and section breakdowns for uploaded papers.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"paperapi/internal/config"
	"paperapi/internal/model"
	"paperapi/internal/pdfdoc"
)

// Prompt is sent ahead of every document.
const Prompt = "Please analyze this AI research white paper and provide: " +
	"1) A comprehensive summary (200-300 words) that covers the main research question, methodology, key findings, and implications. " +
	"2) A detailed section-by-section breakdown with explanations for each major section (Introduction, Methodology, Results, Conclusion, etc.). " +
	"Format the response as JSON with 'summary' and 'sections' fields. " +
	"The sections should be an array of objects with 'title' and 'content' properties."

var (
	// ErrNotConfigured is returned when no generator is available.
	ErrNotConfigured = errors.New("ai summarizer not configured")
	// ErrMissingURL is returned by SummarizeURL for an empty url.
	ErrMissingURL = errors.New("pdf url is required")
	// ErrTooLarge is returned by SummarizeURL when the remote file exceeds the download limit.
	ErrTooLarge = errors.New("pdf exceeds download limit")
)

// Outcome labels.
const (
	OutcomeParsed   = "parsed"
	OutcomeRaw      = "raw"
	OutcomeFallback = "fallback"
)

// Document is a paper to summarize.
type Document struct {
	PDF         []byte
	Title       string
	Description string
}

// Result is a summary. Processed is false when the canned fallback was returned.
type Result struct {
	Summary   string          `json:"summary"`
	Sections  []model.Section `json:"sections"`
	Processed bool            `json:"processed"`
}

// Metrics counts summarization outcomes.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paper_summaries_total",
				Help: "Total number of paper summarizations by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.outcomes); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

// Summarizer turns PDFs into summaries. A nil generator makes every call fail with ErrNotConfigured.
type Summarizer struct {
	gen         Generator
	client      *http.Client
	inlineLimit int64
	maxDownload int64
	timeout     time.Duration
	metrics     *Metrics
	logger      zerolog.Logger
}

// New builds a Summarizer. client defaults to an otelhttp instrumented client.
func New(gen Generator, cfg config.AIConfig, client *http.Client, metrics *Metrics, logger zerolog.Logger) *Summarizer {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	limit := int64(cfg.InlineLimitMB) << 20
	if limit <= 0 {
		limit = 18 << 20
	}
	maxDownload := int64(cfg.MaxDownloadMB) << 20
	if maxDownload <= 0 {
		maxDownload = 50 << 20
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Summarizer{
		gen:         gen,
		client:      client,
		inlineLimit: limit,
		maxDownload: maxDownload,
		timeout:     timeout,
		metrics:     metrics,
		logger:      logger.With().Str("component", "summarizer").Logger(),
	}
}

// Configured reports whether a generator is available.
func (s *Summarizer) Configured() bool {
	return s != nil && s.gen != nil
}

// Summarize analyzes doc. Model failures yield the fallback result, not an error.
func (s *Summarizer) Summarize(ctx context.Context, doc Document) (*Result, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	text, err := s.analyze(ctx, doc.PDF)
	if err != nil {
		s.logger.Error().Err(err).Str("title", doc.Title).Msg("summarize_failed")
		s.metrics.observe(OutcomeFallback)
		return Fallback(doc.Title, doc.Description), nil
	}
	return s.result(text), nil
}

// SummarizeURL downloads the PDF at pdfURL and summarizes it.
// Download and model failures yield the fallback result. A file over the download limit fails with ErrTooLarge.
func (s *Summarizer) SummarizeURL(ctx context.Context, pdfURL, title, description string) (*Result, error) {
	if pdfURL == "" {
		return nil, ErrMissingURL
	}
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	data, err := s.download(ctx, pdfURL)
	if errors.Is(err, ErrTooLarge) {
		s.logger.Warn().Str("pdf_url", pdfURL).Int64("limit", s.maxDownload).Msg("download_too_large")
		return nil, err
	}
	if err != nil {
		s.logger.Error().Err(err).Str("pdf_url", pdfURL).Msg("download_failed")
		s.metrics.observe(OutcomeFallback)
		return Fallback(title, description), nil
	}
	return s.Summarize(ctx, Document{PDF: data, Title: title, Description: description})
}

func (s *Summarizer) result(text string) *Result {
	summary, sections, parsed := ParseResponse(text)
	if parsed {
		s.metrics.observe(OutcomeParsed)
	} else {
		s.metrics.observe(OutcomeRaw)
	}
	return &Result{Summary: summary, Sections: sections, Processed: true}
}

func (s *Summarizer) analyze(ctx context.Context, pdf []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if int64(len(pdf)) <= s.inlineLimit {
		return s.gen.GenerateText(ctx, genai.Text(Prompt), genai.Blob{MIMEType: "application/pdf", Data: pdf})
	}

	text, err := pdfdoc.ExtractText(pdf)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", errors.New("extract text: document has no text layer")
	}
	return s.gen.GenerateText(ctx, genai.Text(Prompt), genai.Text(text))
}

func (s *Summarizer) download(ctx context.Context, pdfURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download pdf: status %d", resp.StatusCode)
	}
	if resp.ContentLength > s.maxDownload {
		return nil, ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxDownload+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxDownload {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Fallback is the placeholder returned while a real analysis is unavailable.
func Fallback(title, description string) *Result {
	if title == "" {
		title = "this paper"
	}
	summaryTail := description
	if summaryTail == "" {
		summaryTail = "This white paper contains important research findings in AI."
	}
	overview := description
	if overview == "" {
		overview = "This research paper contributes to the field of artificial intelligence with novel approaches and insights."
	}
	return &Result{
		Summary: fmt.Sprintf("AI-powered analysis for \"%s\" is currently being processed. %s "+
			"Please check back later for the complete AI-generated summary and section explanations.", title, summaryTail),
		Sections:  []model.Section{{Title: "Overview", Content: overview}},
		Processed: false,
	}
}

// UploadFallback is stored with a new paper when the summarizer is unavailable.
func UploadFallback(title, description string) *Result {
	summaryTail := description
	if summaryTail == "" {
		summaryTail = "The paper contains valuable insights and methodologies relevant to the AI research community."
	}
	overview := description
	if overview == "" {
		overview = "This research contributes to advancing the field of artificial intelligence."
	}
	return &Result{
		Summary: fmt.Sprintf("This white paper \"%s\" presents important research in artificial intelligence. %s",
			title, summaryTail),
		Sections:  []model.Section{{Title: "Overview", Content: overview}},
		Processed: false,
	}
}

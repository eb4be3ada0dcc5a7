package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"paperapi/internal/cache"
	"paperapi/internal/config"
	"paperapi/internal/model"
	"paperapi/internal/pdfdoc"
	"paperapi/internal/repository"
	"paperapi/internal/storage"
	"paperapi/internal/summarizer"
)

const (
	messagePublished = "Paper published successfully"
	messageSubmitted = "Submission received and will be reviewed by admin"

	defaultPresentationType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Summarizer produces the AI summary stored with a paper.
type Summarizer interface {
	Summarize(ctx context.Context, doc summarizer.Document) (*summarizer.Result, error)
	SummarizeURL(ctx context.Context, pdfURL, title, description string) (*summarizer.Result, error)
}

// FilePayload is one uploaded file held in memory.
type FilePayload struct {
	Data        []byte
	ContentType string
}

// DecodeDataURL parses a base64 data URL such as "data:application/pdf;base64,JVBER...".
func DecodeDataURL(s string) (*FilePayload, error) {
	header, data, found := strings.Cut(s, ",")
	if !found || !strings.HasPrefix(header, "data:") {
		return nil, validationError("file must be a base64 data URL")
	}
	meta := strings.TrimPrefix(header, "data:")
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, validationError("file must be base64 encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, validationError("file is not valid base64")
	}
	return &FilePayload{Data: raw, ContentType: mediaType}, nil
}

// UploadRequest is a paper with its files, however it arrived.
type UploadRequest struct {
	Title        string
	Description  string
	Author       string
	CategoryID   *int64
	PDF          *FilePayload
	Presentation *FilePayload
	Audio        *FilePayload
}

// UploadedFiles lists the public URLs of the stored objects.
type UploadedFiles struct {
	PDFURL          string `json:"pdfUrl"`
	PresentationURL string `json:"presentationUrl,omitempty"`
	AudioURL        string `json:"audioUrl,omitempty"`
}

// UploadResult carries either the published paper or the pending submission.
type UploadResult struct {
	Paper         *model.WhitePaper `json:"paper,omitempty"`
	Submission    *model.Submission `json:"submission,omitempty"`
	UploadedFiles UploadedFiles     `json:"uploadedFiles"`
	AIProcessed   bool              `json:"aiProcessed"`
	Message       string            `json:"message"`
}

// SubmissionService runs the upload pipeline.
type SubmissionService interface {
	// Upload stores the files, summarizes the PDF and writes the row.
	// Admins publish directly; everyone else creates a pending submission.
	// Objects stored before a failed insert are deleted again.
	Upload(ctx context.Context, uploader *model.Profile, req UploadRequest) (*UploadResult, error)

	// Summarize analyzes an already stored PDF without persisting anything.
	Summarize(ctx context.Context, pdfURL, title, description string) (*summarizer.Result, error)
}

type submissionService struct {
	store       storage.Storage
	papers      repository.PaperRepository
	submissions repository.SubmissionRepository
	summarizer  Summarizer
	cache       cache.Cache
	buckets     config.StorageConfig
	maxPDFBytes int64
	logger      zerolog.Logger
	now         func() time.Time
}

func NewSubmissionService(
	store storage.Storage,
	papers repository.PaperRepository,
	submissions repository.SubmissionRepository,
	sum Summarizer,
	c cache.Cache,
	buckets config.StorageConfig,
	maxPDFBytes int64,
	logger zerolog.Logger,
) SubmissionService {
	if c == nil {
		c = cache.Noop{}
	}
	return &submissionService{
		store:       store,
		papers:      papers,
		submissions: submissions,
		summarizer:  sum,
		cache:       c,
		buckets:     buckets,
		maxPDFBytes: maxPDFBytes,
		logger:      logger.With().Str("component", "submission").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) validate(req *UploadRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" || req.PDF == nil || len(req.PDF.Data) == 0 {
		return validationError("title and PDF file are required")
	}
	if req.Author == "" {
		req.Author = "Unknown"
	}
	if req.CategoryID != nil && *req.CategoryID <= 0 {
		req.CategoryID = nil
	}

	if mt, _, err := mime.ParseMediaType(req.PDF.ContentType); err != nil || mt != "application/pdf" {
		return validationError("PDF file must have content type application/pdf")
	}
	if s.maxPDFBytes > 0 && int64(len(req.PDF.Data)) > s.maxPDFBytes {
		return validationError("PDF file exceeds %d MB", s.maxPDFBytes>>20)
	}
	if _, err := pdfdoc.Inspect(req.PDF.Data); err != nil {
		return validationError("PDF file could not be read")
	}
	return nil
}

// objectBase names every object of one upload: <unix millis>-<title slug>.
func (s *submissionService) objectBase(title string) string {
	name := slug.Make(title)
	if name == "" {
		name = "paper"
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + name
}

type storedObject struct {
	bucket, key string
}

func (s *submissionService) put(ctx context.Context, bucket, key string, f *FilePayload, contentType string) (string, error) {
	_, err := s.store.Put(ctx, bucket, key, bytes.NewReader(f.Data), storage.PutObjectOptions{
		Size:        int64(len(f.Data)),
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.store.PublicURL(bucket, key), nil
}

func (s *submissionService) Upload(ctx context.Context, uploader *model.Profile, req UploadRequest) (*UploadResult, error) {
	if uploader == nil {
		return nil, validationError("uploader is required")
	}
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	base := s.objectBase(req.Title)
	var stored []storedObject
	files := UploadedFiles{}

	pdfKey := base + ".pdf"
	pdfURL, err := s.put(ctx, s.buckets.PapersBucket, pdfKey, req.PDF, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("PDF upload failed: %w", err)
	}
	stored = append(stored, storedObject{s.buckets.PapersBucket, pdfKey})
	files.PDFURL = pdfURL

	if req.Presentation != nil && len(req.Presentation.Data) > 0 {
		contentType := req.Presentation.ContentType
		if contentType == "" {
			contentType = defaultPresentationType
		}
		ext := ".pptx"
		if strings.Contains(contentType, "pdf") {
			ext = ".pdf"
		}
		key := base + "-presentation" + ext
		if u, err := s.put(ctx, s.buckets.PresentationsBucket, key, req.Presentation, contentType); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("presentation_upload_failed")
		} else {
			stored = append(stored, storedObject{s.buckets.PresentationsBucket, key})
			files.PresentationURL = u
		}
	}

	if req.Audio != nil && len(req.Audio.Data) > 0 {
		key := base + "-audio.mp3"
		if u, err := s.put(ctx, s.buckets.AudioBucket, key, req.Audio, "audio/mpeg"); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("audio_upload_failed")
		} else {
			stored = append(stored, storedObject{s.buckets.AudioBucket, key})
			files.AudioURL = u
		}
	}

	summary, err := s.summarizer.Summarize(ctx, summarizer.Document{PDF: req.PDF.Data, Title: req.Title, Description: req.Description})
	if err != nil {
		s.logger.Warn().Err(err).Str("title", req.Title).Msg("ai_summary_unavailable")
		summary = summarizer.UploadFallback(req.Title, req.Description)
	}

	res := &UploadResult{UploadedFiles: files, AIProcessed: summary.Processed}
	if uploader.IsAdmin() {
		res.Paper, err = s.papers.Create(ctx, &model.WhitePaper{
			Title:           req.Title,
			Description:     req.Description,
			Author:          req.Author,
			CategoryID:      req.CategoryID,
			PDFURL:          files.PDFURL,
			PresentationURL: optional(files.PresentationURL),
			AudioURL:        optional(files.AudioURL),
			AISummary:       summary.Summary,
			AISections:      summary.Sections,
			Status:          model.PaperStatusPublished,
			UploadedBy:      &uploader.ID,
		})
		res.Message = messagePublished
	} else {
		res.Submission, err = s.submissions.Create(ctx, &model.Submission{
			Title:           req.Title,
			Description:     req.Description,
			Author:          req.Author,
			CategoryID:      req.CategoryID,
			PDFURL:          files.PDFURL,
			PresentationURL: optional(files.PresentationURL),
			AudioURL:        optional(files.AudioURL),
			AISummary:       summary.Summary,
			AISections:      summary.Sections,
			Status:          model.SubmissionStatusPending,
			SubmittedBy:     &uploader.ID,
		})
		res.Message = messageSubmitted
	}
	if err != nil {
		if rbErr := s.rollback(ctx, stored); rbErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, rbErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if res.Paper != nil {
		invalidate(ctx, s.cache, s.logger, nsPapers)
	}
	s.logger.Info().
		Str("title", req.Title).
		Str("uploader", uploader.ID).
		Bool("published", res.Paper != nil).
		Bool("ai_processed", res.AIProcessed).
		Msg("paper_uploaded")
	return res, nil
}

func (s *submissionService) rollback(ctx context.Context, objects []storedObject) error {
	var errs []error
	for _, o := range objects {
		if err := s.store.Delete(ctx, o.bucket, o.key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *submissionService) Summarize(ctx context.Context, pdfURL, title, description string) (*summarizer.Result, error) {
	pdfURL = strings.TrimSpace(pdfURL)
	if pdfURL == "" {
		return nil, validationError("PDF URL is required")
	}
	if bucket, _, ok := s.store.Locate(pdfURL); !ok || bucket != s.buckets.PapersBucket {
		return nil, validationError("PDF URL must point to a stored paper")
	}
	res, err := s.summarizer.SummarizeURL(ctx, pdfURL, title, description)
	switch {
	case errors.Is(err, summarizer.ErrNotConfigured):
		return nil, fmt.Errorf("ai summarizer: %w", ErrNotConfigured)
	case errors.Is(err, summarizer.ErrMissingURL):
		return nil, validationError("PDF URL is required")
	case errors.Is(err, summarizer.ErrTooLarge):
		return nil, validationError("PDF exceeds the %d MB limit", s.maxPDFBytes>>20)
	case err != nil:
		return nil, err
	}
	return res, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

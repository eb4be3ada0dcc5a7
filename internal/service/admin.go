package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"paperapi/internal/cache"
	"paperapi/internal/model"
	"paperapi/internal/repository"
	"paperapi/internal/repository/postgres"
	"paperapi/internal/storage"
	"paperapi/internal/summarizer"
)

// Dispatch actions.
const (
	ActionApproveSubmission = "approve_submission"
	ActionRejectSubmission  = "reject_submission"
	ActionDeletePaper       = "delete_paper"
	ActionUpdatePaper       = "update_paper"
	ActionGetStats          = "get_stats"
)

// AdminStats are the dashboard counters.
type AdminStats struct {
	TotalPapers        int `json:"totalPapers"`
	PendingSubmissions int `json:"pendingSubmissions"`
	TotalUsers         int `json:"totalUsers"`
}

// SubmissionListResult is the service-level DTO for paginated submissions.
type SubmissionListResult struct {
	Items []model.Submission `json:"data"`
	Total int                `json:"total"`
}

// ActionResult is the answer to a dispatched action.
type ActionResult struct {
	Paper   *model.WhitePaper `json:"paper,omitempty"`
	Message string            `json:"message"`
}

// AdminService holds moderation and maintenance use cases. Every method rejects non-admin actors with ErrForbidden.
type AdminService interface {
	ApproveSubmission(ctx context.Context, actor *model.Profile, id int64) (*model.WhitePaper, error)

	// RejectSubmission deletes the submission, then its stored files on a best-effort basis.
	RejectSubmission(ctx context.Context, actor *model.Profile, id int64) error

	// DeletePaper deletes the paper, then its stored files on a best-effort basis.
	DeletePaper(ctx context.Context, actor *model.Profile, id int64) error

	UpdatePaper(ctx context.Context, actor *model.Profile, id int64, u model.PaperUpdate) (*model.WhitePaper, error)

	// ResummarizePaper reruns the summarizer against the stored PDF.
	ResummarizePaper(ctx context.Context, actor *model.Profile, id int64) (*model.WhitePaper, error)

	ListSubmissions(ctx context.Context, actor *model.Profile, limit, offset int) (*SubmissionListResult, error)
	Stats(ctx context.Context, actor *model.Profile) (*AdminStats, error)
	CreateCategory(ctx context.Context, actor *model.Profile, name, description string) (*model.Category, error)

	// Dispatch runs one named action with its JSON payload.
	Dispatch(ctx context.Context, actor *model.Profile, action string, data json.RawMessage) (any, error)
}

type adminService struct {
	papers      repository.PaperRepository
	submissions repository.SubmissionRepository
	categories  repository.CategoryRepository
	profiles    repository.ProfileRepository
	store       storage.Storage
	summarizer  Summarizer
	cache       cache.Cache
	logger      zerolog.Logger
}

func NewAdminService(
	papers repository.PaperRepository,
	submissions repository.SubmissionRepository,
	categories repository.CategoryRepository,
	profiles repository.ProfileRepository,
	store storage.Storage,
	sum Summarizer,
	c cache.Cache,
	logger zerolog.Logger,
) AdminService {
	if c == nil {
		c = cache.Noop{}
	}
	return &adminService{
		papers:      papers,
		submissions: submissions,
		categories:  categories,
		profiles:    profiles,
		store:       store,
		summarizer:  sum,
		cache:       c,
		logger:      logger.With().Str("component", "admin").Logger(),
	}
}

func requireAdmin(actor *model.Profile) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *adminService) ApproveSubmission(ctx context.Context, actor *model.Profile, id int64) (*model.WhitePaper, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, validationError("submission ID is required")
	}
	p, err := s.submissions.Approve(ctx, id)
	if err != nil {
		return nil, notFound(err, "submission")
	}
	invalidate(ctx, s.cache, s.logger, nsPapers)
	s.logger.Info().Int64("submission_id", id).Int64("paper_id", p.ID).Str("actor", actor.ID).Msg("submission_approved")
	return p, nil
}

func (s *adminService) RejectSubmission(ctx context.Context, actor *model.Profile, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id <= 0 {
		return validationError("submission ID is required")
	}
	sub, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "submission")
	}
	if err := s.submissions.Delete(ctx, id); err != nil {
		return notFound(err, "submission")
	}
	s.removeFiles(ctx, sub.PDFURL, sub.PresentationURL, sub.AudioURL)
	s.logger.Info().Int64("submission_id", id).Str("actor", actor.ID).Msg("submission_rejected")
	return nil
}

func (s *adminService) DeletePaper(ctx context.Context, actor *model.Profile, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id <= 0 {
		return validationError("paper ID is required")
	}
	p, err := s.papers.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "paper")
	}
	if err := s.papers.Delete(ctx, id); err != nil {
		return notFound(err, "paper")
	}
	invalidate(ctx, s.cache, s.logger, nsPapers)
	s.removeFiles(ctx, p.PDFURL, p.PresentationURL, p.AudioURL)
	s.logger.Info().Int64("paper_id", id).Str("actor", actor.ID).Msg("paper_deleted")
	return nil
}

// removeFiles deletes objects referenced by a removed row. Failures are logged only.
func (s *adminService) removeFiles(ctx context.Context, pdfURL string, others ...*string) {
	urls := []string{pdfURL}
	for _, u := range others {
		if u != nil {
			urls = append(urls, *u)
		}
	}
	for _, u := range urls {
		bucket, key, ok := s.store.Locate(u)
		if !ok {
			continue
		}
		if err := s.store.Delete(ctx, bucket, key); err != nil {
			s.logger.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("object_cleanup_failed")
		}
	}
}

func (s *adminService) UpdatePaper(ctx context.Context, actor *model.Profile, id int64, u model.PaperUpdate) (*model.WhitePaper, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, validationError("paper ID is required")
	}
	if u.Empty() {
		return nil, validationError("updates are required")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return nil, validationError("title must not be empty")
	}
	if u.Status != nil && *u.Status != model.PaperStatusPublished && *u.Status != model.PaperStatusDraft {
		return nil, validationError("status must be %q or %q", model.PaperStatusPublished, model.PaperStatusDraft)
	}

	p, err := s.papers.Update(ctx, id, u)
	if err != nil {
		return nil, notFound(err, "paper")
	}
	invalidate(ctx, s.cache, s.logger, nsPapers)
	return p, nil
}

func (s *adminService) ResummarizePaper(ctx context.Context, actor *model.Profile, id int64) (*model.WhitePaper, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.papers.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "paper")
	}

	var res *summarizer.Result
	bucket, key, stored := s.store.Locate(p.PDFURL)
	if stored {
		data, readErr := s.readObject(ctx, bucket, key)
		if readErr != nil {
			return nil, fmt.Errorf("read stored pdf: %w", readErr)
		}
		res, err = s.summarizer.Summarize(ctx, summarizer.Document{PDF: data, Title: p.Title, Description: p.Description})
	} else {
		res, err = s.summarizer.SummarizeURL(ctx, p.PDFURL, p.Title, p.Description)
	}
	if err != nil {
		if errors.Is(err, summarizer.ErrNotConfigured) {
			return nil, fmt.Errorf("ai summarizer: %w", ErrNotConfigured)
		}
		return nil, err
	}
	if !res.Processed {
		return nil, fmt.Errorf("ai summary for paper %d could not be generated", id)
	}

	return s.UpdatePaper(ctx, actor, id, model.PaperUpdate{AISummary: &res.Summary, AISections: &res.Sections})
}

func (s *adminService) readObject(ctx context.Context, bucket, key string) ([]byte, error) {
	rc, _, err := s.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *adminService) ListSubmissions(ctx context.Context, actor *model.Profile, limit, offset int) (*SubmissionListResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > maxPaperLimit {
		limit = maxPaperLimit
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.submissions.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &SubmissionListResult{Items: res.Items, Total: res.Total}, nil
}

// Stats fetches the three counters concurrently.
func (s *adminService) Stats(ctx context.Context, actor *model.Profile) (*AdminStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var st AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalPapers, err = s.papers.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		st.PendingSubmissions, err = s.submissions.Count(gctx, model.SubmissionStatusPending)
		return err
	})
	g.Go(func() (err error) {
		st.TotalUsers, err = s.profiles.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *adminService) CreateCategory(ctx context.Context, actor *model.Profile, name, description string) (*model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	c, err := s.categories.Create(ctx, &model.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		Slug:        slug.Make(name),
	})
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, fmt.Errorf("category %q %w", name, ErrConflict)
		}
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, nsCategories, nsPapers)
	return c, nil
}

// flexID accepts ids sent either as JSON numbers or numeric strings.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*f = flexID(n)
	return nil
}

type actionData struct {
	SubmissionID flexID             `json:"submissionId"`
	PaperID      flexID             `json:"paperId"`
	Updates      *model.PaperUpdate `json:"updates"`
}

func (s *adminService) Dispatch(ctx context.Context, actor *model.Profile, action string, data json.RawMessage) (any, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if action == "" {
		return nil, validationError("action is required")
	}

	var d actionData
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, validationError("invalid action data: %v", err)
		}
	}

	switch action {
	case ActionApproveSubmission:
		if d.SubmissionID == 0 {
			return nil, validationError("submission ID is required")
		}
		if _, err := s.ApproveSubmission(ctx, actor, int64(d.SubmissionID)); err != nil {
			return nil, err
		}
		return &ActionResult{Message: "Submission approved and published"}, nil

	case ActionRejectSubmission:
		if d.SubmissionID == 0 {
			return nil, validationError("submission ID is required")
		}
		if err := s.RejectSubmission(ctx, actor, int64(d.SubmissionID)); err != nil {
			return nil, err
		}
		return &ActionResult{Message: "Submission rejected and removed"}, nil

	case ActionDeletePaper:
		if d.PaperID == 0 {
			return nil, validationError("paper ID is required")
		}
		if err := s.DeletePaper(ctx, actor, int64(d.PaperID)); err != nil {
			return nil, err
		}
		return &ActionResult{Message: "Paper deleted successfully"}, nil

	case ActionUpdatePaper:
		if d.PaperID == 0 || d.Updates == nil {
			return nil, validationError("paper ID and updates are required")
		}
		p, err := s.UpdatePaper(ctx, actor, int64(d.PaperID), *d.Updates)
		if err != nil {
			return nil, err
		}
		return &ActionResult{Paper: p, Message: "Paper updated successfully"}, nil

	case ActionGetStats:
		return s.Stats(ctx, actor)

	default:
		return nil, validationError("unknown action: %s", action)
	}
}

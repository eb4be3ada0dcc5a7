package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"paperapi/internal/cache"
	"paperapi/internal/citation"
	"paperapi/internal/model"
	"paperapi/internal/pdfdoc"
	"paperapi/internal/repository"
)

const (
	defaultPaperLimit = 20
	maxPaperLimit     = 100
)

// PaperQuery filters the public paper listing.
type PaperQuery struct {
	CategoryID *int64
	Query      string
	Limit      int
	Offset     int
}

// PaperListResult is the service-level DTO for paginated papers.
type PaperListResult struct {
	Items []model.WhitePaper `json:"data"`
	Total int                `json:"total"`
}

// PublicStats backs the home page counters.
type PublicStats struct {
	TotalPapers     int `json:"totalPapers"`
	TotalCategories int `json:"totalCategories"`
}

// CatalogService serves the published catalog to readers.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, slug string) (*model.Category, error)

	// ListPapers returns published papers, newest first.
	ListPapers(ctx context.Context, q PaperQuery) (*PaperListResult, error)

	// GetPaper returns a published paper. Drafts are reported as not found.
	GetPaper(ctx context.Context, id int64) (*model.WhitePaper, error)

	// RecordView counts one read of a published paper and returns the new total.
	RecordView(ctx context.Context, id int64, userID, ip *string) (int64, error)

	Stats(ctx context.Context) (*PublicStats, error)

	SummaryText(ctx context.Context, id int64) (string, error)
	SummaryPDF(ctx context.Context, id int64) ([]byte, error)
	Citation(ctx context.Context, id int64) (string, error)
}

type catalogService struct {
	papers     repository.PaperRepository
	categories repository.CategoryRepository
	cache      cache.Cache
	logger     zerolog.Logger
}

func NewCatalogService(papers repository.PaperRepository, categories repository.CategoryRepository, c cache.Cache, logger zerolog.Logger) CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	return &catalogService{
		papers:     papers,
		categories: categories,
		cache:      c,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return cached(ctx, s.cache, s.logger, nsCategories, "all", func() ([]model.Category, error) {
		return s.categories.List(ctx)
	})
}

func (s *catalogService) GetCategory(ctx context.Context, slug string) (*model.Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, validationError("category slug is required")
	}
	return cached(ctx, s.cache, s.logger, nsCategories, "slug:"+slug, func() (*model.Category, error) {
		c, err := s.categories.FindBySlug(ctx, slug)
		if err != nil {
			return nil, notFound(err, "category")
		}
		return c, nil
	})
}

func (s *catalogService) ListPapers(ctx context.Context, q PaperQuery) (*PaperListResult, error) {
	if q.Limit <= 0 {
		q.Limit = defaultPaperLimit
	}
	if q.Limit > maxPaperLimit {
		q.Limit = maxPaperLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Query = strings.TrimSpace(q.Query)

	cat := "all"
	if q.CategoryID != nil {
		cat = strconv.FormatInt(*q.CategoryID, 10)
	}
	key := fmt.Sprintf("list:%s:%d:%d:%s", cat, q.Limit, q.Offset, strings.ToLower(q.Query))

	return cached(ctx, s.cache, s.logger, nsPapers, key, func() (*PaperListResult, error) {
		res, err := s.papers.List(ctx, repository.PaperFilter{
			Status:     model.PaperStatusPublished,
			CategoryID: q.CategoryID,
			Query:      q.Query,
			PageQuery:  repository.PageQuery{Limit: q.Limit, Offset: q.Offset},
		})
		if err != nil {
			return nil, err
		}
		return &PaperListResult{Items: res.Items, Total: res.Total}, nil
	})
}

func (s *catalogService) GetPaper(ctx context.Context, id int64) (*model.WhitePaper, error) {
	if id <= 0 {
		return nil, validationError("paper id must be positive")
	}
	return cached(ctx, s.cache, s.logger, nsPapers, "id:"+strconv.FormatInt(id, 10), func() (*model.WhitePaper, error) {
		p, err := s.papers.FindByID(ctx, id)
		if err != nil {
			return nil, notFound(err, "paper")
		}
		if p.Status != model.PaperStatusPublished {
			return nil, fmt.Errorf("paper %w", ErrNotFound)
		}
		return p, nil
	})
}

func (s *catalogService) RecordView(ctx context.Context, id int64, userID, ip *string) (int64, error) {
	if id <= 0 {
		return 0, validationError("paper id must be positive")
	}
	views, err := s.papers.RecordView(ctx, model.PaperView{PaperID: id, UserID: userID, IPAddress: ip})
	if err != nil {
		return 0, notFound(err, "paper")
	}
	return views, nil
}

func (s *catalogService) Stats(ctx context.Context) (*PublicStats, error) {
	return cached(ctx, s.cache, s.logger, nsPapers, "stats", func() (*PublicStats, error) {
		papers, err := s.papers.Count(ctx, model.PaperStatusPublished)
		if err != nil {
			return nil, err
		}
		cats, err := s.categories.Count(ctx)
		if err != nil {
			return nil, err
		}
		return &PublicStats{TotalPapers: papers, TotalCategories: cats}, nil
	})
}

func (s *catalogService) SummaryText(ctx context.Context, id int64) (string, error) {
	p, err := s.GetPaper(ctx, id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\nSummary\n%s\n", p.Title, p.Author, p.AISummary)
	for _, sec := range p.AISections {
		fmt.Fprintf(&b, "\n%s\n%s\n", sec.Title, sec.Content)
	}
	return b.String(), nil
}

func (s *catalogService) SummaryPDF(ctx context.Context, id int64) ([]byte, error) {
	p, err := s.GetPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	return pdfdoc.RenderSummary(pdfdoc.SummaryDocument{
		Title:    p.Title,
		Author:   p.Author,
		Category: s.categoryName(ctx, p.CategoryID),
		Summary:  p.AISummary,
		Sections: p.AISections,
	})
}

func (s *catalogService) Citation(ctx context.Context, id int64) (string, error) {
	p, err := s.GetPaper(ctx, id)
	if err != nil {
		return "", err
	}
	return citation.BibTeX(p, s.categoryName(ctx, p.CategoryID), p.PDFURL), nil
}

// categoryName returns "" when the paper is uncategorized or the lookup fails.
func (s *catalogService) categoryName(ctx context.Context, id *int64) string {
	if id == nil {
		return ""
	}
	c, err := s.categories.FindByID(ctx, *id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("category_id", *id).Msg("category_lookup_failed")
		return ""
	}
	return c.Name
}

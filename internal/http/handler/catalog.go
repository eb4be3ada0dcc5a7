package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/http/middleware"
	"paperapi/internal/model"
	"paperapi/internal/service"
)

type categoryPage struct {
	Category *model.Category   `json:"category"`
	Papers   []model.WhitePaper `json:"papers"`
	Total    int                `json:"total"`
}

// ListCategories godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Router /api/categories [get]
func ListCategories(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListCategories(c.UserContext())
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

// GetCategory returns the category with its published papers, optionally filtered by q.
func GetCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := svc.GetCategory(c.UserContext(), c.Params("slug"))
		if err != nil {
			return serviceError(c, err, codeInternal)
		}

		limit, err := queryInt(c, "limit", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		papers, err := svc.ListPapers(c.UserContext(), service.PaperQuery{
			CategoryID: &cat.ID,
			Query:      c.Query("q"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		return writeData(c, fiber.StatusOK, categoryPage{Category: cat, Papers: papers.Items, Total: papers.Total})
	}
}

// PublicStats godoc
// @Summary Home page counters
// @Tags catalog
// @Produce json
// @Router /api/stats [get]
func PublicStats(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext())
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		return writeData(c, fiber.StatusOK, stats)
	}
}

// ListPapers godoc
// @Summary List published papers
// @Tags catalog
// @Produce json
// @Param category_id query int false "Category filter"
// @Param q query string false "Search text"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Router /api/papers [get]
func ListPapers(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		q := service.PaperQuery{Query: c.Query("q"), Limit: limit, Offset: offset}
		if raw := c.Query("category_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid category_id")
			}
			q.CategoryID = &id
		}

		res, err := svc.ListPapers(c.UserContext(), q)
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		return c.JSON(res)
	}
}

// GetPaper godoc
// @Summary Get a published paper
// @Tags catalog
// @Produce json
// @Param id path int true "Paper ID"
// @Router /api/papers/{id} [get]
func GetPaper(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		p, err := svc.GetPaper(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		return writeData(c, fiber.StatusOK, p)
	}
}

// RecordView counts a read. The caller's profile is attached when a valid token was sent.
func RecordView(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}

		var userID *string
		if p := middleware.ProfileFromCtx(c); p != nil {
			userID = &p.ID
		}
		var ip *string
		if addr := c.IP(); addr != "" {
			ip = &addr
		}

		views, err := svc.RecordView(c.UserContext(), id, userID, ip)
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		return writeData(c, fiber.StatusOK, fiber.Map{"id": id, "views": views})
	}
}

func attachment(c *fiber.Ctx, id int64, suffix string) {
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="paper-%d-%s"`, id, suffix))
}

// SummaryText exports the AI summary as plain text.
func SummaryText(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		text, err := svc.SummaryText(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		attachment(c, id, "summary.txt")
		c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		return c.SendString(text)
	}
}

// SummaryPDF exports the AI summary as a rendered PDF.
func SummaryPDF(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		doc, err := svc.SummaryPDF(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		attachment(c, id, "summary.pdf")
		c.Set(fiber.HeaderContentType, "application/pdf")
		return c.Send(doc)
	}
}

// Citation exports a BibTeX entry.
func Citation(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return invalidID(c)
		}
		bib, err := svc.Citation(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, codeInternal)
		}
		attachment(c, id, "citation.bib")
		c.Set(fiber.HeaderContentType, "application/x-bibtex; charset=utf-8")
		return c.SendString(bib)
	}
}

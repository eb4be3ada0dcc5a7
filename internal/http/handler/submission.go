package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/http/middleware"
	"paperapi/internal/service"
)

// optionalID accepts a category id sent as a number, a numeric string, an empty string or null.
type optionalID struct {
	value *int64
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		o.value = nil
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	o.value = &n
	return nil
}

type uploadPaperRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Author           string     `json:"author"`
	CategoryID       optionalID `json:"categoryId"`
	PDFData          string     `json:"pdfData"`
	PresentationData string     `json:"presentationData"`
	AudioData        string     `json:"audioData"`
	// IsSubmission is accepted for compatibility. The caller's role decides publish or submit.
	IsSubmission bool `json:"isSubmission"`
}

func decodeOptional(dataURL string) (*service.FilePayload, error) {
	if strings.TrimSpace(dataURL) == "" {
		return nil, nil
	}
	return service.DecodeDataURL(dataURL)
}

// UploadPaperJSON godoc
// @Summary Upload a paper as base64 data URLs
// @Tags papers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/papers/upload [post]
func UploadPaperJSON(svc service.SubmissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body uploadPaperRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}
		if strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.PDFData) == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Title and PDF file are required")
		}

		req := service.UploadRequest{
			Title:       body.Title,
			Description: body.Description,
			Author:      body.Author,
			CategoryID:  body.CategoryID.value,
		}
		var err error
		if req.PDF, err = service.DecodeDataURL(body.PDFData); err != nil {
			return serviceError(c, err, codePaperUploadFailed)
		}
		if req.Presentation, err = decodeOptional(body.PresentationData); err != nil {
			return serviceError(c, err, codePaperUploadFailed)
		}
		if req.Audio, err = decodeOptional(body.AudioData); err != nil {
			return serviceError(c, err, codePaperUploadFailed)
		}

		res, err := svc.Upload(c.UserContext(), middleware.ProfileFromCtx(c), req)
		if err != nil {
			return serviceError(c, err, codePaperUploadFailed)
		}
		return writeData(c, fiber.StatusCreated, res)
	}
}

func formFile(form *multipart.Form, field string) (*service.FilePayload, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return readFileHeader(files[0])
}

func readFileHeader(fh *multipart.FileHeader) (*service.FilePayload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.FilePayload{Data: data, ContentType: fh.Header.Get(fiber.HeaderContentType)}, nil
}

// UploadPaperForm godoc
// @Summary Upload a paper as multipart form data
// @Tags papers
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param pdf formData file true "Paper PDF"
// @Param presentation formData file false "Slides"
// @Param audio formData file false "Audio overview"
// @Security BearerAuth
// @Router /api/papers [post]
func UploadPaperForm(svc service.SubmissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "multipart form expected")
		}

		req := service.UploadRequest{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Author:      c.FormValue("author"),
		}
		if raw := c.FormValue("category_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid category_id")
			}
			req.CategoryID = &id
		}

		pdf, err := formFile(form, "pdf")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, codePaperUploadFailed, "cannot read uploaded file")
		}
		if pdf == nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "pdf file is required")
		}
		req.PDF = pdf

		if req.Presentation, err = formFile(form, "presentation"); err != nil {
			return writeError(c, fiber.StatusBadRequest, codePaperUploadFailed, "cannot read uploaded file")
		}
		if req.Audio, err = formFile(form, "audio"); err != nil {
			return writeError(c, fiber.StatusBadRequest, codePaperUploadFailed, "cannot read uploaded file")
		}

		res, err := svc.Upload(c.UserContext(), middleware.ProfileFromCtx(c), req)
		if err != nil {
			return serviceError(c, err, codePaperUploadFailed)
		}
		return writeData(c, fiber.StatusCreated, res)
	}
}

type summaryRequest struct {
	PDFURL      string `json:"pdfUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProcessSummary godoc
// @Summary Summarize a stored PDF without saving
// @Tags papers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /api/summaries [post]
func ProcessSummary(svc service.SubmissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body summaryRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}
		res, err := svc.Summarize(c.UserContext(), body.PDFURL, body.Title, body.Description)
		if err != nil {
			return serviceError(c, err, codeAIProcessingFailed)
		}
		return writeData(c, fiber.StatusOK, res)
	}
}

package handler

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"paperapi/internal/model"
	"paperapi/internal/service"
	serviceMocks "paperapi/internal/service/mocks"
	"paperapi/internal/summarizer"
)

var pdfBytes = []byte("%PDF-1.4 fake body")

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestUploadPaperJSON(t *testing.T) {
	mockSvc := new(serviceMocks.MockSubmissionService)
	app := newApp()
	app.Post("/api/papers/upload", withProfile(userProfile), UploadPaperJSON(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/papers/upload", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("submission from a regular user", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, userProfile, mock.MatchedBy(func(r service.UploadRequest) bool {
			return r.Title == "Diffusion" && r.CategoryID != nil && *r.CategoryID == 4 &&
				bytes.Equal(r.PDF.Data, pdfBytes) && r.PDF.ContentType == "application/pdf" &&
				r.Presentation == nil && r.Audio != nil && r.Audio.ContentType == "audio/mpeg"
		})).Return(&service.UploadResult{
			Submission:    &model.Submission{ID: 5, Title: "Diffusion", Status: model.SubmissionStatusPending},
			UploadedFiles: service.UploadedFiles{PDFURL: "https://cdn.test/papers/1-diffusion.pdf"},
			AIProcessed:   true,
			Message:       "Submission received and will be reviewed by admin",
		}, nil).Once()

		resp := post(fmt.Sprintf(`{"title":"Diffusion","categoryId":"4","pdfData":%q,"audioData":%q,"isSubmission":true}`,
			dataURL("application/pdf", pdfBytes), dataURL("audio/mpeg", []byte("ID3"))))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res service.UploadResult
		decodeData(t, resp, &res)
		assert.Equal(t, int64(5), res.Submission.ID)
		assert.Nil(t, res.Paper)
		assert.True(t, res.AIProcessed)
		mockSvc.AssertExpectations(t)
	})

	t.Run("numeric category id", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, userProfile, mock.MatchedBy(func(r service.UploadRequest) bool {
			return r.CategoryID != nil && *r.CategoryID == 2
		})).Return(&service.UploadResult{Message: "ok"}, nil).Once()

		resp := post(fmt.Sprintf(`{"title":"T","categoryId":2,"pdfData":%q}`, dataURL("application/pdf", pdfBytes)))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing title or pdf", func(t *testing.T) {
		resp := post(`{"title":"","pdfData":""}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, "Title and PDF file are required", body.Error.Message)
	})

	t.Run("pdf is not a data url", func(t *testing.T) {
		resp := post(`{"title":"T","pdfData":"hello"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp := post(`{"title":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, userProfile, mock.Anything).
			Return(nil, errors.New("PDF upload failed: connection refused")).Once()

		resp := post(fmt.Sprintf(`{"title":"T","pdfData":%q}`, dataURL("application/pdf", pdfBytes)))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "PAPER_UPLOAD_FAILED", body.Error.Code)
		assert.Equal(t, "internal server error", body.Error.Message)
		mockSvc.AssertExpectations(t)
	})
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	for field, contentType := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="%s.bin"`, field, field))
		h.Set("Content-Type", contentType)
		part, _ := writer.CreatePart(h)
		part.Write(pdfBytes)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadPaperForm(t *testing.T) {
	mockSvc := new(serviceMocks.MockSubmissionService)
	app := newApp()
	app.Post("/api/papers", withProfile(adminProfile), UploadPaperForm(mockSvc))

	t.Run("admin publishes", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, adminProfile, mock.MatchedBy(func(r service.UploadRequest) bool {
			return r.Title == "Scaling Laws" && r.Author == "Kaplan" && r.CategoryID == nil &&
				r.PDF != nil && r.PDF.ContentType == "application/pdf" &&
				r.Presentation != nil && r.Presentation.ContentType == "application/pdf"
		})).Return(&service.UploadResult{
			Paper:   &model.WhitePaper{ID: 9, Title: "Scaling Laws", Status: model.PaperStatusPublished},
			Message: "Paper published successfully",
		}, nil).Once()

		body, ct := multipartBody(t,
			map[string]string{"title": "Scaling Laws", "author": "Kaplan"},
			map[string]string{"pdf": "application/pdf", "presentation": "application/pdf"})
		req := httptest.NewRequest(http.MethodPost, "/api/papers", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res service.UploadResult
		decodeData(t, resp, &res)
		assert.Equal(t, int64(9), res.Paper.ID)
		assert.Equal(t, "Paper published successfully", res.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no pdf", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"title": "T"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/papers", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		e := decodeError(t, resp).Error
		assert.Equal(t, "VALIDATION_ERROR", e.Code)
		assert.Equal(t, "pdf file is required", e.Message)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/papers", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("bad category", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"title": "T", "category_id": "x"},
			map[string]string{"pdf": "application/pdf"})
		req := httptest.NewRequest(http.MethodPost, "/api/papers", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("validation from service", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, adminProfile, mock.Anything).
			Return(nil, fmt.Errorf("%w: PDF file must be application/pdf", service.ErrValidation)).Once()

		body, ct := multipartBody(t, map[string]string{"title": "T"}, map[string]string{"pdf": "text/plain"})
		req := httptest.NewRequest(http.MethodPost, "/api/papers", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "PDF file must be application/pdf", decodeError(t, resp).Error.Message)
		mockSvc.AssertExpectations(t)
	})
}

func TestProcessSummary(t *testing.T) {
	mockSvc := new(serviceMocks.MockSubmissionService)
	app := newApp()
	app.Post("/api/summaries", ProcessSummary(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/summaries", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Summarize", mock.Anything, "https://cdn.test/p.pdf", "GANs", "").
			Return(&summarizer.Result{Summary: "s", Sections: []model.Section{{Title: "Intro", Content: "c"}}, Processed: true}, nil).Once()

		resp := post(`{"pdfUrl":"https://cdn.test/p.pdf","title":"GANs"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res summarizer.Result
		decodeData(t, resp, &res)
		assert.True(t, res.Processed)
		assert.Len(t, res.Sections, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not configured", func(t *testing.T) {
		mockSvc.On("Summarize", mock.Anything, "u", "", "").
			Return(nil, fmt.Errorf("ai summarizer: %w", service.ErrNotConfigured)).Once()

		resp := post(`{"pdfUrl":"u"}`)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unexpected failure", func(t *testing.T) {
		mockSvc.On("Summarize", mock.Anything, "v", "", "").Return(nil, errors.New("boom")).Once()

		resp := post(`{"pdfUrl":"v"}`)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "AI_PROCESSING_FAILED", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

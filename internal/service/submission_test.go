package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperapi/internal/config"
	"paperapi/internal/model"
	repoMocks "paperapi/internal/repository/mocks"
	"paperapi/internal/storage"
	storeMocks "paperapi/internal/storage/mocks"
	"paperapi/internal/summarizer"
)

var testBuckets = config.StorageConfig{PapersBucket: "papers", PresentationsBucket: "presentations", AudioBucket: "audio"}

const (
	testBase   = "1700000000000-attention-is-all-you-need"
	testPDFURL = storeMocks.PublicBase + "/papers/" + testBase + ".pdf"
)

type uploadMocks struct {
	store       *storeMocks.MockStorage
	papers      *repoMocks.MockPaperRepository
	submissions *repoMocks.MockSubmissionRepository
	sum         *mockSummarizer
}

func newUploadService(maxBytes int64) (SubmissionService, uploadMocks) {
	m := uploadMocks{
		store:       new(storeMocks.MockStorage),
		papers:      new(repoMocks.MockPaperRepository),
		submissions: new(repoMocks.MockSubmissionRepository),
		sum:         new(mockSummarizer),
	}
	svc := NewSubmissionService(m.store, m.papers, m.submissions, m.sum, nil, testBuckets, maxBytes, zerolog.Nop())
	svc.(*submissionService).now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, m
}

func TestDecodeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))

	f, err := DecodeDataURL("data:application/pdf;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), f.Data)

	for _, bad := range []string{"", "application/pdf;base64," + payload, "data:text/plain," + payload, "data:application/pdf;base64,!!!"} {
		_, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestSubmissionService_Upload(t *testing.T) {
	ctx := context.Background()
	pdf := testPDF(t)
	aiResult := &summarizer.Result{
		Summary:   "AI summary",
		Sections:  []model.Section{{Title: "Results", Content: "Strong BLEU."}},
		Processed: true,
	}
	pdfOpts := storage.PutObjectOptions{Size: int64(len(pdf)), ContentType: "application/pdf"}

	baseRequest := func() UploadRequest {
		return UploadRequest{
			Title:       "  Attention Is All You Need ",
			Description: "Transformers.",
			PDF:         &FilePayload{Data: pdf, ContentType: "application/pdf"},
		}
	}

	tests := []struct {
		name       string
		actor      *model.Profile
		req        func() UploadRequest
		maxBytes   int64
		setup      func(m uploadMocks)
		wantErr    error
		wantErrMsg string
		check      func(t *testing.T, res *UploadResult)
	}{
		{
			name:  "admin publishes with presentation and audio",
			actor: adminActor,
			req: func() UploadRequest {
				r := baseRequest()
				r.CategoryID = ptr(int64(2))
				r.Presentation = &FilePayload{Data: []byte("slides"), ContentType: "application/pdf"}
				r.Audio = &FilePayload{Data: []byte("ID3"), ContentType: "audio/mp3"}
				return r
			},
			setup: func(m uploadMocks) {
				m.store.On("Put", mock.Anything, "papers", testBase+".pdf", mock.Anything, pdfOpts).Return(storage.ObjectInfo{}, nil)
				m.store.On("Put", mock.Anything, "presentations", testBase+"-presentation.pdf", mock.Anything,
					storage.PutObjectOptions{Size: 6, ContentType: "application/pdf"}).Return(storage.ObjectInfo{}, nil)
				m.store.On("Put", mock.Anything, "audio", testBase+"-audio.mp3", mock.Anything,
					storage.PutObjectOptions{Size: 3, ContentType: "audio/mpeg"}).Return(storage.ObjectInfo{}, nil)
				m.sum.On("Summarize", mock.Anything, summarizer.Document{PDF: pdf, Title: "Attention Is All You Need", Description: "Transformers."}).
					Return(aiResult, nil)
				m.papers.On("Create", mock.Anything, mock.MatchedBy(func(p *model.WhitePaper) bool {
					return p.Status == model.PaperStatusPublished &&
						p.Author == "Unknown" &&
						*p.CategoryID == 2 &&
						p.PDFURL == testPDFURL &&
						*p.PresentationURL == storeMocks.PublicBase+"/presentations/"+testBase+"-presentation.pdf" &&
						*p.AudioURL == storeMocks.PublicBase+"/audio/"+testBase+"-audio.mp3" &&
						p.AISummary == "AI summary" &&
						*p.UploadedBy == "admin-1"
				})).Return(&model.WhitePaper{ID: 10, Status: model.PaperStatusPublished}, nil)
			},
			check: func(t *testing.T, res *UploadResult) {
				assert.Equal(t, int64(10), res.Paper.ID)
				assert.Nil(t, res.Submission)
				assert.Equal(t, "Paper published successfully", res.Message)
				assert.True(t, res.AIProcessed)
				assert.Equal(t, testPDFURL, res.UploadedFiles.PDFURL)
				assert.NotEmpty(t, res.UploadedFiles.PresentationURL)
				assert.NotEmpty(t, res.UploadedFiles.AudioURL)
			},
		},
		{
			name:  "user submission survives presentation failure",
			actor: userActor,
			req: func() UploadRequest {
				r := baseRequest()
				r.Author = "Vaswani"
				r.Presentation = &FilePayload{Data: []byte("pptx")}
				return r
			},
			setup: func(m uploadMocks) {
				m.store.On("Put", mock.Anything, "papers", testBase+".pdf", mock.Anything, pdfOpts).Return(storage.ObjectInfo{}, nil)
				m.store.On("Put", mock.Anything, "presentations", testBase+"-presentation.pptx", mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("bucket missing"))
				m.sum.On("Summarize", mock.Anything, mock.Anything).Return(aiResult, nil)
				m.submissions.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Submission) bool {
					return s.Status == model.SubmissionStatusPending &&
						s.Author == "Vaswani" &&
						s.PresentationURL == nil &&
						*s.SubmittedBy == "user-1"
				})).Return(&model.Submission{ID: 4, Status: model.SubmissionStatusPending}, nil)
			},
			check: func(t *testing.T, res *UploadResult) {
				assert.Equal(t, int64(4), res.Submission.ID)
				assert.Nil(t, res.Paper)
				assert.Equal(t, "Submission received and will be reviewed by admin", res.Message)
				assert.Empty(t, res.UploadedFiles.PresentationURL)
			},
		},
		{
			name:  "summarizer unavailable stores upload fallback",
			actor: userActor,
			req: func() UploadRequest {
				r := baseRequest()
				r.Description = ""
				return r
			},
			setup: func(m uploadMocks) {
				m.store.On("Put", mock.Anything, "papers", testBase+".pdf", mock.Anything, pdfOpts).Return(storage.ObjectInfo{}, nil)
				m.sum.On("Summarize", mock.Anything, mock.Anything).Return(nil, summarizer.ErrNotConfigured)
				m.submissions.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Submission) bool {
					return s.AISummary == `This white paper "Attention Is All You Need" presents important research in artificial intelligence. `+
						`The paper contains valuable insights and methodologies relevant to the AI research community.` &&
						len(s.AISections) == 1 && s.AISections[0].Title == "Overview"
				})).Return(&model.Submission{ID: 5}, nil)
			},
			check: func(t *testing.T, res *UploadResult) {
				assert.False(t, res.AIProcessed)
			},
		},
		{
			name:    "missing title",
			actor:   userActor,
			req:     func() UploadRequest { r := baseRequest(); r.Title = " "; return r },
			setup:   func(m uploadMocks) {},
			wantErr: ErrValidation,
		},
		{
			name:    "wrong content type",
			actor:   userActor,
			req:     func() UploadRequest { r := baseRequest(); r.PDF.ContentType = "image/png"; return r },
			setup:   func(m uploadMocks) {},
			wantErr: ErrValidation,
		},
		{
			name:    "not a pdf",
			actor:   userActor,
			req:     func() UploadRequest { r := baseRequest(); r.PDF.Data = []byte("hello"); return r },
			setup:   func(m uploadMocks) {},
			wantErr: ErrValidation,
		},
		{
			name:     "too large",
			actor:    userActor,
			req:      baseRequest,
			maxBytes: 10,
			setup:    func(m uploadMocks) {},
			wantErr:  ErrValidation,
		},
		{
			name:  "pdf upload failure",
			actor: userActor,
			req:   baseRequest,
			setup: func(m uploadMocks) {
				m.store.On("Put", mock.Anything, "papers", mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("s3 down"))
			},
			wantErrMsg: "PDF upload failed: s3 down",
		},
		{
			name:  "insert failure rolls back stored objects",
			actor: adminActor,
			req: func() UploadRequest {
				r := baseRequest()
				r.Audio = &FilePayload{Data: []byte("ID3")}
				return r
			},
			setup: func(m uploadMocks) {
				m.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				m.sum.On("Summarize", mock.Anything, mock.Anything).Return(aiResult, nil)
				m.papers.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", mock.Anything, "papers", testBase+".pdf").Return(nil).Once()
				m.store.On("Delete", mock.Anything, "audio", testBase+"-audio.mp3").Return(nil).Once()
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:  "insert failure with failed rollback",
			actor: userActor,
			req:   baseRequest,
			setup: func(m uploadMocks) {
				m.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				m.sum.On("Summarize", mock.Anything, mock.Anything).Return(aiResult, nil)
				m.submissions.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", mock.Anything, "papers", testBase+".pdf").Return(errors.New("delete fail"))
			},
			wantErrMsg: "db save failed: db fail; rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = 50 << 20
			}
			svc, m := newUploadService(maxBytes)
			tt.setup(m)

			res, err := svc.Upload(ctx, tt.actor, tt.req())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				m.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
				assert.Nil(t, res)
			default:
				require.NoError(t, err)
				tt.check(t, res)
			}
			m.store.AssertExpectations(t)
			m.papers.AssertExpectations(t)
			m.submissions.AssertExpectations(t)
			m.sum.AssertExpectations(t)
		})
	}
}

func TestSubmissionService_Summarize(t *testing.T) {
	ctx := context.Background()
	svc, m := newUploadService(50 << 20)
	stored := storeMocks.PublicBase + "/papers/a.pdf"
	unconfigured := storeMocks.PublicBase + "/papers/b.pdf"
	huge := storeMocks.PublicBase + "/papers/huge.pdf"

	m.sum.On("SummarizeURL", ctx, stored, "T", "D").Return(&summarizer.Result{Summary: "S", Processed: true}, nil)
	m.sum.On("SummarizeURL", ctx, unconfigured, "", "").Return(nil, summarizer.ErrNotConfigured)
	m.sum.On("SummarizeURL", ctx, huge, "", "").Return(nil, summarizer.ErrTooLarge)

	res, err := svc.Summarize(ctx, stored, "T", "D")
	require.NoError(t, err)
	assert.Equal(t, "S", res.Summary)

	_, err = svc.Summarize(ctx, unconfigured, "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = svc.Summarize(ctx, huge, "", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "50 MB")

	for _, bad := range []string{
		" ",
		"http://127.0.0.1:8080/internal/anything",
		"http://169.254.169.254/latest/meta-data",
		storeMocks.PublicBase + "/audio/a.mp3",
		"https://cdn.test/papers/a.pdf",
	} {
		_, err = svc.Summarize(ctx, bad, "", "")
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
	m.sum.AssertNumberOfCalls(t, "SummarizeURL", 3)
}

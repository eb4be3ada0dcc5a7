package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paperapi/internal/model"
	"paperapi/internal/service"
	"paperapi/internal/summarizer"
)

type MockSubmissionService struct {
	mock.Mock
}

var _ service.SubmissionService = (*MockSubmissionService)(nil)

func (m *MockSubmissionService) Upload(ctx context.Context, uploader *model.Profile, req service.UploadRequest) (*service.UploadResult, error) {
	args := m.Called(ctx, uploader, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockSubmissionService) Summarize(ctx context.Context, pdfURL, title, description string) (*summarizer.Result, error) {
	args := m.Called(ctx, pdfURL, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summarizer.Result), args.Error(1)
}

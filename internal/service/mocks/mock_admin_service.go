package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"paperapi/internal/model"
	"paperapi/internal/service"
)

type MockAdminService struct {
	mock.Mock
}

var _ service.AdminService = (*MockAdminService)(nil)

func (m *MockAdminService) ApproveSubmission(ctx context.Context, actor *model.Profile, id int64) (*model.WhitePaper, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhitePaper), args.Error(1)
}

func (m *MockAdminService) RejectSubmission(ctx context.Context, actor *model.Profile, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockAdminService) DeletePaper(ctx context.Context, actor *model.Profile, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockAdminService) UpdatePaper(ctx context.Context, actor *model.Profile, id int64, u model.PaperUpdate) (*model.WhitePaper, error) {
	args := m.Called(ctx, actor, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhitePaper), args.Error(1)
}

func (m *MockAdminService) ResummarizePaper(ctx context.Context, actor *model.Profile, id int64) (*model.WhitePaper, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhitePaper), args.Error(1)
}

func (m *MockAdminService) ListSubmissions(ctx context.Context, actor *model.Profile, limit, offset int) (*service.SubmissionListResult, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionListResult), args.Error(1)
}

func (m *MockAdminService) Stats(ctx context.Context, actor *model.Profile) (*service.AdminStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdminStats), args.Error(1)
}

func (m *MockAdminService) CreateCategory(ctx context.Context, actor *model.Profile, name, description string) (*model.Category, error) {
	args := m.Called(ctx, actor, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockAdminService) Dispatch(ctx context.Context, actor *model.Profile, action string, data json.RawMessage) (any, error) {
	args := m.Called(ctx, actor, action, data)
	return args.Get(0), args.Error(1)
}

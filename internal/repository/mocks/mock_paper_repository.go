package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

type MockPaperRepository struct {
	mock.Mock
}

func (m *MockPaperRepository) Create(ctx context.Context, p *model.WhitePaper) (*model.WhitePaper, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhitePaper), args.Error(1)
}

func (m *MockPaperRepository) FindByID(ctx context.Context, id int64) (*model.WhitePaper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhitePaper), args.Error(1)
}

func (m *MockPaperRepository) List(ctx context.Context, f repository.PaperFilter) (*repository.PageResult[model.WhitePaper], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.WhitePaper]), args.Error(1)
}

func (m *MockPaperRepository) Update(ctx context.Context, id int64, u model.PaperUpdate) (*model.WhitePaper, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhitePaper), args.Error(1)
}

func (m *MockPaperRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPaperRepository) RecordView(ctx context.Context, v model.PaperView) (int64, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaperRepository) Count(ctx context.Context, status string) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paperapi/internal/auth"
	"paperapi/internal/model"
	"paperapi/internal/service"
)

type MockAccountService struct {
	mock.Mock
}

var _ service.AccountService = (*MockAccountService)(nil)

func (m *MockAccountService) Signup(ctx context.Context, req service.SignupRequest) (*service.SignupResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SignupResult), args.Error(1)
}

func (m *MockAccountService) Resolve(ctx context.Context, user *auth.User) (*model.Profile, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockAccountService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/mock"
)

// MockGenerator is a testify mock of summarizer.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateText(ctx context.Context, parts ...genai.Part) (string, error) {
	args := m.Called(ctx, parts)
	return args.String(0), args.Error(1)
}

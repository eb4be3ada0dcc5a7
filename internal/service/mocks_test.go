package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperapi/internal/auth"
	"paperapi/internal/model"
	"paperapi/internal/summarizer"
)

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, doc summarizer.Document) (*summarizer.Result, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summarizer.Result), args.Error(1)
}

func (m *mockSummarizer) SummarizeURL(ctx context.Context, pdfURL, title, description string) (*summarizer.Result, error) {
	args := m.Called(ctx, pdfURL, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summarizer.Result), args.Error(1)
}

type mockAuthProvider struct {
	mock.Mock
}

func (m *mockAuthProvider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockAuthProvider) SignUp(ctx context.Context, email, password, fullName string) (*auth.SignUpResult, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.SignUpResult), args.Error(1)
}

func (m *mockAuthProvider) AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*auth.AccountUser, error) {
	args := m.Called(ctx, email, password, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.AccountUser), args.Error(1)
}

var (
	adminActor = &model.Profile{ID: "admin-1", Email: "root@papers.test", Role: model.RoleAdmin}
	userActor  = &model.Profile{ID: "user-1", Email: "ada@papers.test", Role: model.RoleUser}
)

func testPDF(t *testing.T) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Arial", "", 12)
	doc.Cell(40, 10, "A white paper")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"paperapi/internal/auth"
	"paperapi/internal/model"
	"paperapi/internal/repository"
)

// Signup methods.
const (
	SignupMethodNormal        = "normal_signup"
	SignupMethodAdminFallback = "admin_fallback"
)

// AuthProvider is the hosted auth API used for account creation.
type AuthProvider interface {
	Configured() bool
	SignUp(ctx context.Context, email, password, fullName string) (*auth.SignUpResult, error)
	AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*auth.AccountUser, error)
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type SignupResult struct {
	User    *auth.AccountUser `json:"user"`
	Profile *model.Profile    `json:"profile,omitempty"`
	Method  string            `json:"method"`
	Message string            `json:"message"`
}

// AccountService registers users and maps tokens to profiles.
type AccountService interface {
	// Signup tries the public signup endpoint and falls back to creating a confirmed user with the service key.
	Signup(ctx context.Context, req SignupRequest) (*SignupResult, error)

	// Resolve returns the profile of an authenticated user, creating it on first sight.
	// A new user without an email fails with auth.ErrInvalidToken.
	Resolve(ctx context.Context, user *auth.User) (*model.Profile, error)

	Profile(ctx context.Context, userID string) (*model.Profile, error)
}

type accountService struct {
	provider    AuthProvider
	profiles    repository.ProfileRepository
	adminEmails []string
	logger      zerolog.Logger
}

func NewAccountService(provider AuthProvider, profiles repository.ProfileRepository, adminEmails []string, logger zerolog.Logger) AccountService {
	return &accountService{
		provider:    provider,
		profiles:    profiles,
		adminEmails: adminEmails,
		logger:      logger.With().Str("component", "account").Logger(),
	}
}

func (s *accountService) roleFor(email string) string {
	if slices.Contains(s.adminEmails, strings.ToLower(strings.TrimSpace(email))) {
		return model.RoleAdmin
	}
	return model.RoleUser
}

func (s *accountService) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return nil, validationError("email, password, and full name are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, validationError("email address is malformed")
	}
	if s.provider == nil || !s.provider.Configured() {
		return nil, fmt.Errorf("auth provider: %w", ErrNotConfigured)
	}

	res := &SignupResult{}
	normal, err := s.provider.SignUp(ctx, req.Email, req.Password, req.FullName)
	if err == nil {
		res.User = normal.User
		res.Method = SignupMethodNormal
		res.Message = "Account created successfully! Please check your email to verify your account."
	} else {
		var apiErr *auth.APIError
		reason := "provider_error"
		if errors.As(err, &apiErr) && apiErr.InvalidEmail() {
			reason = "email_invalid"
		}
		s.logger.Info().Err(err).Str("email", req.Email).Str("reason", reason).Msg("signup_fallback")

		user, err := s.provider.AdminCreateUser(ctx, req.Email, req.Password, map[string]any{
			"full_name":     req.FullName,
			"signup_method": SignupMethodAdminFallback,
		})
		if err != nil {
			return nil, fmt.Errorf("signup failed: %w", err)
		}
		res.User = user
		res.Method = SignupMethodAdminFallback
		res.Message = "Account created successfully! You can now sign in."
	}

	if res.User != nil && res.User.ID != "" {
		p, err := s.profiles.Upsert(ctx, &model.Profile{
			ID:       res.User.ID,
			Email:    req.Email,
			FullName: req.FullName,
			Role:     s.roleFor(req.Email),
		})
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", res.User.ID).Msg("profile_create_failed")
		} else {
			res.Profile = p
		}
	}

	s.logger.Info().Str("email", req.Email).Str("method", res.Method).Msg("signup_completed")
	return res, nil
}

func (s *accountService) Resolve(ctx context.Context, user *auth.User) (*model.Profile, error) {
	if user == nil || user.ID == "" {
		return nil, validationError("user is required")
	}
	p, err := s.profiles.FindByID(ctx, user.ID)
	switch {
	case err == nil:
		if p.IsAdmin() || s.roleFor(p.Email) != model.RoleAdmin {
			return p, nil
		}
		promoted := *p
		promoted.Role = model.RoleAdmin
		return s.profiles.Upsert(ctx, &promoted)
	case errors.Is(err, sql.ErrNoRows):
		if strings.TrimSpace(user.Email) == "" {
			return nil, fmt.Errorf("no profile for user %s and no email to create one: %w", user.ID, auth.ErrInvalidToken)
		}
		return s.profiles.Upsert(ctx, &model.Profile{ID: user.ID, Email: user.Email, Role: s.roleFor(user.Email)})
	default:
		return nil, err
	}
}

func (s *accountService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return p, nil
}

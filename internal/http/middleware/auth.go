package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/auth"
	"paperapi/internal/model"
)

// ProfileLocalKey holds the caller's *model.Profile in Fiber's context locals.
const ProfileLocalKey = "profile"

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.User, error)
}

// ProfileResolver maps an authenticated user to a profile.
type ProfileResolver interface {
	Resolve(ctx context.Context, user *auth.User) (*model.Profile, error)
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func authenticate(v TokenVerifier, r ProfileResolver, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			if required {
				return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
			}
			return c.Next()
		}

		user, err := v.Verify(token)
		if err != nil {
			if required {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
			}
			return c.Next()
		}

		profile, err := r.Resolve(c.UserContext(), user)
		if errors.Is(err, auth.ErrInvalidToken) {
			if required {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
			}
			return c.Next()
		}
		if err != nil {
			return err
		}
		c.Locals(ProfileLocalKey, profile)
		return c.Next()
	}
}

// RequireUser rejects requests without a valid bearer token.
func RequireUser(v TokenVerifier, r ProfileResolver) fiber.Handler {
	return authenticate(v, r, true)
}

// OptionalUser attaches the caller's profile when a valid token is present and lets anonymous requests through.
func OptionalUser(v TokenVerifier, r ProfileResolver) fiber.Handler {
	return authenticate(v, r, false)
}

// RequireAdmin must run after RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ProfileFromCtx(c).IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}

// ProfileFromCtx returns the authenticated profile or nil.
func ProfileFromCtx(c *fiber.Ctx) *model.Profile {
	p, _ := c.Locals(ProfileLocalKey).(*model.Profile)
	return p
}

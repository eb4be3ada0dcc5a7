package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(sub string, exp time.Time) *Claims {
	return &Claims{
		Email: "ada@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret)
	future := time.Now().Add(time.Hour)

	t.Run("valid token", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("u-1", future))

		u, err := v.Verify(tok)

		require.NoError(t, err)
		assert.Equal(t, "u-1", u.ID)
		assert.Equal(t, "ada@example.com", u.Email)
	})

	tests := map[string]string{
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("u-1", time.Now().Add(-time.Hour))),
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other-secret"), claimsFor("u-1", future)),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, []byte(testSecret), claimsFor("u-1", future)),
		"no subject":   sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("", future)),
		"no email": sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(future)},
		}),
		"no expiry": sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"},
		}),
		"garbage": "not.a.token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifier_NoSecret(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("u-1", time.Now().Add(time.Hour)))

	_, err := NewVerifier("").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

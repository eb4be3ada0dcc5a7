package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"paperapi/internal/config"
)

// APIError is a non-2xx answer from the auth provider.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth provider: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("auth provider: %s (%d)", e.Message, e.Status)
}

// InvalidEmail reports whether the provider rejected the address itself.
func (e *APIError) InvalidEmail() bool {
	return e.Code == "email_address_invalid" || strings.Contains(e.Message, "invalid")
}

// AccountUser is a user record as returned by the provider.
type AccountUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    *time.Time     `json:"created_at,omitempty"`
}

// SignUpResult is the provider's signup answer. User is set whichever shape the provider used.
type SignUpResult struct {
	User *AccountUser    `json:"user"`
	Raw  json.RawMessage `json:"-"`
}

// Client talks to a GoTrue compatible auth API.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	hc         *http.Client
}

// NewClient builds a client. hc defaults to an otelhttp instrumented client.
func NewClient(cfg config.AuthConfig, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{baseURL: cfg.URL, anonKey: cfg.AnonKey, serviceKey: cfg.ServiceRoleKey, hc: hc}
}

// Configured reports whether both the public and the service key are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.anonKey != "" && c.serviceKey != ""
}

// SignUp registers through the public signup endpoint.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*SignUpResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"full_name": fullName},
	}
	raw, err := c.post(ctx, "/auth/v1/signup", c.anonKey, body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		AccountUser
		User *AccountUser `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	res := &SignUpResult{User: envelope.User, Raw: raw}
	if res.User == nil && envelope.ID != "" {
		u := envelope.AccountUser
		res.User = &u
	}
	return res, nil
}

// AdminCreateUser creates a confirmed user with the service key.
func (c *Client) AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*AccountUser, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": metadata,
	}
	raw, err := c.post(ctx, "/auth/v1/admin/users", c.serviceKey, body)
	if err != nil {
		return nil, err
	}
	var u AccountUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode admin user response: %w", err)
	}
	return &u, nil
}

func (c *Client) post(ctx context.Context, path, key string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("apikey", key)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

func decodeAPIError(status int, raw json.RawMessage) *APIError {
	var body struct {
		ErrorCode        string `json:"error_code"`
		Code             any    `json:"code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(raw, &body)

	apiErr := &APIError{Status: status, Code: body.ErrorCode}
	if s, ok := body.Code.(string); ok && apiErr.Code == "" {
		apiErr.Code = s
	}
	for _, m := range []string{body.Msg, body.Message, body.ErrorDescription} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

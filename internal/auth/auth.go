// Package auth validates the tokens chat adapters present when they connect
// to the websocket bridge.
package auth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrInvalidToken indicates the token is definitively invalid.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrUnavailable indicates the auth service is unreachable or unavailable.
	ErrUnavailable = errors.New("auth: unavailable")
)

// Identity is the adapter a token belongs to.
type Identity struct {
	AdapterID string `json:"adapter_id"`
	Name      string `json:"name"`
}

// Validator validates adapter tokens. A nil Identity with a nil error means
// authentication is disabled.
type Validator interface {
	Validate(ctx context.Context, token string) (*Identity, error)
}

// StaticValidator accepts a single shared token.
type StaticValidator struct {
	token []byte
	name  string
}

func NewStaticValidator(token, name string) *StaticValidator {
	return &StaticValidator{token: []byte(token), name: name}
}

func (v *StaticValidator) Validate(_ context.Context, token string) (*Identity, error) {
	if token == "" || subtle.ConstantTimeCompare([]byte(token), v.token) != 1 {
		return nil, ErrInvalidToken
	}
	return &Identity{AdapterID: v.name, Name: v.name}, nil
}

// HTTPValidator validates tokens via HTTP callback to external service.
type HTTPValidator struct {
	url         string
	client      *http.Client
	adminSecret string
}

func NewHTTPValidator(url string, adminSecret string) *HTTPValidator {
	return &HTTPValidator{
		url:         url,
		adminSecret: adminSecret,
		client: &http.Client{
			Timeout: 500 * time.Millisecond,
		},
	}
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid     bool   `json:"valid"`
	AdapterID string `json:"adapter_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (v *HTTPValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	reqBody, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.adminSecret != "" {
		req.Header.Set("X-Admin-Secret", v.adminSecret)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var authResp validateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&authResp); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}
	if !authResp.Valid {
		return nil, ErrInvalidToken
	}
	return &Identity{AdapterID: authResp.AdapterID, Name: authResp.Name}, nil
}

// NoopValidator allows all connections without validation.
type NoopValidator struct{}

func NewNoopValidator() *NoopValidator {
	return &NoopValidator{}
}

func (v *NoopValidator) Validate(context.Context, string) (*Identity, error) {
	return nil, nil
}

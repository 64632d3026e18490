package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticValidator(t *testing.T) {
	t.Parallel()

	v := NewStaticValidator("s3cret", "discord")

	id, err := v.Validate(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, &Identity{AdapterID: "discord", Name: "discord"}, id)

	for _, token := range []string{"", "s3cre", "s3cret!"} {
		_, err := v.Validate(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestHTTPValidator(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "admin", r.Header.Get("X-Admin-Secret"))
		var req validateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Token {
		case "valid-token":
			_ = json.NewEncoder(w).Encode(validateResponse{Valid: true, AdapterID: "a-1", Name: "slack"})
		case "forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		case "garbage":
			_, _ = w.Write([]byte("{not json"))
		default:
			_ = json.NewEncoder(w).Encode(validateResponse{Valid: false})
		}
	}))
	defer server.Close()

	v := NewHTTPValidator(server.URL, "admin")

	id, err := v.Validate(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, "a-1", id.AdapterID)
	assert.Equal(t, "slack", id.Name)

	tests := map[string]error{
		"":          ErrInvalidToken,
		"nope":      ErrInvalidToken,
		"forbidden": ErrInvalidToken,
		"broken":    ErrUnavailable,
		"garbage":   ErrUnavailable,
	}
	for token, want := range tests {
		_, err := v.Validate(context.Background(), token)
		assert.ErrorIs(t, err, want, token)
	}
}

func TestHTTPValidatorTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	_, err := NewHTTPValidator(server.URL, "").Validate(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPValidatorUnreachable(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPValidator("http://127.0.0.1:1", "").Validate(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNoopValidator(t *testing.T) {
	t.Parallel()

	id, err := NewNoopValidator().Validate(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, id)
}

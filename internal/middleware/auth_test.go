package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/auth"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

func newTestAuth() func(http.Handler) http.Handler {
	return NewAuthMiddleware(AuthConfig{
		Verifier: verifierFunc(func(_ context.Context, token string) (model.OwnerIdentity, error) {
			if token == "good-token" {
				return "ana@irisk.com.br", nil
			}
			return "", auth.ErrInvalidToken
		}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "valid bearer", header: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "case-insensitive scheme", header: "bearer good-token", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMsg: "Authentication required. Use the Authorization: Bearer header."},
		{name: "basic scheme", header: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized, wantMsg: "Malformed Authorization header"},
		{name: "no token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantMsg: "Malformed Authorization header"},
		{name: "rejected token", header: "Bearer bad-token", wantStatus: http.StatusUnauthorized, wantMsg: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen model.OwnerIdentity
			handler := newTestAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetOwnerFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/inspections/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, model.OwnerIdentity("ana@irisk.com.br"), seen)
				return
			}

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
			assert.Empty(t, seen)
		})
	}
}

func TestOwnerContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetOwnerFromContext(context.Background()))

	ctx := WithOwner(context.Background(), "bruno@irisk.com.br")
	assert.Equal(t, model.OwnerIdentity("bruno@irisk.com.br"), GetOwnerFromContext(ctx))
}

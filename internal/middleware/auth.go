package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/auth"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/pkg/apierror"
)

// OwnerKey is the key for storing the verified owner in request context.
const OwnerKey contextKey = "owner"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Verifier auth.Verifier
	Logger   *slog.Logger
}

// NewAuthMiddleware creates an authentication middleware with injected dependencies.
// Requests without a valid bearer token are rejected before any handler runs.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use the Authorization: Bearer header."))
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, apierror.Unauthorized("Malformed Authorization header"))
				return
			}

			owner, err := cfg.Verifier.Verify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				writeError(w, apierror.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), OwnerKey, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetOwnerFromContext retrieves the verified owner from request context.
func GetOwnerFromContext(ctx context.Context) model.OwnerIdentity {
	if owner, ok := ctx.Value(OwnerKey).(model.OwnerIdentity); ok {
		return owner
	}
	return ""
}

// WithOwner returns a copy of ctx carrying owner.
func WithOwner(ctx context.Context, owner model.OwnerIdentity) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

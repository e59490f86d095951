package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type verifierFunc func(ctx context.Context, token string) (model.OwnerIdentity, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (model.OwnerIdentity, error) {
	return f(ctx, token)
}

type counterFunc func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

func (f counterFunc) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return f(ctx, key, window)
}

package service

import (
	"context"
	"log/slog"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
)

// MaxListLimit caps how many records a single read returns.
const MaxListLimit = 1000

// RetrievalService serves an owner's stored inspections.
type RetrievalService struct {
	repo   repository.InspectionRepository
	limit  int
	logger *slog.Logger
}

// NewRetrievalService creates a new retrieval service. limit is clamped to
// (0, MaxListLimit].
func NewRetrievalService(repo repository.InspectionRepository, limit int, logger *slog.Logger) *RetrievalService {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return &RetrievalService{
		repo:   repo,
		limit:  limit,
		logger: logger.With("service", "retrieval"),
	}
}

// ListByOwner returns the owner's most recent inspections, newest first.
func (s *RetrievalService) ListByOwner(ctx context.Context, owner model.OwnerIdentity) ([]model.PersistedInspection, error) {
	if owner.IsZero() {
		return nil, ErrUnauthorized
	}

	rows, err := s.repo.ListByOwner(ctx, owner, s.limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "list inspections failed", "owner", owner.String(), "error", err)
		return nil, storageError("list inspections", err)
	}
	if rows == nil {
		rows = []model.PersistedInspection{}
	}
	return rows, nil
}

// Stats returns storage statistics for the status endpoints.
func (s *RetrievalService) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, storageError("get stats", err)
	}
	return stats, nil
}

// Ping reports whether storage is reachable.
func (s *RetrievalService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

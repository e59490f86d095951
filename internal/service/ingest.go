package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
)

// DefaultMaxSubmission is the largest accepted bulk upload.
const DefaultMaxSubmission = 10000

// IngestOptions tunes the ingest coordinator.
type IngestOptions struct {
	ChunkSize     int
	MaxSubmission int
}

// IngestService validates, deduplicates and persists bulk uploads.
type IngestService struct {
	resolver  *Resolver
	persister *Persister
	opts      IngestOptions
	logger    *slog.Logger
}

// NewIngestService creates a new ingest coordinator.
func NewIngestService(repo repository.InspectionRepository, opts IngestOptions, logger *slog.Logger) *IngestService {
	if opts.ChunkSize <= 0 || opts.ChunkSize > DefaultChunkSize {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MaxSubmission <= 0 {
		opts.MaxSubmission = DefaultMaxSubmission
	}

	return &IngestService{
		resolver:  NewResolver(repo, logger),
		persister: NewPersister(repo, logger),
		opts:      opts,
		logger:    logger.With("service", "ingest"),
	}
}

// Ingest runs one bulk upload for owner. Any invalid record rejects the whole
// submission before storage is touched. The caller-supplied uploaded_by is
// always replaced by owner.
func (s *IngestService) Ingest(ctx context.Context, raws []model.RawInspection, owner model.OwnerIdentity) (*model.IngestReport, error) {
	if owner.IsZero() {
		return nil, ErrUnauthorized
	}
	if len(raws) == 0 {
		return nil, &ValidationError{Reason: "submission is empty"}
	}
	if len(raws) > s.opts.MaxSubmission {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("submission has %d records, maximum is %d", len(raws), s.opts.MaxSubmission),
		}
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "processing bulk insert", "owner", owner.String(), "records", len(raws))

	records, err := ValidateAll(raws)
	if err != nil {
		s.logger.InfoContext(ctx, "bulk insert rejected", "owner", owner.String(), "error", err)
		return nil, err
	}

	for i := range records {
		records[i].Owner = owner
	}

	resolved, err := s.resolver.Resolve(ctx, records, owner)
	if err != nil {
		return nil, err
	}

	if len(resolved.New) == 0 {
		s.logger.InfoContext(ctx, "bulk insert finished",
			"owner", owner.String(),
			"inserted", 0,
			"duplicates", len(resolved.Duplicates),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return &model.IngestReport{
			Success:       true,
			Duplicates:    len(resolved.Duplicates),
			DuplicateList: resolved.Duplicates,
			Data:          []model.PersistedInspection{},
		}, nil
	}

	persisted, err := s.persister.Persist(ctx, resolved.New, owner, s.opts.ChunkSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "bulk insert failed", "owner", owner.String(), "error", err)
		return nil, err
	}

	report := &model.IngestReport{
		Success:       true,
		Inserted:      persisted.InsertedCount,
		Duplicates:    len(resolved.Duplicates) + persisted.SkippedRecords,
		DuplicateList: resolved.Duplicates,
		Data:          persisted.Inserted,
		SkippedChunks: persisted.SkippedChunks,
	}

	s.logger.InfoContext(ctx, "bulk insert finished",
		"owner", owner.String(),
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"skipped_chunks", report.SkippedChunks,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
)

// DefaultChunkSize is the number of records written per storage call.
const DefaultChunkSize = 1000

// PersistResult summarizes a chunked write.
type PersistResult struct {
	Inserted       []model.PersistedInspection
	InsertedCount  int
	SkippedChunks  int
	SkippedRecords int
}

// Persister writes records in bounded chunks. Each chunk is atomic; a chunk
// rejected by the uniqueness constraint is skipped and the rest continue.
type Persister struct {
	repo   repository.InspectionRepository
	logger *slog.Logger
}

// NewPersister creates a new batch persister.
func NewPersister(repo repository.InspectionRepository, logger *slog.Logger) *Persister {
	return &Persister{
		repo:   repo,
		logger: logger.With("service", "persister"),
	}
}

// Persist writes records sequentially in contiguous chunks of chunkSize
// (DefaultChunkSize when chunkSize <= 0). Chunks already committed stay
// committed if a later chunk fails or ctx is cancelled.
func (p *Persister) Persist(ctx context.Context, records []model.InspectionRecord, owner model.OwnerIdentity, chunkSize int) (PersistResult, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	result := PersistResult{
		Inserted: make([]model.PersistedInspection, 0, len(records)),
	}

	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]
		chunkIndex := start / chunkSize

		if err := ctx.Err(); err != nil {
			return PersistResult{}, storageError(fmt.Sprintf("persist chunk %d", chunkIndex), err)
		}

		inserted, err := p.repo.InsertMany(ctx, owner, chunk)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				p.logger.WarnContext(ctx, "chunk skipped on conflict",
					"owner", owner.String(),
					"chunk", chunkIndex,
					"size", len(chunk),
					"error", err,
				)
				result.SkippedChunks++
				result.SkippedRecords += len(chunk)
				continue
			}
			return PersistResult{}, storageError(fmt.Sprintf("persist chunk %d", chunkIndex), err)
		}

		result.Inserted = append(result.Inserted, inserted...)
		result.InsertedCount += len(inserted)

		p.logger.DebugContext(ctx, "chunk persisted",
			"chunk", chunkIndex,
			"inserted", len(inserted),
		)
	}

	return result, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

// ErrConflict is returned by InsertMany when the store rejects the write
// because an (owner, inspection number) pair already exists.
var ErrConflict = errors.New("inspection already exists for owner")

// InspectionRepository defines inspection data access methods.
//
// Implementations must enforce uniqueness of (owner, inspection number)
// server-side and bound every call with a timeout.
type InspectionRepository interface {
	// FindExisting returns the stored id for each key that already exists for owner.
	FindExisting(ctx context.Context, owner model.OwnerIdentity, keys []string) (map[string]int64, error)

	// InsertMany stores all records in one atomic write. On a uniqueness
	// violation nothing is written and ErrConflict is returned.
	InsertMany(ctx context.Context, owner model.OwnerIdentity, records []model.InspectionRecord) ([]model.PersistedInspection, error)

	// ListByOwner returns the owner's records, newest first, at most limit rows.
	ListByOwner(ctx context.Context, owner model.OwnerIdentity, limit int) ([]model.PersistedInspection, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// GetStats returns statistics about the inspection store.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

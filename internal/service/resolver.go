package service

import (
	"context"
	"log/slog"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
)

// ResolveResult splits candidates into records to insert and rejected duplicates.
// Both lists keep input order.
type ResolveResult struct {
	New        []model.InspectionRecord
	Duplicates []model.DuplicateInfo
}

// Resolver detects duplicates against storage and within a submission.
type Resolver struct {
	repo   repository.InspectionRepository
	logger *slog.Logger
}

// NewResolver creates a new deduplication resolver.
func NewResolver(repo repository.InspectionRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger.With("service", "resolver"),
	}
}

// Resolve issues a single storage lookup for all distinct keys, then walks
// candidates in order. The first occurrence of an unseen key is new; every
// later occurrence and every stored key is a duplicate.
func (r *Resolver) Resolve(ctx context.Context, candidates []model.InspectionRecord, owner model.OwnerIdentity) (ResolveResult, error) {
	result := ResolveResult{
		New:        make([]model.InspectionRecord, 0, len(candidates)),
		Duplicates: make([]model.DuplicateInfo, 0),
	}
	if len(candidates) == 0 {
		return result, nil
	}

	keys := distinctKeys(candidates)
	existing, err := r.repo.FindExisting(ctx, owner, keys)
	if err != nil {
		return ResolveResult{}, storageError("find existing inspections", err)
	}

	claimed := make(map[string]struct{}, len(keys))
	for _, rec := range candidates {
		key := rec.InspectionNumber

		if id, ok := existing[key]; ok {
			id := id
			result.Duplicates = append(result.Duplicates, model.DuplicateInfo{
				InspectionNumber: key,
				ExistingID:       &id,
				Reason:           model.DuplicateExisting,
			})
			continue
		}

		if _, ok := claimed[key]; ok {
			result.Duplicates = append(result.Duplicates, model.DuplicateInfo{
				InspectionNumber: key,
				Reason:           model.DuplicateInSubmission,
			})
			continue
		}

		claimed[key] = struct{}{}
		result.New = append(result.New, rec)
	}

	r.logger.DebugContext(ctx, "duplicates resolved",
		"owner", owner.String(),
		"candidates", len(candidates),
		"existing", len(existing),
		"new", len(result.New),
		"duplicates", len(result.Duplicates),
	)

	return result, nil
}

// distinctKeys returns each inspection number once, in first-seen order.
func distinctKeys(records []model.InspectionRecord) []string {
	seen := make(map[string]struct{}, len(records))
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.InspectionNumber]; ok {
			continue
		}
		seen[rec.InspectionNumber] = struct{}{}
		keys = append(keys, rec.InspectionNumber)
	}
	return keys
}

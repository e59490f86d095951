package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
)

func records(n int) []model.InspectionRecord {
	out := make([]model.InspectionRecord, n)
	for i := range out {
		out[i] = recordWith(fmt.Sprint(i + 1))
	}
	return out
}

func TestPersister_Persist_Chunks(t *testing.T) {
	t.Parallel()

	var next int64
	repo := &inspectionRepoMock{InsertManyFunc: echoInsert(&next)}
	p := NewPersister(repo, discardLogger())

	result, err := p.Persist(context.Background(), records(7), owner, 3)
	require.NoError(t, err)

	assert.Equal(t, 7, result.InsertedCount)
	assert.Zero(t, result.SkippedChunks)
	require.Len(t, result.Inserted, 7)
	for i, rec := range result.Inserted {
		assert.Equal(t, int64(i+1), rec.ID)
		assert.Equal(t, fmt.Sprint(i+1), rec.InspectionNumber)
	}

	calls := repo.InsertManyCalls()
	require.Len(t, calls, 3)
	assert.Len(t, calls[0].Records, 3)
	assert.Len(t, calls[1].Records, 3)
	assert.Len(t, calls[2].Records, 1)
	assert.Equal(t, "4", calls[1].Records[0].InspectionNumber)
}

func TestPersister_Persist_DefaultChunkSize(t *testing.T) {
	t.Parallel()

	var next int64
	repo := &inspectionRepoMock{InsertManyFunc: echoInsert(&next)}
	p := NewPersister(repo, discardLogger())

	result, err := p.Persist(context.Background(), records(2500), owner, 0)
	require.NoError(t, err)
	assert.Equal(t, 2500, result.InsertedCount)

	calls := repo.InsertManyCalls()
	require.Len(t, calls, 3)
	assert.Len(t, calls[0].Records, DefaultChunkSize)
	assert.Len(t, calls[2].Records, 500)
}

func TestPersister_Persist_ConflictSkipsChunk(t *testing.T) {
	t.Parallel()

	var next int64
	insert := echoInsert(&next)
	repo := &inspectionRepoMock{
		InsertManyFunc: func(ctx context.Context, o model.OwnerIdentity, recs []model.InspectionRecord) ([]model.PersistedInspection, error) {
			if recs[0].InspectionNumber == "3" {
				return nil, fmt.Errorf("insert inspections: %w", repository.ErrConflict)
			}
			return insert(ctx, o, recs)
		},
	}
	p := NewPersister(repo, discardLogger())

	result, err := p.Persist(context.Background(), records(6), owner, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, result.InsertedCount)
	assert.Equal(t, 1, result.SkippedChunks)
	assert.Equal(t, 2, result.SkippedRecords)
	assert.Len(t, repo.InsertManyCalls(), 3)

	numbers := make([]string, 0, len(result.Inserted))
	for _, rec := range result.Inserted {
		numbers = append(numbers, rec.InspectionNumber)
	}
	assert.Equal(t, []string{"1", "2", "5", "6"}, numbers)
}

func TestPersister_Persist_StorageErrorAborts(t *testing.T) {
	t.Parallel()

	var next int64
	insert := echoInsert(&next)
	repo := &inspectionRepoMock{
		InsertManyFunc: func(ctx context.Context, o model.OwnerIdentity, recs []model.InspectionRecord) ([]model.PersistedInspection, error) {
			if recs[0].InspectionNumber == "3" {
				return nil, errors.New("disk full")
			}
			return insert(ctx, o, recs)
		},
	}
	p := NewPersister(repo, discardLogger())

	_, err := p.Persist(context.Background(), records(6), owner, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.False(t, errors.Is(err, repository.ErrConflict))
	assert.Len(t, repo.InsertManyCalls(), 2)
}

func TestPersister_Persist_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	var next int64
	insert := echoInsert(&next)
	repo := &inspectionRepoMock{
		InsertManyFunc: func(ctx context.Context, o model.OwnerIdentity, recs []model.InspectionRecord) ([]model.PersistedInspection, error) {
			defer cancel()
			return insert(ctx, o, recs)
		},
	}
	p := NewPersister(repo, discardLogger())

	_, err := p.Persist(ctx, records(4), owner, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, repo.InsertManyCalls(), 1)
}

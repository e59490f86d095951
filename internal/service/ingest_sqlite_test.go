package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
)

func TestIngestAndList_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, err := repository.NewSQLiteInspectionRepository(filepath.Join(t.TempDir(), "irisk.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ingest := NewIngestService(repo, IngestOptions{ChunkSize: 2}, discardLogger())
	retrieval := NewRetrievalService(repo, 0, discardLogger())
	other := model.OwnerIdentity("bruno@irisk.com.br")

	first, err := ingest.Ingest(ctx, raws(3), owner)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)
	assert.Zero(t, first.Duplicates)

	second, err := ingest.Ingest(ctx, []model.RawInspection{rawWith("3"), rawWith("4"), rawWith("4")}, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Inserted)
	assert.Equal(t, 2, second.Duplicates)
	require.Len(t, second.DuplicateList, 2)
	require.NotNil(t, second.DuplicateList[0].ExistingID)
	assert.Equal(t, first.Data[2].ID, *second.DuplicateList[0].ExistingID)

	third, err := ingest.Ingest(ctx, raws(2), other)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Inserted)

	mine, err := retrieval.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 4)
	assert.Equal(t, "4", mine[0].InspectionNumber)
	for _, rec := range mine {
		assert.Equal(t, owner, rec.Owner)
	}

	theirs, err := retrieval.ListByOwner(ctx, other)
	require.NoError(t, err)
	assert.Len(t, theirs, 2)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

func TestRetrievalService_ListByOwner(t *testing.T) {
	t.Parallel()

	stored := []model.PersistedInspection{
		{ID: 2, InspectionRecord: model.InspectionRecord{InspectionNumber: "20", Owner: owner}},
		{ID: 1, InspectionRecord: model.InspectionRecord{InspectionNumber: "10", Owner: owner}},
	}
	repo := &inspectionRepoMock{
		ListByOwnerFunc: func(context.Context, model.OwnerIdentity, int) ([]model.PersistedInspection, error) {
			return stored, nil
		},
	}
	svc := NewRetrievalService(repo, 0, discardLogger())

	rows, err := svc.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, stored, rows)

	calls := repo.ListByOwnerCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, owner, calls[0].Owner)
	assert.Equal(t, MaxListLimit, calls[0].Limit)
}

func TestRetrievalService_ListByOwner_Empty(t *testing.T) {
	t.Parallel()

	repo := &inspectionRepoMock{
		ListByOwnerFunc: func(context.Context, model.OwnerIdentity, int) ([]model.PersistedInspection, error) {
			return nil, nil
		},
	}
	svc := NewRetrievalService(repo, 50, discardLogger())

	rows, err := svc.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, 50, repo.ListByOwnerCalls()[0].Limit)
}

func TestRetrievalService_ListByOwner_Errors(t *testing.T) {
	t.Parallel()

	repo := &inspectionRepoMock{
		ListByOwnerFunc: func(context.Context, model.OwnerIdentity, int) ([]model.PersistedInspection, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := NewRetrievalService(repo, 5000, discardLogger())

	_, err := svc.ListByOwner(context.Background(), "")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Empty(t, repo.ListByOwnerCalls())

	_, err = svc.ListByOwner(context.Background(), owner)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.Equal(t, MaxListLimit, repo.ListByOwnerCalls()[0].Limit)
}

func TestRetrievalService_StatsAndPing(t *testing.T) {
	t.Parallel()

	repo := &inspectionRepoMock{
		GetStatsFunc: func(context.Context) (map[string]interface{}, error) {
			return map[string]interface{}{"total_inspections": int64(3)}, nil
		},
		PingFunc: func(context.Context) error { return errors.New("down") },
	}
	svc := NewRetrievalService(repo, 0, discardLogger())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["total_inspections"])

	err = svc.Ping(context.Background())
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	repo := &inspectionRepoMock{
		FindExistingFunc: func(_ context.Context, _ model.OwnerIdentity, _ []string) (map[string]int64, error) {
			return map[string]int64{"200": 41}, nil
		},
	}
	r := NewResolver(repo, discardLogger())

	candidates := []model.InspectionRecord{
		recordWith("100"),
		recordWith("200"),
		recordWith("100"),
		recordWith("300"),
		recordWith("200"),
	}

	result, err := r.Resolve(context.Background(), candidates, owner)
	require.NoError(t, err)

	require.Len(t, result.New, 2)
	assert.Equal(t, "100", result.New[0].InspectionNumber)
	assert.Equal(t, "300", result.New[1].InspectionNumber)

	require.Len(t, result.Duplicates, 3)
	assert.Equal(t, model.DuplicateInfo{InspectionNumber: "200", ExistingID: ptr(int64(41)), Reason: model.DuplicateExisting}, result.Duplicates[0])
	assert.Equal(t, model.DuplicateInfo{InspectionNumber: "100", Reason: model.DuplicateInSubmission}, result.Duplicates[1])
	assert.Equal(t, model.DuplicateInfo{InspectionNumber: "200", ExistingID: ptr(int64(41)), Reason: model.DuplicateExisting}, result.Duplicates[2])

	calls := repo.FindExistingCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, owner, calls[0].Owner)
	assert.Equal(t, []string{"100", "200", "300"}, calls[0].Keys)
}

func TestResolver_Resolve_Empty(t *testing.T) {
	t.Parallel()

	repo := &inspectionRepoMock{}
	r := NewResolver(repo, discardLogger())

	result, err := r.Resolve(context.Background(), nil, owner)
	require.NoError(t, err)
	assert.Empty(t, result.New)
	assert.NotNil(t, result.Duplicates)
	assert.Empty(t, repo.FindExistingCalls())
}

func TestResolver_Resolve_StorageError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	repo := &inspectionRepoMock{
		FindExistingFunc: func(context.Context, model.OwnerIdentity, []string) (map[string]int64, error) {
			return nil, cause
		},
	}
	r := NewResolver(repo, discardLogger())

	_, err := r.Resolve(context.Background(), []model.InspectionRecord{recordWith("1")}, owner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.True(t, errors.Is(err, cause))
}

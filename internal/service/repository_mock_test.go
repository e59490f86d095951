package service

import (
	"context"
	"sync"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
)

var _ repository.InspectionRepository = &inspectionRepoMock{}

type inspectionRepoMock struct {
	FindExistingFunc func(ctx context.Context, owner model.OwnerIdentity, keys []string) (map[string]int64, error)
	InsertManyFunc   func(ctx context.Context, owner model.OwnerIdentity, records []model.InspectionRecord) ([]model.PersistedInspection, error)
	ListByOwnerFunc  func(ctx context.Context, owner model.OwnerIdentity, limit int) ([]model.PersistedInspection, error)
	PingFunc         func(ctx context.Context) error
	GetStatsFunc     func(ctx context.Context) (map[string]interface{}, error)
	CloseFunc        func() error

	calls struct {
		FindExisting []struct {
			Owner model.OwnerIdentity
			Keys  []string
		}
		InsertMany []struct {
			Owner   model.OwnerIdentity
			Records []model.InspectionRecord
		}
		ListByOwner []struct {
			Owner model.OwnerIdentity
			Limit int
		}
	}
	lockFindExisting sync.RWMutex
	lockInsertMany   sync.RWMutex
	lockListByOwner  sync.RWMutex
}

func (mock *inspectionRepoMock) FindExisting(ctx context.Context, owner model.OwnerIdentity, keys []string) (map[string]int64, error) {
	if mock.FindExistingFunc == nil {
		panic("inspectionRepoMock.FindExistingFunc: method is nil but InspectionRepository.FindExisting was just called")
	}
	callInfo := struct {
		Owner model.OwnerIdentity
		Keys  []string
	}{Owner: owner, Keys: keys}
	mock.lockFindExisting.Lock()
	mock.calls.FindExisting = append(mock.calls.FindExisting, callInfo)
	mock.lockFindExisting.Unlock()
	return mock.FindExistingFunc(ctx, owner, keys)
}

func (mock *inspectionRepoMock) FindExistingCalls() []struct {
	Owner model.OwnerIdentity
	Keys  []string
} {
	mock.lockFindExisting.RLock()
	calls := mock.calls.FindExisting
	mock.lockFindExisting.RUnlock()
	return calls
}

func (mock *inspectionRepoMock) InsertMany(ctx context.Context, owner model.OwnerIdentity, records []model.InspectionRecord) ([]model.PersistedInspection, error) {
	if mock.InsertManyFunc == nil {
		panic("inspectionRepoMock.InsertManyFunc: method is nil but InspectionRepository.InsertMany was just called")
	}
	callInfo := struct {
		Owner   model.OwnerIdentity
		Records []model.InspectionRecord
	}{Owner: owner, Records: records}
	mock.lockInsertMany.Lock()
	mock.calls.InsertMany = append(mock.calls.InsertMany, callInfo)
	mock.lockInsertMany.Unlock()
	return mock.InsertManyFunc(ctx, owner, records)
}

func (mock *inspectionRepoMock) InsertManyCalls() []struct {
	Owner   model.OwnerIdentity
	Records []model.InspectionRecord
} {
	mock.lockInsertMany.RLock()
	calls := mock.calls.InsertMany
	mock.lockInsertMany.RUnlock()
	return calls
}

func (mock *inspectionRepoMock) ListByOwner(ctx context.Context, owner model.OwnerIdentity, limit int) ([]model.PersistedInspection, error) {
	if mock.ListByOwnerFunc == nil {
		panic("inspectionRepoMock.ListByOwnerFunc: method is nil but InspectionRepository.ListByOwner was just called")
	}
	callInfo := struct {
		Owner model.OwnerIdentity
		Limit int
	}{Owner: owner, Limit: limit}
	mock.lockListByOwner.Lock()
	mock.calls.ListByOwner = append(mock.calls.ListByOwner, callInfo)
	mock.lockListByOwner.Unlock()
	return mock.ListByOwnerFunc(ctx, owner, limit)
}

func (mock *inspectionRepoMock) ListByOwnerCalls() []struct {
	Owner model.OwnerIdentity
	Limit int
} {
	mock.lockListByOwner.RLock()
	calls := mock.calls.ListByOwner
	mock.lockListByOwner.RUnlock()
	return calls
}

func (mock *inspectionRepoMock) Ping(ctx context.Context) error {
	if mock.PingFunc == nil {
		panic("inspectionRepoMock.PingFunc: method is nil but InspectionRepository.Ping was just called")
	}
	return mock.PingFunc(ctx)
}

func (mock *inspectionRepoMock) GetStats(ctx context.Context) (map[string]interface{}, error) {
	if mock.GetStatsFunc == nil {
		panic("inspectionRepoMock.GetStatsFunc: method is nil but InspectionRepository.GetStats was just called")
	}
	return mock.GetStatsFunc(ctx)
}

func (mock *inspectionRepoMock) Close() error {
	if mock.CloseFunc == nil {
		panic("inspectionRepoMock.CloseFunc: method is nil but InspectionRepository.Close was just called")
	}
	return mock.CloseFunc()
}

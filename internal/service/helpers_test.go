package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

const owner = model.OwnerIdentity("ana@irisk.com.br")

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawWith(nr string) model.RawInspection {
	return model.RawInspection{InspectionNumber: ptr(nr)}
}

func recordWith(nr string) model.InspectionRecord {
	return model.InspectionRecord{InspectionNumber: nr}
}

// echoInsert persists records with sequential ids starting at *next.
func echoInsert(next *int64) func(context.Context, model.OwnerIdentity, []model.InspectionRecord) ([]model.PersistedInspection, error) {
	return func(_ context.Context, o model.OwnerIdentity, records []model.InspectionRecord) ([]model.PersistedInspection, error) {
		out := make([]model.PersistedInspection, 0, len(records))
		for _, rec := range records {
			*next++
			rec.Owner = o
			out = append(out, model.PersistedInspection{ID: *next, InspectionRecord: rec})
		}
		return out, nil
	}
}

func noneExisting(context.Context, model.OwnerIdentity, []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

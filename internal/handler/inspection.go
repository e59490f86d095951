package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/middleware"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/service"
	"github.com/vitorvieirah/projeto-importacao-irisk/pkg/apierror"
	"github.com/vitorvieirah/projeto-importacao-irisk/pkg/response"
)

// DefaultMaxBodyBytes caps a bulk upload body.
const DefaultMaxBodyBytes int64 = 32 << 20

// Ingester runs a bulk upload.
type Ingester interface {
	Ingest(ctx context.Context, raws []model.RawInspection, owner model.OwnerIdentity) (*model.IngestReport, error)
}

// Lister returns an owner's stored inspections.
type Lister interface {
	ListByOwner(ctx context.Context, owner model.OwnerIdentity) ([]model.PersistedInspection, error)
}

// InspectionHandler handles inspection-related HTTP requests.
type InspectionHandler struct {
	ingester     Ingester
	lister       Lister
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewInspectionHandler creates a new inspection handler.
func NewInspectionHandler(ingester Ingester, lister Lister, maxBodyBytes int64, logger *slog.Logger) *InspectionHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &InspectionHandler{
		ingester:     ingester,
		lister:       lister,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With("handler", "inspection"),
	}
}

// BulkResponse is the body returned by a successful bulk upload.
type BulkResponse struct {
	Success       bool                        `json:"success"`
	Message       string                      `json:"message"`
	Count         int                         `json:"count"`
	Duplicates    int                         `json:"duplicates"`
	DuplicateList []model.DuplicateInfo       `json:"duplicateList,omitempty"`
	Data          []model.PersistedInspection `json:"data"`
}

// BulkCreate handles POST /inspections/bulk
func (h *InspectionHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwnerFromContext(r.Context())
	if owner.IsZero() {
		response.Error(w, apierror.Unauthorized("User not authenticated"))
		return
	}

	raws, apiErr := decodeBulk(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	report, err := h.ingester.Ingest(r.Context(), raws, owner)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	data := report.Data
	if data == nil {
		data = []model.PersistedInspection{}
	}

	response.Raw(w, http.StatusCreated, BulkResponse{
		Success:       true,
		Message:       fmt.Sprintf("%d inspections inserted, %d duplicates skipped", report.Inserted, report.Duplicates),
		Count:         report.Inserted,
		Duplicates:    report.Duplicates,
		DuplicateList: report.DuplicateList,
		Data:          data,
	})
}

// List handles GET /inspections
func (h *InspectionHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwnerFromContext(r.Context())
	if owner.IsZero() {
		response.Error(w, apierror.Unauthorized("User not authenticated"))
		return
	}

	rows, err := h.lister.ListByOwner(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.OK(w, rows)
}

// decodeBulk reads a JSON array of inspections. Unknown fields, trailing
// data and non-array bodies are rejected.
func decodeBulk(body io.Reader) ([]model.RawInspection, *apierror.Error) {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var raws []model.RawInspection
	if err := dec.Decode(&raws); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return nil, apierror.PayloadTooLarge(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		case errors.Is(err, io.EOF):
			return nil, apierror.BadRequest("request body is empty")
		case errors.As(err, &typeErr):
			if typeErr.Field == "" {
				return nil, apierror.BadRequest("request body must be a JSON array of inspections")
			}
			return nil, apierror.ValidationError("invalid field type", apierror.FieldError{
				Field:      typeErr.Field,
				Constraint: "type",
				Message:    fmt.Sprintf("expected %s", typeErr.Type),
			})
		default:
			return nil, apierror.BadRequest("invalid JSON: " + err.Error())
		}
	}

	if raws == nil {
		return nil, apierror.BadRequest("request body must be a JSON array of inspections")
	}
	if dec.More() {
		return nil, apierror.BadRequest("request body must contain a single JSON array")
	}

	return raws, nil
}

// writeServiceError maps service errors to API errors. Storage details are
// logged, never returned.
func (h *InspectionHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.Error(w, validationAPIError(vErr))
	case errors.Is(err, service.ErrValidationFailed):
		response.Error(w, apierror.ValidationError(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		response.Error(w, apierror.Unauthorized("User not authenticated"))
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logger.ErrorContext(r.Context(), "storage unavailable",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		response.Error(w, apierror.ServiceUnavailable("Storage temporarily unavailable"))
	default:
		h.logger.ErrorContext(r.Context(), "unexpected error",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		response.Error(w, apierror.InternalError(""))
	}
}

func validationAPIError(vErr *service.ValidationError) *apierror.Error {
	if len(vErr.Violations) == 0 {
		return apierror.ValidationError(vErr.Reason)
	}

	details := make([]apierror.FieldError, 0, len(vErr.Violations))
	for _, v := range vErr.Violations {
		index := v.Index
		msg := v.Constraint
		if v.Value != "" {
			msg = fmt.Sprintf("%s (got %q)", v.Constraint, v.Value)
		}
		details = append(details, apierror.FieldError{
			Record:     &index,
			Field:      v.Field,
			Constraint: v.Constraint,
			Message:    msg,
		})
	}
	return apierror.ValidationError(
		fmt.Sprintf("%d invalid field(s) in submission", len(details)),
		details...,
	)
}

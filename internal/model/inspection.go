package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OwnerIdentity is the verified identifier (email) of the caller.
// It partitions both uniqueness and read visibility of inspections.
type OwnerIdentity string

// String returns the identity as a plain string.
func (o OwnerIdentity) String() string {
	return string(o)
}

// IsZero reports whether the identity is empty.
func (o OwnerIdentity) IsZero() bool {
	return strings.TrimSpace(string(o)) == ""
}

// InspectionRecord is a validated, normalized inspection row.
// Every optional field is a pointer: nil means absent, which is distinct
// from an empty string.
type InspectionRecord struct {
	InspectionNumber    string     `json:"nr_inspecao"`
	ClaimNumber         *string    `json:"nr_sinistro"`
	InclusionDate       *time.Time `json:"data_inclusao"`
	Priority            *string    `json:"prioridade"`
	InspectionCompany   *string    `json:"empresa_inspecao"`
	CompanyBase         *string    `json:"base_empresa"`
	Inspector           *string    `json:"inspetor"`
	Operator            *string    `json:"operador"`
	ScheduledAt         *time.Time `json:"agendamento"`
	PriorCompanyDays    *int       `json:"dias_cia_previa"`
	ProposalDate        *time.Time `json:"data_proposta"`
	InspectionDays      *int       `json:"dias_inspecao"`
	InspectorDays       *int       `json:"dias_inspetor"`
	CompanyAssignedAt   *time.Time `json:"data_atribuicao_empresa"`
	InspectorAssignedAt *time.Time `json:"data_atribuicao_inspetor"`
	Framing             *string    `json:"enquadramento"`
	Category            *string    `json:"categoria"`
	MaxGuaranteeLimit   *float64   `json:"lmg"`
	InsuredName         *string    `json:"segurado"`
	InsuranceType       *string    `json:"tipo_seguro"`
	Address             *string    `json:"endereco"`
	LastActivityAt      *time.Time `json:"data_ultima_atividade"`
	CurrentActivity     *string    `json:"atividade_atual"`
	LastTaskAt          *time.Time `json:"ultima_tarefa"`

	// Owner is always stamped by the ingest coordinator, never taken from input.
	Owner OwnerIdentity `json:"uploaded_by"`
}

// PersistedInspection is an InspectionRecord as stored, with the
// storage-assigned identifier and creation timestamp.
type PersistedInspection struct {
	ID int64 `json:"id"`
	InspectionRecord
	CreatedAt time.Time `json:"created_at"`
}

// RawInspection is one element of a bulk upload payload before validation.
// Field names match the spreadsheet export columns.
type RawInspection struct {
	InspectionNumber    *string      `json:"nr_inspecao"`
	ClaimNumber         *string      `json:"nr_sinistro"`
	InclusionDate       *string      `json:"data_inclusao"`
	Priority            *string      `json:"prioridade"`
	InspectionCompany   *string      `json:"empresa_inspecao"`
	CompanyBase         *string      `json:"base_empresa"`
	Inspector           *string      `json:"inspetor"`
	Operator            *string      `json:"operador"`
	ScheduledAt         *string      `json:"agendamento"`
	PriorCompanyDays    *LooseNumber `json:"dias_cia_previa"`
	ProposalDate        *string      `json:"data_proposta"`
	InspectionDays      *LooseNumber `json:"dias_inspecao"`
	InspectorDays       *LooseNumber `json:"dias_inspetor"`
	CompanyAssignedAt   *string      `json:"data_atribuicao_empresa"`
	InspectorAssignedAt *string      `json:"data_atribuicao_inspetor"`
	Framing             *string      `json:"enquadramento"`
	Category            *string      `json:"categoria"`
	MaxGuaranteeLimit   *LooseNumber `json:"lmg"`
	InsuredName         *string      `json:"segurado"`
	InsuranceType       *string      `json:"tipo_seguro"`
	Address             *string      `json:"endereco"`
	LastActivityAt      *string      `json:"data_ultima_atividade"`
	CurrentActivity     *string      `json:"atividade_atual"`
	LastTaskAt          *string      `json:"ultima_tarefa"`

	// UploadedBy is accepted so older clients keep working, but it is ignored.
	UploadedBy *string `json:"uploaded_by"`
}

// LooseNumber holds the textual form of a numeric field that may arrive
// either as a JSON number or as a numeric string. Parsing and range checks
// happen in the validator.
type LooseNumber string

// UnmarshalJSON accepts a JSON number or a JSON string.
func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty numeric value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = LooseNumber(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*n = LooseNumber(data)
		return nil
	default:
		return fmt.Errorf("expected number or numeric string, got %s", data)
	}
}

// DuplicateReason explains why a record was rejected as duplicate.
type DuplicateReason string

const (
	// DuplicateExisting means the key was already stored for the owner.
	DuplicateExisting DuplicateReason = "existing"
	// DuplicateInSubmission means the key appeared earlier in the same upload.
	DuplicateInSubmission DuplicateReason = "in_submission"
)

// DuplicateInfo pairs a rejected natural key with the record it collided with.
// ExistingID is nil for collisions within the same submission.
type DuplicateInfo struct {
	InspectionNumber string          `json:"nr_inspecao"`
	ExistingID       *int64          `json:"existing_id"`
	Reason           DuplicateReason `json:"reason"`
}

// IngestReport is the outcome of a single bulk ingest call.
type IngestReport struct {
	Success       bool                  `json:"success"`
	Inserted      int                   `json:"count"`
	Duplicates    int                   `json:"duplicates"`
	DuplicateList []DuplicateInfo       `json:"duplicateList,omitempty"`
	Data          []PersistedInspection `json:"data"`
	SkippedChunks int                   `json:"-"`
}

package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

// InspectionTable is the table shared by every backend.
const InspectionTable = "irisk_inspecoes"

// maxKeysPerQuery bounds the size of IN (...) lists sent to the store.
const maxKeysPerQuery = 1000

// insertColumns lists the writable columns in the order used by recordValues.
var insertColumns = []string{
	"uploaded_by",
	"nr_inspecao",
	"nr_sinistro",
	"data_inclusao",
	"prioridade",
	"empresa_inspecao",
	"base_empresa",
	"inspetor",
	"operador",
	"agendamento",
	"dias_cia_previa",
	"data_proposta",
	"dias_inspecao",
	"dias_inspetor",
	"data_atribuicao_empresa",
	"data_atribuicao_inspetor",
	"enquadramento",
	"categoria",
	"lmg",
	"segurado",
	"tipo_seguro",
	"endereco",
	"data_ultima_atividade",
	"atividade_atual",
	"ultima_tarefa",
}

// selectColumns is id + insertColumns + created_at, matching scanDest.
var selectColumns = append(append([]string{"id"}, insertColumns...), "created_at")

// recordValues returns the insert arguments for r. The owner argument wins
// over whatever r.Owner holds.
func recordValues(owner model.OwnerIdentity, r model.InspectionRecord) []interface{} {
	return []interface{}{
		string(owner),
		r.InspectionNumber,
		r.ClaimNumber,
		r.InclusionDate,
		r.Priority,
		r.InspectionCompany,
		r.CompanyBase,
		r.Inspector,
		r.Operator,
		r.ScheduledAt,
		r.PriorCompanyDays,
		r.ProposalDate,
		r.InspectionDays,
		r.InspectorDays,
		r.CompanyAssignedAt,
		r.InspectorAssignedAt,
		r.Framing,
		r.Category,
		r.MaxGuaranteeLimit,
		r.InsuredName,
		r.InsuranceType,
		r.Address,
		r.LastActivityAt,
		r.CurrentActivity,
		r.LastTaskAt,
	}
}

// joinColumns renders a column list for raw SQL fragments.
func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// plainValues dereferences optional arguments for database/sql drivers so
// that a nil pointer is sent as NULL and a set pointer as its value.
func plainValues(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case *string:
			if v != nil {
				out[i] = *v
			}
		case *int:
			if v != nil {
				out[i] = int64(*v)
			}
		case *float64:
			if v != nil {
				out[i] = *v
			}
		case *time.Time:
			if v != nil {
				out[i] = v.UTC()
			}
		default:
			out[i] = v
		}
	}
	return out
}

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanInspection reads one row laid out as selectColumns.
func scanInspection(row rowScanner) (model.PersistedInspection, error) {
	var (
		p     model.PersistedInspection
		owner string
	)

	err := row.Scan(
		&p.ID,
		&owner,
		&p.InspectionNumber,
		&p.ClaimNumber,
		&p.InclusionDate,
		&p.Priority,
		&p.InspectionCompany,
		&p.CompanyBase,
		&p.Inspector,
		&p.Operator,
		&p.ScheduledAt,
		&p.PriorCompanyDays,
		&p.ProposalDate,
		&p.InspectionDays,
		&p.InspectorDays,
		&p.CompanyAssignedAt,
		&p.InspectorAssignedAt,
		&p.Framing,
		&p.Category,
		&p.MaxGuaranteeLimit,
		&p.InsuredName,
		&p.InsuranceType,
		&p.Address,
		&p.LastActivityAt,
		&p.CurrentActivity,
		&p.LastTaskAt,
		&p.CreatedAt,
	)
	if err != nil {
		return model.PersistedInspection{}, err
	}

	p.Owner = model.OwnerIdentity(owner)
	return p, nil
}

// sortByID puts freshly inserted rows back in insertion order.
func sortByID(rows []model.PersistedInspection) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
}

// keyBatches splits keys into slices of at most size elements.
func keyBatches(keys []string, size int) [][]string {
	if size <= 0 {
		size = maxKeysPerQuery
	}
	batches := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		batches = append(batches, keys[start:end])
	}
	return batches
}

// withTimeout bounds a single storage call. A non-positive d leaves ctx as is.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

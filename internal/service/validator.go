package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

// Constraint names reported in FieldViolation.Constraint.
const (
	ConstraintRequired  = "required"
	ConstraintPattern   = "pattern"
	ConstraintMaxLength = "max_length"
	ConstraintDate      = "date"
	ConstraintInteger   = "integer"
	ConstraintNumber    = "number"
	ConstraintRange     = "range"
)

const (
	maxCounter = 9999
	maxAmount  = 999999999.99
)

var (
	inspectionNumberPattern = regexp.MustCompile(`^[0-9]+$`)
	priorityPattern         = regexp.MustCompile(`^[A-Za-zÀ-ÿ0-9\s\-]+$`)
)

// dateLayouts are tried in order by normalizeDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// textRule describes an optional free-text field.
type textRule struct {
	field   string
	maxLen  int
	trim    bool
	pattern *regexp.Regexp
}

// Validate checks one raw record and returns the normalized record.
// When the returned violations are non-empty the record must be discarded.
func Validate(raw model.RawInspection) (model.InspectionRecord, []FieldViolation) {
	v := &violations{}
	var rec model.InspectionRecord

	rec.InspectionNumber = validateInspectionNumber(raw.InspectionNumber, v)

	rec.ClaimNumber = v.text(raw.ClaimNumber, textRule{field: "nr_sinistro", maxLen: 50})
	rec.Priority = v.text(raw.Priority, textRule{field: "prioridade", maxLen: 50, pattern: priorityPattern})
	rec.InspectionCompany = v.text(raw.InspectionCompany, textRule{field: "empresa_inspecao", maxLen: 10})
	rec.CompanyBase = v.text(raw.CompanyBase, textRule{field: "base_empresa", maxLen: 255})
	rec.Inspector = v.text(raw.Inspector, textRule{field: "inspetor", maxLen: 255, trim: true})
	rec.Operator = v.text(raw.Operator, textRule{field: "operador", maxLen: 255})
	rec.Framing = v.text(raw.Framing, textRule{field: "enquadramento", maxLen: 50})
	rec.Category = v.text(raw.Category, textRule{field: "categoria", maxLen: 50})
	rec.InsuredName = v.text(raw.InsuredName, textRule{field: "segurado", maxLen: 255, trim: true})
	rec.InsuranceType = v.text(raw.InsuranceType, textRule{field: "tipo_seguro", maxLen: 50})
	rec.Address = v.text(raw.Address, textRule{field: "endereco", maxLen: 1000})
	rec.CurrentActivity = v.text(raw.CurrentActivity, textRule{field: "atividade_atual", maxLen: 255})

	rec.InclusionDate = v.date("data_inclusao", raw.InclusionDate)
	rec.ScheduledAt = v.date("agendamento", raw.ScheduledAt)
	rec.ProposalDate = v.date("data_proposta", raw.ProposalDate)
	rec.CompanyAssignedAt = v.date("data_atribuicao_empresa", raw.CompanyAssignedAt)
	rec.InspectorAssignedAt = v.date("data_atribuicao_inspetor", raw.InspectorAssignedAt)
	rec.LastActivityAt = v.date("data_ultima_atividade", raw.LastActivityAt)
	rec.LastTaskAt = v.date("ultima_tarefa", raw.LastTaskAt)

	rec.PriorCompanyDays = v.counter("dias_cia_previa", raw.PriorCompanyDays)
	rec.InspectionDays = v.counter("dias_inspecao", raw.InspectionDays)
	rec.InspectorDays = v.counter("dias_inspetor", raw.InspectorDays)

	rec.MaxGuaranteeLimit = v.amount("lmg", raw.MaxGuaranteeLimit)

	if len(v.list) > 0 {
		return model.InspectionRecord{}, v.list
	}
	return rec, nil
}

// ValidateAll validates every record of a submission. Either all records are
// returned or a *ValidationError listing each violation with its record index.
func ValidateAll(raws []model.RawInspection) ([]model.InspectionRecord, error) {
	records := make([]model.InspectionRecord, 0, len(raws))
	var all []RecordViolation

	for i, raw := range raws {
		rec, violations := Validate(raw)
		for _, fv := range violations {
			all = append(all, RecordViolation{Index: i, FieldViolation: fv})
		}
		if len(violations) == 0 {
			records = append(records, rec)
		}
	}

	if len(all) > 0 {
		return nil, &ValidationError{Reason: "invalid records", Violations: all}
	}
	return records, nil
}

func validateInspectionNumber(raw *string, v *violations) string {
	if raw == nil || *raw == "" {
		v.add("nr_inspecao", ConstraintRequired, "")
		return ""
	}

	value := *raw
	if utf8.RuneCountInString(value) > 50 {
		v.add("nr_inspecao", ConstraintMaxLength, value)
		return ""
	}
	if !inspectionNumberPattern.MatchString(value) {
		v.add("nr_inspecao", ConstraintPattern, value)
		return ""
	}
	return value
}

// normalizeText returns nil for an absent value and optionally trims a
// present one. An empty string stays present.
func normalizeText(raw *string, trim bool) *string {
	if raw == nil {
		return nil
	}
	s := *raw
	if trim {
		s = strings.TrimSpace(s)
	}
	return &s
}

// normalizeDate maps a raw date to an instant. Missing, blank and
// "undefined"-tainted values are absent. ok is false for unparseable input.
func normalizeDate(raw *string) (t *time.Time, ok bool) {
	if raw == nil {
		return nil, true
	}
	s := strings.TrimSpace(*raw)
	if s == "" || strings.Contains(strings.ToLower(s), "undefined") {
		return nil, true
	}

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			utc := parsed.UTC()
			return &utc, true
		}
	}
	return nil, false
}

// parseCounter parses a whole number of days in [0, 9999]. Values such as
// "12.0" are accepted; "12.5" is not.
func parseCounter(raw string) (int, string) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ConstraintInteger
	}
	if f != math.Trunc(f) {
		return 0, ConstraintInteger
	}
	if f < 0 || f > maxCounter {
		return 0, ConstraintRange
	}
	return int(f), ""
}

// parseAmount parses a monetary amount in [0, 999999999.99].
func parseAmount(raw string) (float64, string) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ConstraintNumber
	}
	if f < 0 || f > maxAmount {
		return 0, ConstraintRange
	}
	return f, ""
}

// violations accumulates field violations for one record.
type violations struct {
	list []FieldViolation
}

func (v *violations) add(field, constraint, value string) {
	v.list = append(v.list, FieldViolation{Field: field, Constraint: constraint, Value: value})
}

func (v *violations) text(raw *string, rule textRule) *string {
	s := normalizeText(raw, rule.trim)
	if s == nil {
		return nil
	}
	if utf8.RuneCountInString(*s) > rule.maxLen {
		v.add(rule.field, ConstraintMaxLength, truncate(*s))
		return nil
	}
	if rule.pattern != nil && !rule.pattern.MatchString(*s) {
		v.add(rule.field, ConstraintPattern, truncate(*s))
		return nil
	}
	return s
}

func (v *violations) date(field string, raw *string) *time.Time {
	t, ok := normalizeDate(raw)
	if !ok {
		v.add(field, ConstraintDate, truncate(*raw))
		return nil
	}
	return t
}

func (v *violations) counter(field string, raw *model.LooseNumber) *int {
	if raw == nil || strings.TrimSpace(string(*raw)) == "" {
		return nil
	}
	n, failed := parseCounter(string(*raw))
	if failed != "" {
		v.add(field, failed, truncate(string(*raw)))
		return nil
	}
	return &n
}

func (v *violations) amount(field string, raw *model.LooseNumber) *float64 {
	if raw == nil || strings.TrimSpace(string(*raw)) == "" {
		return nil
	}
	f, failed := parseAmount(string(*raw))
	if failed != "" {
		v.add(field, failed, truncate(string(*raw)))
		return nil
	}
	return &f
}

// truncate keeps offending values short in error payloads.
func truncate(s string) string {
	const max = 64
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

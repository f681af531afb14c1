// Package editor validates and normalizes drafts before they reach the record
// store. Validation failures are *domain.ValidationError values; nothing is
// persisted on failure.
package editor

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thyrotrack-server/internal/domain"
)

// FinalizeRecord validates a draft record and returns the finalized form. A
// new ID is assigned when the draft has none; an existing ID is preserved so
// edits replace in place. Results are cleared on non-blood-test records.
func FinalizeRecord(draft domain.MedicalRecord) (domain.MedicalRecord, error) {
	record := draft.Clone()

	record.Title = strings.TrimSpace(record.Title)
	if record.Title == "" {
		return domain.MedicalRecord{}, domain.NewValidationError("title", "title is required", draft.Title)
	}

	record.Date = strings.TrimSpace(record.Date)
	if record.Date == "" {
		return domain.MedicalRecord{}, domain.NewValidationError("date", "date is required", draft.Date)
	}
	if _, err := time.Parse(domain.DateLayout, record.Date); err != nil {
		return domain.MedicalRecord{}, domain.NewValidationError("date", "date must be a valid YYYY-MM-DD calendar date", draft.Date)
	}

	if !record.Type.Valid() {
		return domain.MedicalRecord{}, domain.NewValidationError("type", "unknown record type", string(draft.Type))
	}

	// Lab results are only meaningful on blood tests; type-specific free-text
	// fields are kept regardless, the views simply never read them.
	if record.Type != domain.RecordTypeBloodTest {
		record.Results = nil
	} else {
		results, err := finalizeResults(record.Results)
		if err != nil {
			return domain.MedicalRecord{}, err
		}
		record.Results = results
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	return record, nil
}

// finalizeResults trims markers, drops rows left entirely blank, and rejects
// non-finite values. Row order is preserved.
func finalizeResults(results []domain.LabResult) ([]domain.LabResult, error) {
	out := make([]domain.LabResult, 0, len(results))
	for i, res := range results {
		res.Marker = strings.TrimSpace(res.Marker)
		res.Unit = strings.TrimSpace(res.Unit)
		if res.Marker == "" && res.Value == 0 && res.Unit == "" {
			continue
		}
		if res.Marker == "" {
			return nil, domain.NewValidationError("results", "lab result row "+strconv.Itoa(i+1)+" has no marker name", nil)
		}
		if math.IsNaN(res.Value) || math.IsInf(res.Value, 0) {
			return nil, domain.NewValidationError("results", "lab result value for "+res.Marker+" is not a finite number", res.Value)
		}
		out = append(out, res)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// AddResultRow appends an empty lab-result row.
func AddResultRow(results []domain.LabResult) []domain.LabResult {
	return append(results, domain.LabResult{})
}

// RemoveResultRow removes the row at index i without disturbing the order of
// the remaining rows.
func RemoveResultRow(results []domain.LabResult, i int) ([]domain.LabResult, error) {
	if i < 0 || i >= len(results) {
		return nil, domain.NewValidationError("results", "no lab result row at position "+strconv.Itoa(i), i)
	}
	out := make([]domain.LabResult, 0, len(results)-1)
	out = append(out, results[:i]...)
	out = append(out, results[i+1:]...)
	return out, nil
}

// UpdateResultField sets a single field of the row at index i from its raw
// string form. An unparseable numeric value is rejected, never coerced to
// zero.
func UpdateResultField(results []domain.LabResult, i int, field, raw string) ([]domain.LabResult, error) {
	if i < 0 || i >= len(results) {
		return nil, domain.NewValidationError("results", "no lab result row at position "+strconv.Itoa(i), i)
	}

	out := make([]domain.LabResult, len(results))
	copy(out, results)

	switch field {
	case "marker":
		out[i].Marker = raw
	case "value":
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, domain.NewValidationError("value", "value must be a number", raw)
		}
		out[i].Value = v
	case "unit":
		out[i].Unit = raw
	case "referenceRange":
		out[i].ReferenceRange = raw
	default:
		return nil, domain.NewValidationError("results", "unknown lab result field '"+field+"'", field)
	}
	return out, nil
}

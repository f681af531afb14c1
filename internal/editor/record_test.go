package editor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thyrotrack-server/internal/domain"
)

func validDraft() domain.MedicalRecord {
	return domain.MedicalRecord{
		Date:  "2024-05-25",
		Type:  domain.RecordTypeBloodTest,
		Title: "Follow-up Labs",
		Results: []domain.LabResult{
			{Marker: "TSH", Value: 12.5, Unit: "mIU/L", ReferenceRange: "0.4-4.0"},
		},
	}
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	assert.Equal(t, field, verr.Field)
}

func TestFinalizeRecord_AssignsID(t *testing.T) {
	record, err := FinalizeRecord(validDraft())

	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
}

func TestFinalizeRecord_PreservesExistingID(t *testing.T) {
	draft := validDraft()
	draft.ID = "existing-id"

	record, err := FinalizeRecord(draft)

	require.NoError(t, err)
	assert.Equal(t, "existing-id", record.ID)
}

func TestFinalizeRecord_RequiresTitle(t *testing.T) {
	draft := validDraft()
	draft.Title = "   "

	_, err := FinalizeRecord(draft)
	assertValidationField(t, err, "title")
}

func TestFinalizeRecord_RequiresDate(t *testing.T) {
	draft := validDraft()
	draft.Date = ""

	_, err := FinalizeRecord(draft)
	assertValidationField(t, err, "date")
}

func TestFinalizeRecord_RejectsBadDate(t *testing.T) {
	for _, date := range []string{"2024-13-01", "2024-02-30", "05/25/2024", "yesterday"} {
		draft := validDraft()
		draft.Date = date

		_, err := FinalizeRecord(draft)
		assertValidationField(t, err, "date")
	}
}

func TestFinalizeRecord_RejectsUnknownType(t *testing.T) {
	draft := validDraft()
	draft.Type = "GENETIC_TEST"

	_, err := FinalizeRecord(draft)
	assertValidationField(t, err, "type")
}

func TestFinalizeRecord_ClearsResultsForNonBloodTest(t *testing.T) {
	draft := validDraft()
	draft.Type = domain.RecordTypeImaging
	draft.ImagingFindings = "No suspicious nodes"

	record, err := FinalizeRecord(draft)

	require.NoError(t, err)
	assert.Nil(t, record.Results)
	assert.Equal(t, "No suspicious nodes", record.ImagingFindings)
}

func TestFinalizeRecord_DropsBlankResultRows(t *testing.T) {
	draft := validDraft()
	draft.Results = append(draft.Results, domain.LabResult{})

	record, err := FinalizeRecord(draft)

	require.NoError(t, err)
	require.Len(t, record.Results, 1)
	assert.Equal(t, "TSH", record.Results[0].Marker)
}

func TestFinalizeRecord_RejectsResultWithoutMarker(t *testing.T) {
	draft := validDraft()
	draft.Results = []domain.LabResult{{Value: 1.5, Unit: "ng/dL"}}

	_, err := FinalizeRecord(draft)
	assertValidationField(t, err, "results")
}

func TestFinalizeRecord_RejectsNonFiniteValue(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		draft := validDraft()
		draft.Results = []domain.LabResult{{Marker: "TSH", Value: v}}

		_, err := FinalizeRecord(draft)
		assertValidationField(t, err, "results")
	}
}

func TestFinalizeRecord_DoesNotMutateDraft(t *testing.T) {
	draft := validDraft()
	draft.Title = "  padded  "

	record, err := FinalizeRecord(draft)

	require.NoError(t, err)
	assert.Equal(t, "padded", record.Title)
	assert.Equal(t, "  padded  ", draft.Title, "draft must be untouched")
}

func TestAddResultRow(t *testing.T) {
	results := AddResultRow(nil)
	require.Len(t, results, 1)
	assert.Equal(t, domain.LabResult{}, results[0])

	results = AddResultRow(results)
	assert.Len(t, results, 2)
}

func TestRemoveResultRow(t *testing.T) {
	results := []domain.LabResult{
		{Marker: "TSH"},
		{Marker: "Free T4"},
		{Marker: "Calcium"},
	}

	out, err := RemoveResultRow(results, 1)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "TSH", out[0].Marker)
	assert.Equal(t, "Calcium", out[1].Marker)
}

func TestRemoveResultRow_OutOfRange(t *testing.T) {
	_, err := RemoveResultRow([]domain.LabResult{{Marker: "TSH"}}, 3)
	assertValidationField(t, err, "results")

	_, err = RemoveResultRow(nil, 0)
	assertValidationField(t, err, "results")
}

func TestUpdateResultField(t *testing.T) {
	results := []domain.LabResult{{Marker: "TSH"}}

	out, err := UpdateResultField(results, 0, "value", "12.5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, out[0].Value)

	out, err = UpdateResultField(out, 0, "unit", "mIU/L")
	require.NoError(t, err)
	assert.Equal(t, "mIU/L", out[0].Unit)

	out, err = UpdateResultField(out, 0, "referenceRange", "0.4-4.0")
	require.NoError(t, err)
	assert.Equal(t, "0.4-4.0", out[0].ReferenceRange)
}

func TestUpdateResultField_RejectsUnparseableValue(t *testing.T) {
	results := []domain.LabResult{{Marker: "TSH", Value: 4.2}}

	_, err := UpdateResultField(results, 0, "value", "12.5.1")
	assertValidationField(t, err, "value")

	// Rejected input must not coerce the stored value to zero.
	assert.Equal(t, 4.2, results[0].Value)
}

func TestUpdateResultField_UnknownField(t *testing.T) {
	_, err := UpdateResultField([]domain.LabResult{{Marker: "TSH"}}, 0, "color", "blue")
	assertValidationField(t, err, "results")
}

func TestUpdateResultField_DoesNotMutateInput(t *testing.T) {
	results := []domain.LabResult{{Marker: "TSH"}}

	out, err := UpdateResultField(results, 0, "marker", "Free T4")

	require.NoError(t, err)
	assert.Equal(t, "Free T4", out[0].Marker)
	assert.Equal(t, "TSH", results[0].Marker)
}

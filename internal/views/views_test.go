package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thyrotrack-server/internal/domain"
)

func bloodTest(id, date string, results ...domain.LabResult) domain.MedicalRecord {
	return domain.MedicalRecord{
		ID:      id,
		Date:    date,
		Type:    domain.RecordTypeBloodTest,
		Title:   "Labs " + id,
		Results: results,
	}
}

func testRecords() []domain.MedicalRecord {
	return []domain.MedicalRecord{
		bloodTest("1", "2023-01-15",
			domain.LabResult{Marker: "TSH", Value: 4.2, Unit: "mIU/L"},
			domain.LabResult{Marker: "Free T4", Value: 1.1, Unit: "ng/dL"},
			domain.LabResult{Marker: "Thyroglobulin", Value: 45, Unit: "ng/mL"},
		),
		{ID: "2", Date: "2023-02-10", Type: domain.RecordTypeImaging, Title: "Neck Ultrasound", IsMajorEvent: true},
		{ID: "3", Date: "2023-03-05", Type: domain.RecordTypeImaging, Title: "CT Chest/Neck"},
		{ID: "4", Date: "2024-05-12", Type: domain.RecordTypeSurgery, Title: "Total Thyroidectomy", IsMajorEvent: true},
		{ID: "5", Date: "2024-05-18", Type: domain.RecordTypePathology, Title: "Pathology Report", IsMajorEvent: true},
		bloodTest("6", "2024-05-25",
			domain.LabResult{Marker: "TSH", Value: 12.5, Unit: "mIU/L"},
			domain.LabResult{Marker: "Thyroglobulin", Value: 0.8, Unit: "ng/mL"},
			domain.LabResult{Marker: "Calcium", Value: 8.2, Unit: "mg/dL"},
		),
	}
}

func TestTimeline_SortsDateDescending(t *testing.T) {
	timeline := Timeline(testRecords(), FilterAll)

	require.Len(t, timeline, 6)
	assert.Equal(t, "6", timeline[0].ID)
	assert.Equal(t, "5", timeline[1].ID)
	assert.Equal(t, "4", timeline[2].ID)
	assert.Equal(t, "1", timeline[5].ID)
}

func TestTimeline_StableForSameDate(t *testing.T) {
	records := []domain.MedicalRecord{
		{ID: "a", Date: "2024-05-12", Type: domain.RecordTypeAppointment, Title: "First"},
		{ID: "b", Date: "2024-05-12", Type: domain.RecordTypeAppointment, Title: "Second"},
		{ID: "c", Date: "2023-01-01", Type: domain.RecordTypeAppointment, Title: "Old"},
	}

	// Same-date records must keep insertion order across repeated renders.
	for i := 0; i < 5; i++ {
		timeline := Timeline(records, FilterAll)
		require.Len(t, timeline, 3)
		assert.Equal(t, "a", timeline[0].ID)
		assert.Equal(t, "b", timeline[1].ID)
		assert.Equal(t, "c", timeline[2].ID)
	}
}

func TestTimeline_MilestonesOnly(t *testing.T) {
	timeline := Timeline(testRecords(), FilterMilestones)

	require.Len(t, timeline, 3)
	for _, r := range timeline {
		assert.True(t, r.IsMajorEvent)
	}
	assert.Equal(t, "5", timeline[0].ID)
	assert.Equal(t, "4", timeline[1].ID)
	assert.Equal(t, "2", timeline[2].ID)
}

func TestTimeline_UnparseableDatesSortLast(t *testing.T) {
	records := []domain.MedicalRecord{
		{ID: "bad", Date: "not-a-date", Type: domain.RecordTypeAppointment, Title: "Bad"},
		{ID: "good", Date: "2024-01-01", Type: domain.RecordTypeAppointment, Title: "Good"},
	}

	timeline := Timeline(records, FilterAll)
	require.Len(t, timeline, 2)
	assert.Equal(t, "good", timeline[0].ID)
	assert.Equal(t, "bad", timeline[1].ID)
}

func TestTimeline_DoesNotMutateInput(t *testing.T) {
	records := testRecords()
	Timeline(records, FilterAll)
	assert.Equal(t, "1", records[0].ID, "input order must be untouched")
}

func TestMajorEventCount(t *testing.T) {
	assert.Equal(t, 3, MajorEventCount(testRecords()))
	assert.Equal(t, 0, MajorEventCount(nil))
}

func TestLatestValueForMarker(t *testing.T) {
	value, unit, ok := LatestValueForMarker(testRecords(), "Thyroglobulin")

	require.True(t, ok)
	assert.Equal(t, 0.8, value)
	assert.Equal(t, "ng/mL", unit)
}

func TestLatestValueForMarker_NotFound(t *testing.T) {
	_, _, ok := LatestValueForMarker(testRecords(), "TgAb")
	assert.False(t, ok)
}

func TestLatestValueForMarker_SameDateLaterInsertionWins(t *testing.T) {
	records := []domain.MedicalRecord{
		bloodTest("a", "2024-05-25", domain.LabResult{Marker: "TSH", Value: 1.0, Unit: "mIU/L"}),
		bloodTest("b", "2024-05-25", domain.LabResult{Marker: "TSH", Value: 2.0, Unit: "mIU/L"}),
	}

	value, _, ok := LatestValueForMarker(records, "TSH")
	require.True(t, ok)
	assert.Equal(t, 2.0, value)
}

func TestLatestValueForMarker_IgnoresNonBloodTests(t *testing.T) {
	records := []domain.MedicalRecord{
		{
			ID: "x", Date: "2025-01-01", Type: domain.RecordTypeImaging, Title: "Scan",
			Results: []domain.LabResult{{Marker: "TSH", Value: 99}},
		},
		bloodTest("a", "2024-05-25", domain.LabResult{Marker: "TSH", Value: 1.5, Unit: "mIU/L"}),
	}

	value, _, ok := LatestValueForMarker(records, "TSH")
	require.True(t, ok)
	assert.Equal(t, 1.5, value)
}

func TestDiscoverMarkers(t *testing.T) {
	records := []domain.MedicalRecord{
		bloodTest("1", "2023-01-15",
			domain.LabResult{Marker: "TSH"},
			domain.LabResult{Marker: "Free T4"},
			domain.LabResult{Marker: "Thyroglobulin"},
		),
		bloodTest("2", "2024-05-25",
			domain.LabResult{Marker: "TSH"},
			domain.LabResult{Marker: "Calcium"},
		),
	}

	markers := DiscoverMarkers(records)
	assert.Equal(t, []string{"Calcium", "Free T4", "TSH", "Thyroglobulin"}, markers)
}

func TestDiscoverMarkers_Empty(t *testing.T) {
	assert.Empty(t, DiscoverMarkers(nil))
	assert.Empty(t, DiscoverMarkers([]domain.MedicalRecord{
		{ID: "1", Date: "2024-01-01", Type: domain.RecordTypeSurgery, Title: "Surgery"},
	}))
}

func TestPivotTable(t *testing.T) {
	rows := PivotTable(testRecords(), []string{"TSH", "Thyroglobulin", "TgAb"})

	require.Len(t, rows, 2, "one row per blood test")
	assert.Equal(t, "6", rows[0].RecordID, "most recent test first")
	assert.Equal(t, "1", rows[1].RecordID)

	// Present measurement
	tsh := rows[0].Cells["TSH"]
	assert.True(t, tsh.Present)
	assert.Equal(t, 12.5, tsh.Value)
	assert.Equal(t, "mIU/L", tsh.Unit)

	// Absent measurement is explicit, distinguishable from zero
	tgab := rows[0].Cells["TgAb"]
	assert.False(t, tgab.Present)
}

func TestPivotTable_AbsentDistinguishableFromZero(t *testing.T) {
	records := []domain.MedicalRecord{
		bloodTest("1", "2024-01-01", domain.LabResult{Marker: "Thyroglobulin", Value: 0, Unit: "ng/mL"}),
	}

	rows := PivotTable(records, []string{"Thyroglobulin", "TSH"})
	require.Len(t, rows, 1)

	zero := rows[0].Cells["Thyroglobulin"]
	assert.True(t, zero.Present, "a measured zero is present")
	assert.Equal(t, 0.0, zero.Value)

	missing := rows[0].Cells["TSH"]
	assert.False(t, missing.Present, "an unmeasured marker is absent")
}

func TestMarkerTimeSeries_Ascending(t *testing.T) {
	points := MarkerTimeSeries(testRecords(), "Thyroglobulin")

	require.Len(t, points, 2)
	assert.Equal(t, "2023-01-15", points[0].Date)
	assert.Equal(t, 45.0, points[0].Value)
	assert.Equal(t, "2024-05-25", points[1].Date)
	assert.Equal(t, 0.8, points[1].Value)
}

func TestMarkerTimeSeries_UnknownMarker(t *testing.T) {
	assert.Empty(t, MarkerTimeSeries(testRecords(), "Vitamin D"))
}

// Package views computes read-only projections of the record collection:
// the chronological timeline, marker discovery, the lab pivot table, and
// per-marker time series. Every function is pure; none mutates its input.
package views

import (
	"sort"
	"time"

	"github.com/thyrotrack-server/internal/domain"
)

// Filter selects which records the timeline shows.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterMilestones Filter = "milestones"
)

// parseDate reports the record date and whether it parsed. Views tolerate
// unparseable dates (persisted blobs are untrusted) even though the editor
// rejects them.
func parseDate(date string) (time.Time, bool) {
	t, err := time.Parse(domain.DateLayout, date)
	return t, err == nil
}

// Timeline returns the records sorted by date descending, most recent first.
// The sort is stable: same-date records keep their insertion order across
// renders. Records with unparseable dates sort last. FilterMilestones
// restricts to major events before sorting.
func Timeline(records []domain.MedicalRecord, filter Filter) []domain.MedicalRecord {
	out := make([]domain.MedicalRecord, 0, len(records))
	for _, r := range records {
		if filter == FilterMilestones && !r.IsMajorEvent {
			continue
		}
		out = append(out, r.Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, oki := parseDate(out[i].Date)
		dj, okj := parseDate(out[j].Date)
		if oki != okj {
			return oki // parseable dates before unparseable ones
		}
		if !oki {
			return false
		}
		return di.After(dj)
	})
	return out
}

// MajorEventCount counts the records flagged as milestones.
func MajorEventCount(records []domain.MedicalRecord) int {
	count := 0
	for _, r := range records {
		if r.IsMajorEvent {
			count++
		}
	}
	return count
}

// LatestValueForMarker returns the value and unit of the given marker from
// the most recent blood test that measured it. When two blood tests share the
// maximum date, the one later in insertion order wins. Records with
// unparseable dates are ignored. ok is false when no blood test measured the
// marker.
func LatestValueForMarker(records []domain.MedicalRecord, marker string) (value float64, unit string, ok bool) {
	var best time.Time
	found := false

	for _, r := range records {
		if r.Type != domain.RecordTypeBloodTest {
			continue
		}
		d, parsed := parseDate(r.Date)
		if !parsed {
			continue
		}
		if found && d.Before(best) {
			continue
		}
		for _, res := range r.Results {
			if res.Marker == marker {
				best = d
				value = res.Value
				unit = res.Unit
				found = true
				break
			}
		}
	}
	return value, unit, found
}

// DiscoverMarkers returns the distinct markers appearing in any blood test,
// deduplicated and lexicographically sorted.
func DiscoverMarkers(records []domain.MedicalRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Type != domain.RecordTypeBloodTest {
			continue
		}
		for _, res := range r.Results {
			seen[res.Marker] = struct{}{}
		}
	}

	markers := make([]string, 0, len(seen))
	for m := range seen {
		markers = append(markers, m)
	}
	sort.Strings(markers)
	return markers
}

// PivotCell is one marker column entry of a pivot row. Present distinguishes
// a genuinely absent measurement from a zero value.
type PivotCell struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Present bool    `json:"present"`
}

// PivotRow is one blood-test row of the lab comparison table.
type PivotRow struct {
	RecordID string               `json:"recordId"`
	Date     string               `json:"date"`
	Title    string               `json:"title"`
	Cells    map[string]PivotCell `json:"cells"`
}

// PivotTable returns one row per blood test, date descending, with a cell per
// selected marker. Markers the test did not measure get an explicit
// not-present cell.
func PivotTable(records []domain.MedicalRecord, selectedMarkers []string) []PivotRow {
	var tests []domain.MedicalRecord
	for _, r := range records {
		if r.Type == domain.RecordTypeBloodTest {
			tests = append(tests, r)
		}
	}
	tests = Timeline(tests, FilterAll)

	rows := make([]PivotRow, 0, len(tests))
	for _, r := range tests {
		row := PivotRow{
			RecordID: r.ID,
			Date:     r.Date,
			Title:    r.Title,
			Cells:    make(map[string]PivotCell, len(selectedMarkers)),
		}
		for _, marker := range selectedMarkers {
			cell := PivotCell{}
			for _, res := range r.Results {
				if res.Marker == marker {
					cell = PivotCell{Value: res.Value, Unit: res.Unit, Present: true}
					break
				}
			}
			row.Cells[marker] = cell
		}
		rows = append(rows, row)
	}
	return rows
}

// SeriesPoint is one (date, value) observation of a marker.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// MarkerTimeSeries returns the marker's observations sorted by date
// ascending. Trend charts read left to right in time, opposite of the
// timeline order.
func MarkerTimeSeries(records []domain.MedicalRecord, marker string) []SeriesPoint {
	var points []SeriesPoint
	for _, r := range records {
		if r.Type != domain.RecordTypeBloodTest {
			continue
		}
		for _, res := range r.Results {
			if res.Marker == marker {
				points = append(points, SeriesPoint{Date: r.Date, Value: res.Value})
				break
			}
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		di, oki := parseDate(points[i].Date)
		dj, okj := parseDate(points[j].Date)
		if oki != okj {
			return !oki // unparseable dates first, so they stay off the chart's tail
		}
		if !oki {
			return false
		}
		return di.Before(dj)
	})
	return points
}

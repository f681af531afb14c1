package domain

// Core Enums and Types

// RecordType represents the category of a clinical event. The set is closed:
// every consumer that switches on it must handle all variants.
type RecordType string

const (
	RecordTypeBloodTest   RecordType = "BLOOD_TEST"
	RecordTypeImaging     RecordType = "IMAGING"
	RecordTypeSurgery     RecordType = "SURGERY"
	RecordTypePathology   RecordType = "PATHOLOGY"
	RecordTypeAppointment RecordType = "APPOINTMENT"
	RecordTypeMedication  RecordType = "MEDICATION"
)

// AllRecordTypes lists every valid record type, in display order.
func AllRecordTypes() []RecordType {
	return []RecordType{
		RecordTypeBloodTest,
		RecordTypeImaging,
		RecordTypeSurgery,
		RecordTypePathology,
		RecordTypeAppointment,
		RecordTypeMedication,
	}
}

// Valid reports whether t is one of the known record types.
func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeBloodTest, RecordTypeImaging, RecordTypeSurgery,
		RecordTypePathology, RecordTypeAppointment, RecordTypeMedication:
		return true
	}
	return false
}

// DateLayout is the calendar date format used throughout the record model.
const DateLayout = "2006-01-02"

// Core Data Models

// LabResult represents one named measurement within a blood-test record.
// Marker is an open vocabulary; any non-empty string is a valid marker.
type LabResult struct {
	Marker         string  `json:"marker"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	ReferenceRange string  `json:"referenceRange,omitempty"`
}

// MedicalRecord represents one dated clinical event.
type MedicalRecord struct {
	ID               string      `json:"id"`
	Date             string      `json:"date"` // YYYY-MM-DD
	Type             RecordType  `json:"type"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Location         string      `json:"location,omitempty"`
	Provider         string      `json:"provider,omitempty"`
	Results          []LabResult `json:"results,omitempty"`          // blood tests only
	ImagingFindings  string      `json:"imagingFindings,omitempty"`  // imaging only
	PathologyStaging string      `json:"pathologyStaging,omitempty"` // pathology only
	IsMajorEvent     bool        `json:"isMajorEvent,omitempty"`
}

// Clone returns a deep copy of the record, so callers can hand out
// snapshots without exposing the store's backing slices.
func (r MedicalRecord) Clone() MedicalRecord {
	out := r
	if r.Results != nil {
		out.Results = make([]LabResult, len(r.Results))
		copy(out.Results, r.Results)
	}
	return out
}

// PatientProfile represents the single patient the tracker belongs to.
type PatientProfile struct {
	Name          string `json:"name"`
	DOB           string `json:"dob"`
	Age           int    `json:"age,omitempty"`
	Diagnosis     string `json:"diagnosis"`
	DiagnosisDate string `json:"diagnosisDate"`
	Stage         string `json:"stage,omitempty"`
}

// SummaryState represents the lifecycle of an asynchronous summary request.
type SummaryState string

const (
	SummaryIdle      SummaryState = "idle"
	SummaryPending   SummaryState = "pending"
	SummarySucceeded SummaryState = "succeeded"
	SummaryFailed    SummaryState = "failed"
)

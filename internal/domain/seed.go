package domain

import (
	"time"
)

// SeedRecords returns the built-in default record collection, used when no
// persisted state exists or the persisted blob cannot be read.
func SeedRecords() []MedicalRecord {
	return []MedicalRecord{
		{
			ID:          "1",
			Date:        "2023-01-15",
			Type:        RecordTypeBloodTest,
			Title:       "Baseline Thyroid Panel",
			Description: "Initial tests after noticing a neck lump.",
			Results: []LabResult{
				{Marker: "TSH", Value: 4.2, Unit: "mIU/L", ReferenceRange: "0.4-4.0"},
				{Marker: "Free T4", Value: 1.1, Unit: "ng/dL", ReferenceRange: "0.8-1.8"},
				{Marker: "Thyroglobulin", Value: 45, Unit: "ng/mL"},
			},
		},
		{
			ID:              "2",
			Date:            "2023-02-10",
			Type:            RecordTypeImaging,
			Title:           "Neck Ultrasound",
			Description:     "Ultrasound of thyroid and lymph nodes.",
			ImagingFindings: "2.4cm solid, hypoechoic nodule in left lobe. TIRADS 5. Multiple enlarged level VI lymph nodes.",
			IsMajorEvent:    true,
		},
		{
			ID:              "3",
			Date:            "2023-03-05",
			Type:            RecordTypeImaging,
			Title:           "CT Chest/Neck",
			Description:     "Staging scan prior to surgery.",
			ImagingFindings: "No distant metastasis. Confirmed primary nodule and suspicious lymphadenopathy.",
		},
		{
			ID:           "4",
			Date:         "2024-05-12",
			Type:         RecordTypeSurgery,
			Title:        "Total Thyroidectomy",
			Description:  "Total thyroidectomy with central neck dissection.",
			Location:     "City Medical Center",
			Provider:     "Dr. Sarah Chen",
			IsMajorEvent: true,
		},
		{
			ID:               "5",
			Date:             "2024-05-18",
			Type:             RecordTypePathology,
			Title:            "Pathology Report",
			Description:      "Post-surgical tissue analysis.",
			PathologyStaging: "pT2 N1a M0. Papillary Thyroid Carcinoma, Classic Variant.",
			IsMajorEvent:     true,
		},
		{
			ID:          "6",
			Date:        "2024-05-25",
			Type:        RecordTypeBloodTest,
			Title:       "Post-Op Lab Work",
			Description: "First labs after surgery.",
			Results: []LabResult{
				{Marker: "TSH", Value: 12.5, Unit: "mIU/L"},
				{Marker: "Thyroglobulin", Value: 0.8, Unit: "ng/mL"},
				{Marker: "Calcium", Value: 8.2, Unit: "mg/dL"},
			},
		},
	}
}

// DefaultLabMarkers is the default marker selection for the lab pivot table.
var DefaultLabMarkers = []string{"TSH", "Free T4", "Thyroglobulin", "TgAb", "Calcium"}

// DefaultDiagnosis is used when a profile is saved without one.
const DefaultDiagnosis = "Thyroid Condition"

// DefaultProfile returns the built-in patient profile, used when no persisted
// profile exists.
func DefaultProfile(now time.Time) PatientProfile {
	return PatientProfile{
		Name:          "New Patient",
		Diagnosis:     DefaultDiagnosis,
		DiagnosisDate: now.Format(DateLayout),
	}
}

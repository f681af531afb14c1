package editor

import (
	"strings"
	"time"

	"github.com/thyrotrack-server/internal/domain"
)

// FinalizeProfile validates a draft profile against the previously stored one
// and returns the finalized form. Whenever the date of birth is set or
// changed, age is rederived from it; a manually entered age survives until the
// next dob change.
func FinalizeProfile(draft, previous domain.PatientProfile, now time.Time) (domain.PatientProfile, error) {
	profile := draft

	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return domain.PatientProfile{}, domain.NewValidationError("name", "name is required", draft.Name)
	}

	if strings.TrimSpace(profile.Diagnosis) == "" {
		profile.Diagnosis = domain.DefaultDiagnosis
	}

	profile.DOB = strings.TrimSpace(profile.DOB)
	if profile.DOB != "" {
		dob, err := time.Parse(domain.DateLayout, profile.DOB)
		if err != nil {
			return domain.PatientProfile{}, domain.NewValidationError("dob", "date of birth must be a valid YYYY-MM-DD calendar date", draft.DOB)
		}
		if profile.DOB != previous.DOB {
			profile.Age = AgeAt(dob, now)
		}
	}

	return profile, nil
}

// AgeAt computes whole years between dob and now, decremented by one when this
// year's birthday has not happened yet.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

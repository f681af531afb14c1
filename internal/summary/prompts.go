package summary

import (
	"encoding/json"
	"fmt"

	"github.com/thyrotrack-server/internal/domain"
)

// briefingTemplate is the fixed instruction for the clinician briefing. The
// serialized record collection is appended where %s appears.
const briefingTemplate = `As a specialized medical assistant for thyroid cancer, please summarize the following medical history records into a concise, professional briefing for a new oncologist.

Format the response clearly with the following sections:
1. **Patient Overview**: Brief history and current status.
2. **Clinical Timeline**: Key milestones (Diagnosis, Imaging highlights, Surgery).
3. **Key Lab Trends**: Focus on TSH, Thyroglobulin (Tg), and Calcium trends.
4. **Current Status & Staging**: Based on the latest pathology/imaging.
5. **Questions for Next Appointment**: Suggest 3-5 specific questions the patient should ask.

User Records:
%s

Please keep the tone professional and the information easy to scan.`

// extractionTemplate asks for structured lab results out of raw report text.
const extractionTemplate = `Extract lab results from the following raw text from a medical report.
Focus on Thyroid markers (TSH, Free T4, T3, Thyroglobulin, TgAb, Calcium).
Return the data as a JSON array of objects with keys: marker, value (number), unit.
Text: "%s"`

// BuildBriefingPrompt serializes the record collection and embeds it in the
// briefing template. Serialization is structured JSON, not prose.
func BuildBriefingPrompt(records []domain.MedicalRecord) (string, error) {
	recordsJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize records: %w", err)
	}
	return fmt.Sprintf(briefingTemplate, recordsJSON), nil
}

// BuildExtractionPrompt embeds raw report text in the extraction template.
func BuildExtractionPrompt(text string) string {
	return fmt.Sprintf(extractionTemplate, text)
}

// labResultSchema constrains the extraction response shape.
func labResultSchema() map[string]any {
	return map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"marker": map[string]any{
					"type":        "STRING",
					"description": "The medical lab marker name.",
				},
				"value": map[string]any{
					"type":        "NUMBER",
					"description": "The numerical value recorded.",
				},
				"unit": map[string]any{
					"type":        "STRING",
					"description": "The measurement unit (e.g., mIU/L).",
				},
			},
			"required": []string{"marker", "value", "unit"},
		},
	}
}

// Package prompt renders the user prompts for the two model calls and holds
// their system instructions. Patient data is inlined as JSON so the model
// sees exactly what the store persists.
package prompt

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"prepmate/internal/store"
)

//go:embed templates/*.txt
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.txt"))

// SuggestSystem instructs the model for the summary/follow-up step.
const SuggestSystem = `You are a helpful assistant that helps patients prepare for doctor visits.
You analyze symptom descriptions and generate:
1. A concise 1-sentence summary
2. Up to 5 clarifying follow-up questions

You are NOT a doctor and must NOT provide diagnoses or medical advice.
Only include pregnancy-related questions if symptoms clearly require it.
Keep questions concise and prefer yes/no or short-answer formats.

You must respond with valid JSON in this exact format:
{
  "summary": "<1 sentence summary>",
  "followupQuestions": [
    {"id": "q1", "label": "<question text>", "type": "text|choice|scale", "options": [], "min": 1, "max": 10}
  ]
}`

// GenerateSystem instructs the model for the final prep-sheet step.
const GenerateSystem = `You are a helpful assistant that creates Doctor Appointment Prep Sheets.
You generate structured HTML prep sheets with:
- Patient information
- Symptom summary
- Doctor questionnaire
- Things to bring
- Conversation starter
- Safety reminders

You are NOT a doctor and must NOT provide medical advice or diagnosis.
Always include a disclaimer: "This is a communication aid, not medical advice."
Include red-flag guidance for when to seek urgent care (general terms only).

You must respond with valid JSON in this exact format:
{
  "prep_sheet_html": "<clean HTML with sections>",
  "prep_sheet_text": "<plain text version>"
}`

type suggestData struct {
	PatientInfo        string
	SymptomDescription string
	Language           string
}

type generateData struct {
	PatientInfo string
	Summary     string
	Answers     string
	Language    string
}

// RenderSuggest builds the user prompt for the summary/follow-up call.
func RenderSuggest(info store.PatientInfo, symptoms, language string) (string, error) {
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal patient info: %w", err)
	}
	return render("suggest.txt", suggestData{
		PatientInfo:        string(infoJSON),
		SymptomDescription: symptoms,
		Language:           language,
	})
}

// RenderGenerate builds the user prompt for the final prep-sheet call.
func RenderGenerate(info store.PatientInfo, summary string, answers []store.Answer, language string) (string, error) {
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal patient info: %w", err)
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("failed to marshal answers: %w", err)
	}
	return render("generate.txt", generateData{
		PatientInfo: string(infoJSON),
		Summary:     summary,
		Answers:     string(answersJSON),
		Language:    language,
	})
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return b.String(), nil
}

package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prepmate/internal/store"
)

func TestParseSuggestionMarkerFormat(t *testing.T) {
	summary, questions := ParseSuggestion("Summary: X\nQuestions: A_input|B_input")

	assert.Equal(t, "X", summary)
	if assert.Len(t, questions, 2) {
		assert.Equal(t, "A", questions[0].Label)
		assert.Equal(t, "q1", questions[0].ID)
		assert.Equal(t, store.QuestionText, questions[0].Type)
		assert.Equal(t, "B", questions[1].Label)
		assert.Equal(t, "q2", questions[1].ID)
	}
}

func TestParseSuggestionMissingMarker(t *testing.T) {
	raw := "The model ignored the format and wrote prose instead."
	summary, questions := ParseSuggestion(raw)

	assert.Equal(t, raw, summary)
	assert.Empty(t, questions)
}

func TestParseSuggestionJSON(t *testing.T) {
	raw := `{
		"summary": "Mild headache for two days.",
		"followupQuestions": [
			{"id": "q1", "label": "When did it start?", "type": "text"},
			{"id": "q2", "label": "Rate the pain from 1-10", "type": "scale", "min": 1, "max": 10},
			{"id": "q3", "label": "Any fever?", "type": "choice", "options": ["Yes", "No"]}
		]
	}`
	summary, questions := ParseSuggestion(raw)

	assert.Equal(t, "Mild headache for two days.", summary)
	if assert.Len(t, questions, 3) {
		assert.Equal(t, store.QuestionScale, questions[1].Type)
		assert.Equal(t, 1, questions[1].Min)
		assert.Equal(t, 10, questions[1].Max)
		assert.Equal(t, []string{"Yes", "No"}, questions[2].Options)
	}
}

func TestParseSuggestionJSONLegacyFieldName(t *testing.T) {
	// The direct-call backend variant used "questions" instead of
	// "followupQuestions"; both must be accepted.
	raw := `{"summary": "S", "questions": [{"id": "q1", "label": "L", "type": "text"}]}`
	summary, questions := ParseSuggestion(raw)

	assert.Equal(t, "S", summary)
	assert.Len(t, questions, 1)
}

func TestParseSuggestionJSONInCodeFence(t *testing.T) {
	raw := "```json\n{\"summary\": \"S\", \"followupQuestions\": [{\"label\": \"L\"}]}\n```"
	summary, questions := ParseSuggestion(raw)

	assert.Equal(t, "S", summary)
	if assert.Len(t, questions, 1) {
		assert.Equal(t, "q1", questions[0].ID, "missing id gets generated")
		assert.Equal(t, store.QuestionText, questions[0].Type, "missing type coerces to text")
	}
}

func TestParseSuggestionEmptyQuestionEntries(t *testing.T) {
	_, questions := ParseSuggestion("Summary: S\nQuestions: A_input| |B_input|")
	if assert.Len(t, questions, 2) {
		assert.Equal(t, "A", questions[0].Label)
		assert.Equal(t, "B", questions[1].Label)
	}
}

func TestParsePrepSheetMarkers(t *testing.T) {
	html, text := ParsePrepSheet("intro text HTML Prep Sheet: <h1>Hi</h1> Plain Text Prep Sheet: Hi ")

	assert.Equal(t, "<h1>Hi</h1>", html)
	assert.Equal(t, "Hi", text)
}

func TestParsePrepSheetHTMLMarkerOnly(t *testing.T) {
	html, text := ParsePrepSheet("HTML Prep Sheet: <p>Only HTML</p>")

	assert.Equal(t, "<p>Only HTML</p>", html)
	assert.Equal(t, ErrTextPlaceholder, text)
}

func TestParsePrepSheetTextMarkerOnly(t *testing.T) {
	html, text := ParsePrepSheet("Plain Text Prep Sheet: only text")

	assert.Equal(t, ErrHTMLPlaceholder, html)
	assert.Equal(t, "only text", text)
}

func TestParsePrepSheetNoMarkers(t *testing.T) {
	raw := "free-form model output"
	html, text := ParsePrepSheet(raw)

	assert.Equal(t, "<pre>"+raw+"</pre>", html)
	assert.Equal(t, raw, text)
}

func TestParsePrepSheetJSON(t *testing.T) {
	raw := `{"prep_sheet_html": "<h1>Sheet</h1>", "prep_sheet_text": "Sheet"}`
	html, text := ParsePrepSheet(raw)

	assert.Equal(t, "<h1>Sheet</h1>", html)
	assert.Equal(t, "Sheet", text)
}

func TestParsePrepSheetJSONEmptyHTML(t *testing.T) {
	html, text := ParsePrepSheet(`{"prep_sheet_text": "only text"}`)

	assert.Equal(t, "<p>No data</p>", html)
	assert.Equal(t, "only text", text)
}

// Package reply interprets model replies for the two generation steps.
//
// Replies are expected to be JSON per the prompt instructions, but the
// legacy marker format is kept as a fallback. Parsing never fails hard: a
// reply that matches neither shape degrades to placeholder output so the
// intake flow can continue.
package reply

import (
	"encoding/json"
	"fmt"
	"strings"

	"prepmate/internal/store"
)

// Literal markers of the legacy reply format.
const (
	questionsMarker = "\nQuestions:"
	summaryPrefix   = "Summary:"
	htmlMarker      = "HTML Prep Sheet:"
	plainTextMarker = "Plain Text Prep Sheet:"
)

// Placeholders used when a prep-sheet reply cannot be split.
const (
	ErrHTMLPlaceholder = "<p>Error generating HTML prep sheet.</p>"
	ErrTextPlaceholder = "Error generating plain text prep sheet."
	emptyHTMLFallback  = "<p>No data</p>"
)

type suggestionPayload struct {
	Summary           string           `json:"summary"`
	FollowupQuestions []store.Question `json:"followupQuestions"`
	Questions         []store.Question `json:"questions"`
}

type prepSheetPayload struct {
	PrepSheetHTML string `json:"prep_sheet_html"`
	PrepSheetText string `json:"prep_sheet_text"`
}

// ParseSuggestion extracts the symptom summary and follow-up questions from a
// suggest-step reply. JSON is tried first; the marker format second. A reply
// matching neither becomes the summary with an empty question set.
func ParseSuggestion(raw string) (string, []store.Question) {
	text := stripCodeFence(raw)

	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		var payload suggestionPayload
		if err := json.Unmarshal([]byte(text), &payload); err == nil {
			// The two backend variants disagree on the field name; accept
			// followupQuestions first, then questions.
			qs := payload.FollowupQuestions
			if len(qs) == 0 {
				qs = payload.Questions
			}
			return payload.Summary, normalizeQuestions(qs)
		}
	}

	summaryPart, questionsPart, found := strings.Cut(raw, questionsMarker)
	if !found {
		return strings.TrimSpace(raw), nil
	}
	summary := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(summaryPart), summaryPrefix))

	var questions []store.Question
	for _, q := range strings.Split(questionsPart, "|") {
		label := strings.TrimSuffix(strings.TrimSpace(q), "_input")
		if label == "" {
			continue
		}
		questions = append(questions, store.Question{
			ID:    fmt.Sprintf("q%d", len(questions)+1),
			Label: label,
			Type:  store.QuestionText,
		})
	}
	return summary, questions
}

// ParsePrepSheet splits a generate-step reply into its HTML and plain-text
// parts. JSON is tried first, then the literal section markers. With neither,
// the whole reply is treated as plain text and wrapped in a preformatted
// block for HTML.
func ParsePrepSheet(raw string) (html, text string) {
	cleaned := stripCodeFence(raw)

	if strings.HasPrefix(strings.TrimSpace(cleaned), "{") {
		var payload prepSheetPayload
		if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
			if payload.PrepSheetHTML == "" {
				payload.PrepSheetHTML = emptyHTMLFallback
			}
			return payload.PrepSheetHTML, payload.PrepSheetText
		}
	}

	htmlStart := strings.Index(raw, htmlMarker)
	textStart := strings.Index(raw, plainTextMarker)

	switch {
	case htmlStart != -1 && textStart != -1:
		html = strings.TrimSpace(raw[htmlStart+len(htmlMarker) : textStart])
		text = strings.TrimSpace(raw[textStart+len(plainTextMarker):])
	case htmlStart != -1:
		html = strings.TrimSpace(raw[htmlStart+len(htmlMarker):])
		text = ErrTextPlaceholder
	case textStart != -1:
		html = ErrHTMLPlaceholder
		text = strings.TrimSpace(raw[textStart+len(plainTextMarker):])
	default:
		html = "<pre>" + raw + "</pre>"
		text = raw
	}
	return html, text
}

// normalizeQuestions fills in ids for entries missing one and coerces unknown
// types to free text so the review stage always has something to render.
func normalizeQuestions(qs []store.Question) []store.Question {
	out := make([]store.Question, 0, len(qs))
	for i, q := range qs {
		if strings.TrimSpace(q.Label) == "" {
			continue
		}
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		switch q.Type {
		case store.QuestionText, store.QuestionChoice, store.QuestionScale:
		default:
			q.Type = store.QuestionText
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// stripCodeFence removes a surrounding markdown fence, which chat models add
// around JSON despite instructions not to.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

package llm

import (
	"context"
	"strings"
)

// StubClient returns canned replies so the service runs without an API key.
// The replies mirror what the hosted model is instructed to produce.
type StubClient struct{}

func NewStubClient() *StubClient {
	return &StubClient{}
}

const stubSuggestReply = `{
  "summary": "Mock summary: mild headache and nausea for 2 days.",
  "followupQuestions": [
    {"id": "q1", "label": "When did the symptoms start?", "type": "text"},
    {"id": "q2", "label": "Rate the pain from 1-10", "type": "scale", "min": 1, "max": 10},
    {"id": "q3", "label": "Any fever or vomiting?", "type": "choice", "options": ["Yes", "No"]}
  ]
}`

const stubGenerateReply = `{
  "prep_sheet_html": "<html><body><h2>Doctor Appointment Prep Sheet</h2><p><em>This is a communication aid, not medical advice.</em></p><p>This is a mock prep sheet for preview purposes.</p></body></html>",
  "prep_sheet_text": "Doctor Appointment Prep Sheet (mock) - review symptoms and questions."
}`

func (c *StubClient) Complete(_ context.Context, system, _ string) (string, error) {
	if strings.Contains(strings.ToLower(system), "prep sheet") {
		return stubGenerateReply, nil
	}
	return stubSuggestReply, nil
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Question types the intake UI knows how to render.
const (
	QuestionText   = "text"
	QuestionChoice = "choice"
	QuestionScale  = "scale"
)

var ErrSessionNotFound = errors.New("session not found")

// PatientInfo is collected in the first wizard stage. All fields are
// required and age must be plausible for a living patient.
type PatientInfo struct {
	Name        string `json:"name" validate:"required"`
	Age         int    `json:"age" validate:"required,gte=1,lte=120"`
	Gender      string `json:"gender" validate:"required"`
	Allergies   string `json:"allergies" validate:"required"`
	Medications string `json:"medications" validate:"required"`
}

// Question is one clarifying follow-up generated from the symptom
// description. Options is set for "choice", Min/Max for "scale".
type Question struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
}

// ScaleMidpoint is the default value a scale input is rendered with.
func (q Question) ScaleMidpoint() int {
	if q.Type != QuestionScale || q.Max < q.Min {
		return 0
	}
	return q.Min + (q.Max-q.Min)/2
}

// Answer pairs a question id and label with the patient's reply.
type Answer struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

// FollowupData is the question set fixed after the suggestion stage plus
// the answers collected before final generation.
type FollowupData struct {
	Questions []Question `json:"questions"`
	Answers   []Answer   `json:"answers"`
}

// Session is one patient's end-to-end intake-to-prep-sheet record.
// Field names match the stored document exactly.
type Session struct {
	ID               uuid.UUID    `json:"id"`
	CreatedAt        time.Time    `json:"created_at"`
	PatientInfo      PatientInfo  `json:"patient_info"`
	LanguageCode     string       `json:"language_code"`
	InitialInputText string       `json:"initial_input_text"`
	AISummary        string       `json:"ai_summary"`
	FollowupData     FollowupData `json:"followup_data"`
	FinalOutputHTML  string       `json:"final_output_html,omitempty"`
	PDFURL           *string      `json:"pdf_url,omitempty"`
	ConsentToStore   bool         `json:"consentToStore"`
}

// Store defines persistence for the prep_sessions collection. Sessions are
// never deleted; updates overwrite fields on the same document.
type Store interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id uuid.UUID) (Session, error)
	// UpdateAnswers overwrites followup answers, final HTML and PDF URL on an
	// existing document. If the session is missing, a minimal document is
	// created instead of failing.
	UpdateAnswers(ctx context.Context, id uuid.UUID, answers []Answer, finalHTML string, pdfURL *string) error
	ListSessions(ctx context.Context, limit int) ([]Session, error)
}

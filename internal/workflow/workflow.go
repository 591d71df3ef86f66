// Package workflow drives the four-stage intake wizard. Transitions are
// strictly forward on success; the only backward move is an explicit Back
// from the review stage to the symptoms stage.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"prepmate/internal/prep"
	"prepmate/internal/store"
)

var validate = validator.New()

type Stage int

const (
	StageCollectingPatientInfo Stage = iota
	StageCollectingSymptoms
	StageReviewingFollowups
	StageDelivering
)

func (s Stage) String() string {
	switch s {
	case StageCollectingPatientInfo:
		return "collecting_patient_info"
	case StageCollectingSymptoms:
		return "collecting_symptoms"
	case StageReviewingFollowups:
		return "reviewing_followups"
	case StageDelivering:
		return "delivering"
	default:
		return "unknown"
	}
}

var (
	ErrConsentRequired = errors.New("consent is required to proceed")
	ErrWrongStage      = errors.New("operation not valid in current stage")
	ErrUnknownQuestion = errors.New("answer references an unknown question id")
)

// Wizard holds one patient's in-memory intake state. It is not safe for
// concurrent use; each patient gets their own instance.
type Wizard struct {
	svc *prep.Service

	stage     Stage
	sessionID uuid.UUID
	language  string
	consent   bool

	patient   store.PatientInfo
	symptoms  string
	summary   string
	questions []store.Question
	answers   []store.Answer
}

func NewWizard(svc *prep.Service, language string) *Wizard {
	return &Wizard{
		svc:       svc,
		stage:     StageCollectingPatientInfo,
		sessionID: uuid.New(),
		language:  language,
	}
}

func (w *Wizard) Stage() Stage { return w.stage }

func (w *Wizard) SessionID() uuid.UUID { return w.sessionID }

func (w *Wizard) Summary() string { return w.summary }

func (w *Wizard) Questions() []store.Question { return w.questions }

// SubmitPatientInfo validates the patient fields and the consent flag, and
// on consent creates the initial session record.
func (w *Wizard) SubmitPatientInfo(ctx context.Context, info store.PatientInfo, consent bool) error {
	if w.stage != StageCollectingPatientInfo {
		return ErrWrongStage
	}
	if err := validate.Struct(info); err != nil {
		return fmt.Errorf("invalid patient info: %w", err)
	}
	if !consent {
		return ErrConsentRequired
	}
	w.patient = info
	w.consent = consent
	w.svc.CreateInitialSession(ctx, w.sessionID, info, w.language)
	w.stage = StageCollectingSymptoms
	return nil
}

// SubmitSymptoms runs the suggest step and advances even when the reply
// could not be parsed into questions (degraded mode).
func (w *Wizard) SubmitSymptoms(ctx context.Context, text string) error {
	if w.stage != StageCollectingSymptoms {
		return ErrWrongStage
	}
	res, err := w.svc.Suggest(ctx, prep.SuggestRequest{
		SessionID:          w.sessionID,
		PatientInfo:        w.patient,
		SymptomDescription: text,
		Language:           w.language,
		Consent:            w.consent,
	})
	if err != nil {
		return err
	}
	w.symptoms = text
	w.summary = res.Summary
	w.questions = res.Questions
	w.answers = nil
	w.stage = StageReviewingFollowups
	return nil
}

// SetSummary lets the patient edit the generated summary during review.
func (w *Wizard) SetSummary(summary string) error {
	if w.stage != StageReviewingFollowups {
		return ErrWrongStage
	}
	w.summary = summary
	return nil
}

// SubmitAnswers stores the follow-up answers. The question set was fixed when
// the suggest step completed; answers may reference only those ids.
func (w *Wizard) SubmitAnswers(answers []store.Answer) error {
	if w.stage != StageReviewingFollowups {
		return ErrWrongStage
	}
	known := make(map[string]string, len(w.questions))
	for _, q := range w.questions {
		known[q.ID] = q.Label
	}
	for i, a := range answers {
		label, ok := known[a.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, a.ID)
		}
		if a.Label == "" {
			answers[i].Label = label
		}
	}
	w.answers = answers
	w.stage = StageDelivering
	return nil
}

// Deliver runs the final generation step. useLocalTemplate selects the
// built-in sheet layout for the PDF, as the download path does.
func (w *Wizard) Deliver(ctx context.Context, useLocalTemplate bool) (prep.GenerateResult, error) {
	if w.stage != StageDelivering {
		return prep.GenerateResult{}, ErrWrongStage
	}
	return w.svc.Generate(ctx, prep.GenerateRequest{
		SessionID:        w.sessionID,
		PatientInfo:      w.patient,
		Summary:          w.summary,
		Answers:          w.answers,
		Language:         w.language,
		Consent:          w.consent,
		UseLocalTemplate: useLocalTemplate,
	})
}

// Back returns from review to the symptoms stage so the description can be
// rewritten. No other backward transition exists.
func (w *Wizard) Back() error {
	if w.stage != StageReviewingFollowups {
		return ErrWrongStage
	}
	w.stage = StageCollectingSymptoms
	return nil
}

// Reset discards all in-memory state and starts a fresh session. Any stored
// record from the abandoned session is left untouched.
func (w *Wizard) Reset() {
	w.stage = StageCollectingPatientInfo
	w.sessionID = uuid.New()
	w.consent = false
	w.patient = store.PatientInfo{}
	w.symptoms = ""
	w.summary = ""
	w.questions = nil
	w.answers = nil
}

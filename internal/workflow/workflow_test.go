package workflow

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prepmate/internal/cache"
	"prepmate/internal/events"
	"prepmate/internal/llm"
	"prepmate/internal/prep"
	"prepmate/internal/store"
)

var validPatient = store.PatientInfo{
	Name: "Ada", Age: 36, Gender: "Female",
	Allergies: "Penicillin", Medications: "None",
}

const suggestReply = `{
	"summary": "Mild headache for two days.",
	"followupQuestions": [
		{"id": "q1", "label": "When did it start?", "type": "text"},
		{"id": "q2", "label": "Rate the pain from 1-10", "type": "scale", "min": 1, "max": 10}
	]
}`

const generateReply = `{"prep_sheet_html": "<h1>Sheet</h1>", "prep_sheet_text": "Sheet"}`

func newWizard(t *testing.T) (*Wizard, *llm.MockClient, *store.MockStore) {
	t.Helper()
	mockLLM := &llm.MockClient{}
	mockStore := &store.MockStore{}
	svc := prep.NewService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		prep.Options{
			LLM:   mockLLM,
			Store: mockStore,
			Cache: cache.NewNoOpCache(),
			Bus:   events.NewNoOpBus(),
		},
	)
	return NewWizard(svc, "en"), mockLLM, mockStore
}

// walk a wizard to the review stage with standard expectations set up.
func toReview(t *testing.T, w *Wizard, mockLLM *llm.MockClient, mockStore *store.MockStore) {
	t.Helper()
	mockStore.On("CreateSession", mock.Anything, mock.Anything).Return(nil)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(suggestReply, nil).Once()

	if err := w.SubmitPatientInfo(context.Background(), validPatient, true); err != nil {
		t.Fatalf("stage 1 failed: %v", err)
	}
	if err := w.SubmitSymptoms(context.Background(), "headache for two days"); err != nil {
		t.Fatalf("stage 2 failed: %v", err)
	}
}

func TestPatientInfoValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*store.PatientInfo)
		consent bool
	}{
		{"empty name", func(p *store.PatientInfo) { p.Name = "" }, true},
		{"empty gender", func(p *store.PatientInfo) { p.Gender = "" }, true},
		{"empty allergies", func(p *store.PatientInfo) { p.Allergies = "" }, true},
		{"empty medications", func(p *store.PatientInfo) { p.Medications = "" }, true},
		{"age zero", func(p *store.PatientInfo) { p.Age = 0 }, true},
		{"age negative", func(p *store.PatientInfo) { p.Age = -5 }, true},
		{"age above range", func(p *store.PatientInfo) { p.Age = 121 }, true},
		{"no consent", func(p *store.PatientInfo) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, mockStore := newWizard(t)
			info := validPatient
			tt.mutate(&info)

			err := w.SubmitPatientInfo(context.Background(), info, tt.consent)

			assert.Error(t, err)
			assert.Equal(t, StageCollectingPatientInfo, w.Stage(), "stage must not advance")
			mockStore.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		})
	}
}

func TestBoundaryAgesAccepted(t *testing.T) {
	for _, age := range []int{1, 120} {
		w, _, mockStore := newWizard(t)
		mockStore.On("CreateSession", mock.Anything, mock.Anything).Return(nil).Once()

		info := validPatient
		info.Age = age
		if err := w.SubmitPatientInfo(context.Background(), info, true); err != nil {
			t.Errorf("age %d should be accepted: %v", age, err)
		}
	}
}

func TestForwardFlow(t *testing.T) {
	w, mockLLM, mockStore := newWizard(t)
	toReview(t, w, mockLLM, mockStore)

	assert.Equal(t, StageReviewingFollowups, w.Stage())
	assert.Equal(t, "Mild headache for two days.", w.Summary())
	assert.Len(t, w.Questions(), 2)

	assert.NoError(t, w.SetSummary("Edited summary."))
	assert.NoError(t, w.SubmitAnswers([]store.Answer{
		{ID: "q1", Answer: "Monday"},
		{ID: "q2", Answer: "5"},
	}))
	assert.Equal(t, StageDelivering, w.Stage())

	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(generateReply, nil).Once()
	mockStore.On("UpdateAnswers", mock.Anything, w.SessionID(), mock.Anything, "<h1>Sheet</h1>", (*string)(nil)).Return(nil).Once()

	res, err := w.Deliver(context.Background(), false)
	assert.NoError(t, err)
	assert.Equal(t, "<h1>Sheet</h1>", res.PrepSheetHTML)
	mockStore.AssertExpectations(t)
}

func TestAnswersMustReferenceKnownQuestions(t *testing.T) {
	w, mockLLM, mockStore := newWizard(t)
	toReview(t, w, mockLLM, mockStore)

	err := w.SubmitAnswers([]store.Answer{{ID: "q99", Answer: "x"}})

	assert.ErrorIs(t, err, ErrUnknownQuestion)
	assert.Equal(t, StageReviewingFollowups, w.Stage())
}

func TestAnswerLabelsFilledFromQuestions(t *testing.T) {
	w, mockLLM, mockStore := newWizard(t)
	toReview(t, w, mockLLM, mockStore)

	answers := []store.Answer{{ID: "q1", Answer: "Monday"}}
	assert.NoError(t, w.SubmitAnswers(answers))
	assert.Equal(t, "When did it start?", answers[0].Label)
}

func TestOperationsRejectedOutOfStage(t *testing.T) {
	w, _, _ := newWizard(t)

	assert.ErrorIs(t, w.SubmitSymptoms(context.Background(), "headache"), ErrWrongStage)
	assert.ErrorIs(t, w.SubmitAnswers(nil), ErrWrongStage)
	assert.ErrorIs(t, w.SetSummary("s"), ErrWrongStage)
	_, err := w.Deliver(context.Background(), false)
	assert.ErrorIs(t, err, ErrWrongStage)
	assert.ErrorIs(t, w.Back(), ErrWrongStage)
}

func TestBackFromReview(t *testing.T) {
	w, mockLLM, mockStore := newWizard(t)
	toReview(t, w, mockLLM, mockStore)

	assert.NoError(t, w.Back())
	assert.Equal(t, StageCollectingSymptoms, w.Stage())

	// Re-submitting symptoms replaces the question set.
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(suggestReply, nil).Once()
	assert.NoError(t, w.SubmitSymptoms(context.Background(), "different symptoms"))
	assert.Equal(t, StageReviewingFollowups, w.Stage())
}

func TestResetDiscardsState(t *testing.T) {
	w, mockLLM, mockStore := newWizard(t)
	toReview(t, w, mockLLM, mockStore)
	oldID := w.SessionID()

	w.Reset()

	assert.Equal(t, StageCollectingPatientInfo, w.Stage())
	assert.NotEqual(t, oldID, w.SessionID(), "a fresh session id is assigned")
	assert.Empty(t, w.Summary())
	assert.Empty(t, w.Questions())
	// The stored record is left untouched: Reset never talks to the store.
	mockStore.AssertNotCalled(t, "UpdateAnswers", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDegradedSuggestStillAdvances(t *testing.T) {
	w, mockLLM, mockStore := newWizard(t)
	mockStore.On("CreateSession", mock.Anything, mock.Anything).Return(nil)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("unparseable prose", nil).Once()

	assert.NoError(t, w.SubmitPatientInfo(context.Background(), validPatient, true))
	assert.NoError(t, w.SubmitSymptoms(context.Background(), "headache"))

	assert.Equal(t, StageReviewingFollowups, w.Stage())
	assert.Equal(t, "unparseable prose", w.Summary())
	assert.Empty(t, w.Questions())
}

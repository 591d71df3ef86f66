package pdf

import (
	"strings"
	"testing"

	"prepmate/internal/store"
)

func TestRenderLocalSheet(t *testing.T) {
	html, err := RenderLocalSheet(SheetData{
		PatientInfo: store.PatientInfo{
			Name: "Ada", Age: 36, Gender: "Female",
			Allergies: "Penicillin", Medications: "None",
		},
		Summary: "Mild headache for two days.",
		Answers: []store.Answer{
			{ID: "q1", Label: "When did it start?", Answer: "Monday"},
		},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, want := range []string{
		"Doctor Appointment Prep Sheet",
		"not medical advice",
		"Ada",
		"Mild headache for two days.",
		"When did it start?",
		"Monday",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("sheet missing %q", want)
		}
	}
}

func TestRenderLocalSheetEscapesHTML(t *testing.T) {
	html, err := RenderLocalSheet(SheetData{
		PatientInfo: store.PatientInfo{Name: "<script>alert(1)</script>"},
		Summary:     "ok",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("patient-supplied HTML was not escaped")
	}
}

func TestRenderLocalSheetNoAnswers(t *testing.T) {
	html, err := RenderLocalSheet(SheetData{Summary: "s"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(html, "Doctor Questionnaire") {
		t.Error("questionnaire section rendered without answers")
	}
}

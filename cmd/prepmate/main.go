package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"prepmate/internal/app"
	"prepmate/internal/httputil"
	"prepmate/internal/prep"
	"prepmate/internal/store"
)

type suggestRequest struct {
	PatientInfo        store.PatientInfo `json:"patient_info"`
	SymptomDescription string            `json:"symptom_description" validate:"required"`
	Language           string            `json:"language"`
	Consent            bool              `json:"consent"`
	SessionID          string            `json:"session_id" validate:"omitempty,uuid"`
}

type suggestResponse struct {
	SessionID string           `json:"session_id"`
	Summary   string           `json:"summary"`
	Questions []store.Question `json:"questions"`
}

type generateRequest struct {
	SessionID   string            `json:"session_id" validate:"required,uuid"`
	PatientInfo store.PatientInfo `json:"patient_info"`
	Summary     string            `json:"summary" validate:"required"`
	Answers     []store.Answer    `json:"answers"`
	Language    string            `json:"language"`
	Consent     bool              `json:"consent"`
}

type generateResponse struct {
	SessionID     string  `json:"session_id"`
	PrepSheetHTML string  `json:"prep_sheet_html"`
	PrepSheetText string  `json:"prep_sheet_text"`
	PDFURL        *string `json:"pdf_url,omitempty"`
	PDFBase64     string  `json:"pdf_base64,omitempty"`
}

func main() {
	deps, err := app.Build("prepmate-api")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/suggest", suggestHandler(deps))
	r.Post("/generate", generateHandler(deps))
	r.Get("/api/sessions", listSessionsHandler(deps))
	r.Get("/api/sessions/{id}", getSessionHandler(deps))
	r.Get("/health", httputil.HealthHandler("prepmate-api"))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("prepmate api listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func suggestHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req suggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		var sessionID uuid.UUID
		if req.SessionID != "" {
			sessionID, _ = uuid.Parse(req.SessionID)
		}

		res, err := deps.Prep.Suggest(r.Context(), prep.SuggestRequest{
			SessionID:          sessionID,
			PatientInfo:        req.PatientInfo,
			SymptomDescription: req.SymptomDescription,
			Language:           req.Language,
			Consent:            req.Consent,
		})
		if err != nil {
			if errors.Is(err, prep.ErrEmptySymptoms) {
				httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "error generating suggestions", err, http.StatusInternalServerError)
			return
		}

		questions := res.Questions
		if questions == nil {
			questions = []store.Question{}
		}
		httputil.WriteJSON(w, http.StatusOK, suggestResponse{
			SessionID: res.SessionID.String(),
			Summary:   res.Summary,
			Questions: questions,
		})
	}
}

func generateHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
			return
		}

		res, err := deps.Prep.Generate(r.Context(), prep.GenerateRequest{
			SessionID:   sessionID,
			PatientInfo: req.PatientInfo,
			Summary:     req.Summary,
			Answers:     req.Answers,
			Language:    req.Language,
			Consent:     req.Consent,
		})
		if err != nil {
			if errors.Is(err, prep.ErrEmptySummary) {
				httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "error generating prep sheet", err, http.StatusInternalServerError)
			return
		}

		resp := generateResponse{
			SessionID:     res.SessionID.String(),
			PrepSheetHTML: res.PrepSheetHTML,
			PrepSheetText: res.PrepSheetText,
			PDFURL:        res.PDFURL,
		}
		if len(res.PDFBytes) > 0 {
			resp.PDFBase64 = base64.StdEncoding.EncodeToString(res.PDFBytes)
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func listSessionsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		sessions, err := deps.Store.ListSessions(r.Context(), limit)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list sessions", err, http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []store.Session{}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"count":    len(sessions),
			"sessions": sessions,
		})
	}
}

func getSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
			return
		}
		sess, err := deps.Store.GetSession(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				httputil.Fail(deps.Log, w, "session not found", err, http.StatusNotFound)
				return
			}
			httputil.Fail(deps.Log, w, "failed to load session", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, sess)
	}
}

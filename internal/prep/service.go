// Package prep orchestrates the two model-backed steps of the intake flow:
// suggesting a summary with follow-up questions, and generating the final
// prep sheet with optional PDF delivery.
package prep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"prepmate/internal/cache"
	"prepmate/internal/events"
	"prepmate/internal/llm"
	"prepmate/internal/objstore"
	"prepmate/internal/pdf"
	"prepmate/internal/prompt"
	"prepmate/internal/reply"
	"prepmate/internal/store"
)

var (
	ErrEmptySymptoms = errors.New("symptom_description is required")
	ErrEmptySummary  = errors.New("summary is required")
)

// Options carries the collaborators a Service needs. Renderer and Uploader
// may be nil; the corresponding delivery options then become unavailable
// without affecting the rest of the flow.
type Options struct {
	LLM      llm.Client
	Store    store.Store
	Cache    cache.Cache
	Bus      events.Bus
	Renderer pdf.Renderer
	Uploader objstore.Uploader

	CacheTTL        time.Duration
	DefaultLanguage string
}

// Service sequences the calls to the LLM, parser, store, PDF renderer and
// object storage. All collaborators are injected; there are no package-level
// client handles.
type Service struct {
	log  *slog.Logger
	opts Options
}

func NewService(log *slog.Logger, opts Options) *Service {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNoOpCache()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewNoOpBus()
	}
	return &Service{log: log, opts: opts}
}

type SuggestRequest struct {
	SessionID          uuid.UUID // zero means a new session
	PatientInfo        store.PatientInfo
	SymptomDescription string
	Language           string
	Consent            bool
}

type SuggestResult struct {
	SessionID uuid.UUID
	Summary   string
	Questions []store.Question
	Cached    bool
}

// Suggest sends the symptom description to the model and parses the reply
// into a summary and follow-up questions. A parse failure is a degraded mode
// (raw reply as summary, no questions), not an error; only an LLM call
// failure fails the step. With consent, the session document is created;
// persistence failures are logged and swallowed so the patient flow is
// unaffected.
func (s *Service) Suggest(ctx context.Context, req SuggestRequest) (SuggestResult, error) {
	if req.SymptomDescription == "" {
		return SuggestResult{}, ErrEmptySymptoms
	}
	if req.Language == "" {
		req.Language = s.opts.DefaultLanguage
	}
	sessionID := req.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	key := cache.GenerateCacheKey(req.PatientInfo, req.SymptomDescription, req.Language)
	if cached, err := s.opts.Cache.GetSuggestion(ctx, key); err == nil && cached != nil {
		s.log.Info("suggestion cache hit", "session_id", sessionID)
		s.persistSession(ctx, sessionID, req, cached.Summary, cached.Questions)
		return SuggestResult{
			SessionID: sessionID,
			Summary:   cached.Summary,
			Questions: cached.Questions,
			Cached:    true,
		}, nil
	} else if err != nil {
		s.log.Warn("suggestion cache lookup failed", "err", err)
	}

	userPrompt, err := prompt.RenderSuggest(req.PatientInfo, req.SymptomDescription, req.Language)
	if err != nil {
		return SuggestResult{}, err
	}
	raw, err := s.opts.LLM.Complete(ctx, prompt.SuggestSystem, userPrompt)
	if err != nil {
		return SuggestResult{}, fmt.Errorf("failed to generate suggestions: %w", err)
	}

	summary, questions := reply.ParseSuggestion(raw)
	if len(questions) == 0 {
		s.log.Warn("no follow-up questions parsed from reply", "session_id", sessionID)
	}

	s.persistSession(ctx, sessionID, req, summary, questions)

	if err := s.opts.Cache.SetSuggestion(ctx, key, &cache.Suggestion{
		Summary:   summary,
		Questions: questions,
	}, s.opts.CacheTTL); err != nil {
		s.log.Warn("failed to cache suggestion", "err", err)
	}

	return SuggestResult{SessionID: sessionID, Summary: summary, Questions: questions}, nil
}

// persistSession creates the session document and publishes the lifecycle
// event. Both are best-effort; failures never reach the patient.
func (s *Service) persistSession(ctx context.Context, sessionID uuid.UUID, req SuggestRequest, summary string, questions []store.Question) {
	if !req.Consent {
		return
	}
	sess := store.Session{
		ID:               sessionID,
		CreatedAt:        time.Now().UTC(),
		PatientInfo:      req.PatientInfo,
		LanguageCode:     req.Language,
		InitialInputText: req.SymptomDescription,
		AISummary:        summary,
		FollowupData:     store.FollowupData{Questions: questions, Answers: []store.Answer{}},
		ConsentToStore:   true,
	}
	if err := s.opts.Store.CreateSession(ctx, sess); err != nil {
		s.log.Warn("failed to create session record", "session_id", sessionID, "err", err)
		return
	}
	s.publish(ctx, events.KindSessionCreated, sessionID)
}

// CreateInitialSession stores the skeleton document the wizard creates right
// after consent, before any symptoms exist. The suggest step later overwrites
// it with the full document. Best-effort, like all persistence here.
func (s *Service) CreateInitialSession(ctx context.Context, sessionID uuid.UUID, info store.PatientInfo, language string) {
	if language == "" {
		language = s.opts.DefaultLanguage
	}
	sess := store.Session{
		ID:             sessionID,
		CreatedAt:      time.Now().UTC(),
		PatientInfo:    info,
		LanguageCode:   language,
		FollowupData:   store.FollowupData{Questions: []store.Question{}, Answers: []store.Answer{}},
		ConsentToStore: true,
	}
	if err := s.opts.Store.CreateSession(ctx, sess); err != nil {
		s.log.Warn("failed to create initial session record", "session_id", sessionID, "err", err)
	}
}

type GenerateRequest struct {
	SessionID   uuid.UUID
	PatientInfo store.PatientInfo
	Summary     string
	Answers     []store.Answer
	Language    string
	Consent     bool

	// UseLocalTemplate renders the built-in prep-sheet template for the PDF
	// instead of the model's HTML (the wizard's download path).
	UseLocalTemplate bool
}

type GenerateResult struct {
	SessionID     uuid.UUID
	PrepSheetHTML string
	PrepSheetText string
	PDFURL        *string
	PDFBytes      []byte
}

// Generate asks the model for the final prep sheet, splits it into HTML and
// plain text, and renders/uploads a PDF when those collaborators are
// configured. PDF, upload and persistence failures are logged and skipped;
// the sheet itself is always returned.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if req.Summary == "" {
		return GenerateResult{}, ErrEmptySummary
	}
	if req.Language == "" {
		req.Language = s.opts.DefaultLanguage
	}

	userPrompt, err := prompt.RenderGenerate(req.PatientInfo, req.Summary, req.Answers, req.Language)
	if err != nil {
		return GenerateResult{}, err
	}
	raw, err := s.opts.LLM.Complete(ctx, prompt.GenerateSystem, userPrompt)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to generate prep sheet: %w", err)
	}
	html, text := reply.ParsePrepSheet(raw)

	result := GenerateResult{
		SessionID:     req.SessionID,
		PrepSheetHTML: html,
		PrepSheetText: text,
	}

	pdfSource := html
	if req.UseLocalTemplate {
		if local, err := pdf.RenderLocalSheet(pdf.SheetData{
			PatientInfo: req.PatientInfo,
			Summary:     req.Summary,
			Answers:     req.Answers,
		}); err == nil {
			pdfSource = local
		} else {
			s.log.Warn("local sheet template failed, falling back to model HTML", "err", err)
		}
	}

	if s.opts.Renderer != nil {
		pdfBytes, err := s.opts.Renderer.Render(ctx, pdfSource)
		if err != nil {
			s.log.Warn("pdf generation failed", "session_id", req.SessionID, "err", err)
		} else {
			result.PDFBytes = pdfBytes
			if s.opts.Uploader != nil {
				name := fmt.Sprintf("prep-sheets/%s.pdf", req.SessionID)
				url, err := s.opts.Uploader.Upload(ctx, name, pdfBytes, "application/pdf")
				if err != nil {
					s.log.Warn("pdf upload failed", "session_id", req.SessionID, "err", err)
				} else {
					result.PDFURL = &url
				}
			}
		}
	}

	if req.Consent {
		if err := s.opts.Store.UpdateAnswers(ctx, req.SessionID, req.Answers, html, result.PDFURL); err != nil {
			s.log.Warn("failed to update session record", "session_id", req.SessionID, "err", err)
		} else {
			s.publish(ctx, events.KindSessionCompleted, req.SessionID)
		}
	}

	return result, nil
}

func (s *Service) publish(ctx context.Context, kind events.Kind, sessionID uuid.UUID) {
	ev := events.Event{
		ID:         uuid.New(),
		Kind:       kind,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
	}
	if err := events.PublishWithRetry(ctx, s.opts.Bus, ev, 3, 200*time.Millisecond); err != nil {
		s.log.Warn("failed to publish event", "kind", kind, "session_id", sessionID, "err", err)
	}
}

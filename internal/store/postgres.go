package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps each session as a single JSONB document, mirroring the
// document-store layout the rest of the system expects.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple services.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 728553901 // arbitrary number for this application's migration lock

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS prep_sessions (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ DEFAULT now(),
			language TEXT,
			doc JSONB NOT NULL
		);`)
	if err != nil {
		return fmt.Errorf("failed to create prep_sessions: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess Session) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session document: %w", err)
	}
	// Upsert: re-submitting the same session id overwrites the document
	// rather than creating a duplicate record.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prep_sessions(id, created_at, language, doc)
		VALUES($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET language=excluded.language, doc=excluded.doc`,
		sess.ID, sess.CreatedAt, sess.LanguageCode, doc)
	return err
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	var raw []byte
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM prep_sessions WHERE id=$1`, id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return sess, nil
}

func (s *PostgresStore) UpdateAnswers(ctx context.Context, id uuid.UUID, answers []Answer, finalHTML string, pdfURL *string) error {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	htmlJSON, _ := json.Marshal(finalHTML)
	urlJSON, _ := json.Marshal(pdfURL)

	res, err := s.db.ExecContext(ctx, `
		UPDATE prep_sessions
		SET doc = jsonb_set(
			jsonb_set(
				jsonb_set(doc, '{followup_data,answers}', $2::jsonb),
				'{final_output_html}', $3::jsonb),
			'{pdf_url}', $4::jsonb)
		WHERE id=$1`,
		id, answersJSON, htmlJSON, urlJSON)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Session was never created (e.g. consent given only at the final stage);
	// store a minimal document rather than dropping the data.
	minimal := minimalSession(id, answers, finalHTML, pdfURL)
	doc, err := json.Marshal(minimal)
	if err != nil {
		return fmt.Errorf("failed to marshal minimal session document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prep_sessions(id, created_at, language, doc)
		VALUES($1,$2,'',$3)
		ON CONFLICT (id) DO UPDATE SET doc=excluded.doc`,
		id, minimal.CreatedAt, doc)
	return err
}

// minimalSession is the document stored when answers arrive for an id that
// was never created. Consent is implied: the update itself only happens with
// consent, so the late record must be kept.
func minimalSession(id uuid.UUID, answers []Answer, finalHTML string, pdfURL *string) Session {
	return Session{
		ID:              id,
		CreatedAt:       time.Now().UTC(),
		FollowupData:    FollowupData{Answers: answers},
		FinalOutputHTML: finalHTML,
		PDFURL:          pdfURL,
		ConsentToStore:  true,
	}
}

func (s *PostgresStore) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM prep_sessions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var sess Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, fmt.Errorf("failed to decode session document: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

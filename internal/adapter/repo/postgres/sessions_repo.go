package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// SessionRepo persists interview session documents. Partial updates merge
// fields into the JSONB document ($set) or append to its arrays ($push);
// a zero matched count maps to domain.ErrNotFound.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create inserts a new session document and returns its id.
func (r *SessionRepo) Create(ctx domain.Context, s domain.InterviewSession) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	s.ID = id
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	doc, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	q := `INSERT INTO interview_sessions (id, doc, created_at) VALUES ($1,$2,$3)`
	if _, err := r.Pool.Exec(ctx, q, id, doc, s.CreatedAt); err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return id, nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()
	q := `SELECT doc FROM interview_sessions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	var s domain.InterviewSession
	if err := json.Unmarshal(doc, &s); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	return s, nil
}

// SetStatus merges a status change into the document. The timestamp lands
// in started_at or completed_at depending on the target status.
func (r *SessionRepo) SetStatus(ctx domain.Context, id string, status domain.SessionStatus, at time.Time) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.SetStatus")
	defer span.End()
	fields := map[string]any{"status": status}
	switch status {
	case domain.SessionInProgress:
		fields["started_at"] = at.UTC()
	case domain.SessionCompleted:
		fields["completed_at"] = at.UTC()
	}
	return r.setFields(ctx, id, "session.set_status", fields)
}

// AppendResponse pushes a response record onto the document's responses array.
func (r *SessionRepo) AppendResponse(ctx domain.Context, id string, rec domain.ResponseRecord) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.AppendResponse")
	defer span.End()
	elem, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("op=session.append_response: %w", err)
	}
	q := `UPDATE interview_sessions
	      SET doc = jsonb_set(doc, '{responses}', COALESCE(doc->'responses', '[]'::jsonb) || $2::jsonb)
	      WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, elem)
	if err != nil {
		return fmt.Errorf("op=session.append_response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.append_response: %w", domain.ErrNotFound)
	}
	return nil
}

// SaveCompletion stores the final transcript, marks the session completed,
// and stamps completed_at in a single update.
func (r *SessionRepo) SaveCompletion(ctx domain.Context, id string, transcript []domain.TurnEvent, completedAt time.Time) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.SaveCompletion")
	defer span.End()
	if transcript == nil {
		transcript = []domain.TurnEvent{}
	}
	return r.setFields(ctx, id, "session.save_completion", map[string]any{
		"status":       domain.SessionCompleted,
		"conversation": transcript,
		"completed_at": completedAt.UTC(),
	})
}

func (r *SessionRepo) setFields(ctx domain.Context, id, op string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("op=%s: %w", op, err)
	}
	q := `UPDATE interview_sessions SET doc = doc || $2::jsonb WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, patch)
	if err != nil {
		return fmt.Errorf("op=%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

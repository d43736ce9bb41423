// Package domain holds the core entities and ports of the interview
// practice service. It has no dependencies on adapters.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrSchemaInvalid   = errors.New("schema invalid")
	ErrInternal        = errors.New("internal error")
)

// DifficultyLevel grades a question set.
type DifficultyLevel string

const (
	DifficultyEntry  DifficultyLevel = "entry"
	DifficultyMid    DifficultyLevel = "mid"
	DifficultySenior DifficultyLevel = "senior"
)

// Valid reports whether d is a known difficulty level.
func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyEntry, DifficultyMid, DifficultySenior:
		return true
	}
	return false
}

// QuestionType classifies a generated interview question.
type QuestionType string

const (
	QuestionTechnical   QuestionType = "technical"
	QuestionBehavioral  QuestionType = "behavioral"
	QuestionExperience  QuestionType = "experience"
	QuestionSituational QuestionType = "situational"
)

// SessionStatus is the lifecycle state of an interview session.
// Transitions are forward-only: pending -> ready -> in_progress -> completed.
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionReady      SessionStatus = "ready"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// EventKind tags an entry in a session transcript.
type EventKind string

const (
	EventAIQuestion      EventKind = "ai_question"
	EventUserResponse    EventKind = "user_response"
	EventAIResponse      EventKind = "ai_response"
	EventAIRepeat        EventKind = "ai_repeat"
	EventAIClarification EventKind = "ai_clarification"
	EventAITransition    EventKind = "ai_transition"
	EventAICompletion    EventKind = "ai_completion"
)

// Resume is the stored form of an ingested résumé.
type Resume struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	Content    string         `json:"content"`
	ParsedData map[string]any `json:"parsed_data"`
	Skills     []string       `json:"skills"`
	Experience []string       `json:"experience"`
	Education  []string       `json:"education"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Question is one entry of a session's ordered question set. The set is
// immutable once the session is created.
type Question struct {
	ID                   string          `json:"id"`
	Text                 string          `json:"question_text"`
	Type                 QuestionType    `json:"question_type"`
	Difficulty           DifficultyLevel `json:"difficulty"`
	ExpectedAnswerPoints []string        `json:"expected_answer_points"`
	FollowUpQuestions    []string        `json:"follow_up_questions"`
}

// TurnEvent is one entry of the append-only session transcript. Events are
// never reordered or mutated after insertion.
type TurnEvent struct {
	Kind       EventKind `json:"type"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	QuestionID string    `json:"question_id,omitempty"`
}

// ResponseAnalysis is the analyzer's judgment of one finished answer.
type ResponseAnalysis struct {
	CompletenessScore   int      `json:"completeness_score"`
	AccuracyScore       int      `json:"accuracy_score"`
	ClarityScore        int      `json:"clarity_score"`
	RelevanceScore      int      `json:"relevance_score"`
	DepthScore          int      `json:"depth_score"`
	MissingPoints       []string `json:"missing_points"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	OverallFeedback     string   `json:"overall_feedback"`
	FollowUpNeeded      bool     `json:"follow_up_needed"`
	SuggestedFollowUp   string   `json:"suggested_follow_up"`
}

// ResponseRecord is written exactly once per finished question.
type ResponseRecord struct {
	QuestionID          string           `json:"question_id"`
	QuestionText        string           `json:"question_text"`
	UserResponse        string           `json:"user_response"`
	ResponseTime        int              `json:"response_time"`
	Analysis            ResponseAnalysis `json:"analysis"`
	ConversationQuality string           `json:"conversation_quality"`
	Timestamp           time.Time        `json:"timestamp"`
}

// InterviewSession is the persisted document for one candidate's run
// through a generated question set.
// Invariants: the current question index never exceeds len(Questions);
// Responses holds at most one record per question; Status only moves
// forward.
type InterviewSession struct {
	ID          string           `json:"id"`
	ResumeID    string           `json:"resume_id"`
	Difficulty  DifficultyLevel  `json:"difficulty"`
	Questions   []Question       `json:"questions"`
	Responses   []ResponseRecord `json:"responses"`
	Transcript  []TurnEvent      `json:"conversation,omitempty"`
	Status      SessionStatus    `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// InterviewConfig tunes question generation for one session.
type InterviewConfig struct {
	Difficulty      DifficultyLevel `json:"difficulty"`
	DurationMinutes int             `json:"duration_minutes"`
	QuestionTypes   []QuestionType  `json:"question_types"`
	NumQuestions    int             `json:"num_questions"`
}

// Repositories (ports)

// ResumeRepository stores and loads résumé documents.
type ResumeRepository interface {
	Create(ctx Context, r Resume) (string, error)
	Get(ctx Context, id string) (Resume, error)
}

// SessionRepository stores interview sessions with document-store
// semantics: Get is a find-by-id, Create an insert, the remaining methods
// are partial updates ($set / $push). Implementations return ErrNotFound
// when the id matches no document.
type SessionRepository interface {
	Create(ctx Context, s InterviewSession) (string, error)
	Get(ctx Context, id string) (InterviewSession, error)
	SetStatus(ctx Context, id string, status SessionStatus, at time.Time) error
	AppendResponse(ctx Context, id string, rec ResponseRecord) error
	SaveCompletion(ctx Context, id string, transcript []TurnEvent, completedAt time.Time) error
}

// TextGenerator (port)
// Generate is the opaque text-generation capability: prompt in, text out.
// Calls may fail or return malformed content; callers fall back rather
// than retry.
type TextGenerator interface {
	Generate(ctx Context, prompt string) (string, error)
}

// TextExtractor (port)
// ExtractPath extracts plain text from a file at path with the provided
// original filename. Implementations may call external services.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// Context aliases context.Context so domain signatures read uniformly.
type Context = context.Context

// Package usecase contains the application services: résumé ingestion,
// question generation, the conversational turn controller, and response
// analysis. Services depend only on domain ports.
package usecase

import (
	"fmt"
	"time"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// InterviewService covers the non-conversational session operations:
// reads, manual start/complete, and direct per-question responses.
type InterviewService struct {
	Sessions domain.SessionRepository
	Analyzer *AnalyzerService
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(sessions domain.SessionRepository, analyzer *AnalyzerService) *InterviewService {
	return &InterviewService{Sessions: sessions, Analyzer: analyzer}
}

// Get loads a session by id.
func (s *InterviewService) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	sess, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.Get: %w", err)
	}
	return sess, nil
}

// QuestionPage is one question positioned within its session's set.
type QuestionPage struct {
	Question  domain.Question
	Number    int
	Total     int
	IsLast    bool
	Exhausted bool
}

// QuestionAt returns the question at index. An index at or past the end
// reports Exhausted instead of an error so callers can signal completion.
func (s *InterviewService) QuestionAt(ctx domain.Context, id string, index int) (QuestionPage, error) {
	if index < 0 {
		return QuestionPage{}, fmt.Errorf("negative question index: %w", domain.ErrInvalidArgument)
	}
	sess, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("op=interview.QuestionAt: %w", err)
	}
	total := len(sess.Questions)
	if index >= total {
		return QuestionPage{Total: total, Exhausted: true}, nil
	}
	return QuestionPage{
		Question: sess.Questions[index],
		Number:   index + 1,
		Total:    total,
		IsLast:   index == total-1,
	}, nil
}

// Start marks a session in progress. Completed sessions stay completed.
func (s *InterviewService) Start(ctx domain.Context, id string) error {
	sess, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("op=interview.Start: %w", err)
	}
	if sess.Status == domain.SessionCompleted {
		return fmt.Errorf("session %s is already completed: %w", id, domain.ErrConflict)
	}
	if err := s.Sessions.SetStatus(ctx, id, domain.SessionInProgress, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=interview.Start: %w", err)
	}
	return nil
}

// SubmitResponse analyzes a direct answer to one question and appends the
// resulting record to the session.
func (s *InterviewService) SubmitResponse(ctx domain.Context, id, questionID, userResponse string, responseTime int) (domain.ResponseRecord, error) {
	sess, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return domain.ResponseRecord{}, fmt.Errorf("op=interview.SubmitResponse: %w", err)
	}
	var question *domain.Question
	for i := range sess.Questions {
		if sess.Questions[i].ID == questionID {
			question = &sess.Questions[i]
			break
		}
	}
	if question == nil {
		return domain.ResponseRecord{}, fmt.Errorf("question %q: %w", questionID, domain.ErrNotFound)
	}

	rec := domain.ResponseRecord{
		QuestionID:          questionID,
		QuestionText:        question.Text,
		UserResponse:        userResponse,
		ResponseTime:        responseTime,
		Analysis:            s.Analyzer.Analyze(ctx, *question, userResponse),
		ConversationQuality: domain.QualityFair,
		Timestamp:           time.Now().UTC(),
	}
	if err := s.Sessions.AppendResponse(ctx, id, rec); err != nil {
		return domain.ResponseRecord{}, fmt.Errorf("op=interview.SubmitResponse: %w", err)
	}
	return rec, nil
}

// Complete marks a session completed.
func (s *InterviewService) Complete(ctx domain.Context, id string) error {
	if err := s.Sessions.SetStatus(ctx, id, domain.SessionCompleted, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=interview.Complete: %w", err)
	}
	return nil
}

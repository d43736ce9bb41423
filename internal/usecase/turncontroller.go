package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

const (
	transitionMessage = "Great! Now let's move on to the next question."
	completionMessage = "Excellent! You've completed all the questions in your interview. " +
		"You provided thoughtful responses and demonstrated your skills well. " +
		"Thank you for your time, and you'll receive detailed feedback shortly."
)

// activeTurnState is the in-memory working state of one conversational
// session. The transcript here is authoritative until teardown persists it.
type activeTurnState struct {
	mu         sync.Mutex
	questions  []domain.Question
	index      int
	followUps  int
	transcript []domain.TurnEvent
}

// StartResult is what the client needs to begin a conversational run.
type StartResult struct {
	Message         string
	CurrentQuestion domain.Question
	QuestionIndex   int
	TotalQuestions  int
}

// TurnResult describes the controller's reaction to one utterance.
// Exactly one of the shapes holds: same question continues, a follow-up
// is pending, the next question was issued, or the interview completed.
type TurnResult struct {
	Conversation         []domain.TurnEvent
	AIResponse           string
	ContinueSameQuestion bool
	HasFollowUp          bool
	FollowUpQuestion     string
	NextQuestion         *domain.Question
	QuestionIndex        int
	TransitionMessage    string
	InterviewCompleted   bool
	CompletionMessage    string
}

// TurnController drives conversational interviews: it owns the per-session
// question cursor, follow-up counter, and transcript, and decides after
// every utterance whether to stay, follow up, or advance.
type TurnController struct {
	Sessions domain.SessionRepository
	Conv     *ConversationService
	Analyzer *AnalyzerService

	// FollowUpLimit forces advancement once this many controller-initiated
	// follow-ups have been asked on one question.
	FollowUpLimit int

	mu     sync.Mutex
	active map[string]*activeTurnState
}

// NewTurnController constructs a TurnController.
func NewTurnController(sessions domain.SessionRepository, conv *ConversationService, analyzer *AnalyzerService, followUpLimit int) *TurnController {
	if followUpLimit <= 0 {
		followUpLimit = 2
	}
	return &TurnController{
		Sessions:      sessions,
		Conv:          conv,
		Analyzer:      analyzer,
		FollowUpLimit: followUpLimit,
		active:        make(map[string]*activeTurnState),
	}
}

// Start activates a conversational run for the session: the cursor is
// placed on the first question and the transcript opens with it. Starting
// an already-active session resets its in-memory state.
func (c *TurnController) Start(ctx domain.Context, id string) (StartResult, error) {
	sess, err := c.Sessions.Get(ctx, id)
	if err != nil {
		return StartResult{}, fmt.Errorf("op=turns.Start: %w", err)
	}
	// Status moves forward only; a completed session cannot come back.
	if sess.Status == domain.SessionCompleted {
		return StartResult{}, fmt.Errorf("session %s is already completed: %w", id, domain.ErrConflict)
	}
	if len(sess.Questions) == 0 {
		return StartResult{}, fmt.Errorf("session %s has no questions: %w", id, domain.ErrConflict)
	}

	first := sess.Questions[0]
	state := &activeTurnState{
		questions: sess.Questions,
		transcript: []domain.TurnEvent{{
			Kind:       domain.EventAIQuestion,
			Text:       first.Text,
			Timestamp:  time.Now().UTC(),
			QuestionID: first.ID,
		}},
	}

	c.mu.Lock()
	_, existed := c.active[id]
	c.active[id] = state
	c.mu.Unlock()
	if !existed {
		observability.SessionsActive.Inc()
	}

	if err := c.Sessions.SetStatus(ctx, id, domain.SessionInProgress, time.Now().UTC()); err != nil {
		slog.Warn("failed to mark session in progress", slog.String("session_id", id), slog.Any("error", err))
	}

	return StartResult{
		Message:         "Voice interview started",
		CurrentQuestion: first,
		QuestionIndex:   0,
		TotalQuestions:  len(sess.Questions),
	}, nil
}

// SubmitTurn processes one user utterance against the current question and
// returns the controller's reaction.
func (c *TurnController) SubmitTurn(ctx domain.Context, id, utterance string, responseTime int) (TurnResult, error) {
	if strings.TrimSpace(utterance) == "" {
		return TurnResult{}, fmt.Errorf("empty utterance: %w", domain.ErrInvalidArgument)
	}

	c.mu.Lock()
	state, ok := c.active[id]
	c.mu.Unlock()
	if !ok {
		return TurnResult{}, fmt.Errorf("session %s is not active: %w", id, domain.ErrConflict)
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.index >= len(state.questions) {
		return TurnResult{}, fmt.Errorf("no more questions in session %s: %w", id, domain.ErrConflict)
	}
	question := state.questions[state.index]
	now := time.Now().UTC()

	state.transcript = append(state.transcript, domain.TurnEvent{
		Kind:       domain.EventUserResponse,
		Text:       utterance,
		Timestamp:  now,
		QuestionID: question.ID,
	})

	decision := c.Conv.ProcessUserInput(ctx, utterance, question, state.transcript)
	observability.TurnsProcessedTotal.WithLabelValues(decision.Action.String()).Inc()

	res := TurnResult{AIResponse: decision.Reply}

	if !decision.Action.IsMeta() {
		state.transcript = append(state.transcript, domain.TurnEvent{
			Kind:       domain.EventAIResponse,
			Text:       decision.Reply,
			Timestamp:  time.Now().UTC(),
			QuestionID: question.ID,
		})
	}

	switch {
	case decision.Action.IsMeta():
		kind := domain.EventAIClarification
		if decision.Action == domain.ActionRepeatQuestion {
			kind = domain.EventAIRepeat
		}
		state.transcript = append(state.transcript, domain.TurnEvent{
			Kind:       kind,
			Text:       decision.Reply,
			Timestamp:  time.Now().UTC(),
			QuestionID: question.ID,
		})
		res.ContinueSameQuestion = true
		res.HasFollowUp = true
		res.FollowUpQuestion = decision.Reply

	case isFollowUpAction(decision.Action) && decision.ContinueListening:
		state.followUps++
		res.HasFollowUp = true
		res.FollowUpQuestion = decision.Reply
		if state.followUps >= c.FollowUpLimit {
			c.advance(ctx, id, state, &res)
		}

	case decision.Action == domain.ActionSkipQuestion:
		c.advance(ctx, id, state, &res)

	case decision.Action == domain.ActionContinue || decision.Action == domain.ActionMoveNext || !decision.ContinueListening:
		c.saveResponseRecord(ctx, id, question, utterance, responseTime, decision)
		c.advance(ctx, id, state, &res)

	default:
		res.HasFollowUp = true
		res.FollowUpQuestion = decision.Reply
	}

	res.Conversation = append([]domain.TurnEvent(nil), state.transcript...)
	return res, nil
}

func isFollowUpAction(a domain.TurnAction) bool {
	switch a {
	case domain.ActionEncourageElaboration, domain.ActionEncourageMore, domain.ActionFollowUp:
		return true
	}
	return false
}

// advance moves the cursor forward. Caller holds state.mu.
func (c *TurnController) advance(ctx domain.Context, id string, state *activeTurnState, res *TurnResult) {
	state.index++
	state.followUps = 0

	if state.index < len(state.questions) {
		next := state.questions[state.index]
		now := time.Now().UTC()
		state.transcript = append(state.transcript,
			domain.TurnEvent{Kind: domain.EventAITransition, Text: transitionMessage, Timestamp: now},
			domain.TurnEvent{Kind: domain.EventAIQuestion, Text: next.Text, Timestamp: now, QuestionID: next.ID},
		)
		res.NextQuestion = &next
		res.QuestionIndex = state.index
		res.HasFollowUp = false
		res.TransitionMessage = transitionMessage
		return
	}

	state.transcript = append(state.transcript, domain.TurnEvent{
		Kind:      domain.EventAICompletion,
		Text:      completionMessage,
		Timestamp: time.Now().UTC(),
	})
	res.InterviewCompleted = true
	res.CompletionMessage = completionMessage

	if _, err := c.teardown(ctx, id, state.transcript); err != nil {
		slog.Error("failed to persist completed session", slog.String("session_id", id), slog.Any("error", err))
	}
}

// saveResponseRecord analyzes the finished answer and appends the record.
// Failures are logged, never surfaced; the interview keeps moving.
func (c *TurnController) saveResponseRecord(ctx domain.Context, id string, q domain.Question, utterance string, responseTime int, decision domain.TurnDecision) {
	quality := decision.Quality
	if quality == "" {
		quality = domain.QualityFair
	}
	rec := domain.ResponseRecord{
		QuestionID:          q.ID,
		QuestionText:        q.Text,
		UserResponse:        utterance,
		ResponseTime:        responseTime,
		Analysis:            c.Analyzer.Analyze(ctx, q, utterance),
		ConversationQuality: quality,
		Timestamp:           time.Now().UTC(),
	}
	if err := c.Sessions.AppendResponse(ctx, id, rec); err != nil {
		slog.Warn("failed to append response record", slog.String("session_id", id), slog.Any("error", err))
	}
}

// GetTranscript returns the live transcript for an active session, or the
// persisted one once the session has been torn down.
func (c *TurnController) GetTranscript(ctx domain.Context, id string) ([]domain.TurnEvent, error) {
	c.mu.Lock()
	state, ok := c.active[id]
	c.mu.Unlock()
	if ok {
		state.mu.Lock()
		defer state.mu.Unlock()
		return append([]domain.TurnEvent(nil), state.transcript...), nil
	}

	sess, err := c.Sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("op=turns.GetTranscript: %w", err)
	}
	return sess.Transcript, nil
}

// Complete persists the transcript and drops the in-memory state. It
// reports false when the session was not active, which makes repeated
// completion calls harmless.
func (c *TurnController) Complete(ctx domain.Context, id string) (bool, error) {
	c.mu.Lock()
	state, ok := c.active[id]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	state.mu.Lock()
	transcript := append([]domain.TurnEvent(nil), state.transcript...)
	state.mu.Unlock()
	return c.teardown(ctx, id, transcript)
}

// teardown writes the final document and removes the in-memory entry.
func (c *TurnController) teardown(ctx domain.Context, id string, transcript []domain.TurnEvent) (bool, error) {
	if err := c.Sessions.SaveCompletion(ctx, id, transcript, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("op=turns.teardown: %w", err)
	}
	c.mu.Lock()
	_, ok := c.active[id]
	delete(c.active, id)
	c.mu.Unlock()
	if ok {
		observability.SessionsActive.Dec()
		observability.SessionsCompletedTotal.Inc()
	}
	return ok, nil
}

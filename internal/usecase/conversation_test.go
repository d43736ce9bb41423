package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/internal/usecase"
)

// scriptedGen returns a fixed output or error for every call and records
// the prompts it saw.
type scriptedGen struct {
	out     string
	err     error
	prompts []string
}

func (g *scriptedGen) Generate(_ domain.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.out, nil
}

var sampleQuestion = domain.Question{
	ID:                   "tech_0",
	Text:                 "How does garbage collection work in Go?",
	Type:                 domain.QuestionTechnical,
	Difficulty:           domain.DifficultyMid,
	ExpectedAnswerPoints: []string{"tri-color marking", "write barriers"},
}

func TestProcessUserInput_PhrasePrecedence(t *testing.T) {
	t.Parallel()
	gen := &scriptedGen{err: errors.New("should not be called")}
	svc := usecase.NewConversationService(gen, "m", 0)

	cases := []struct {
		utterance string
		action    domain.TurnAction
	}{
		{"Can you repeat the question?", domain.ActionRepeatQuestion},
		{"say that again", domain.ActionRepeatQuestion},
		{"please slow down a bit", domain.ActionAdjustPace},
		{"I want to skip", domain.ActionSkipQuestion},
		{"i don't know", domain.ActionSkipQuestion},
		{"hm", domain.ActionEncourageElaboration},
	}
	for _, tc := range cases {
		d := svc.ProcessUserInput(context.Background(), tc.utterance, sampleQuestion, nil)
		assert.Equal(t, tc.action, d.Action, "utterance %q", tc.utterance)
		assert.True(t, d.ContinueListening, "utterance %q", tc.utterance)
	}
	// None of these should reach the gateway.
	assert.Empty(t, gen.prompts)
}

func TestProcessUserInput_RepeatEchoesQuestion(t *testing.T) {
	t.Parallel()
	svc := usecase.NewConversationService(&scriptedGen{err: errors.New("down")}, "m", 0)
	d := svc.ProcessUserInput(context.Background(), "repeat please", sampleQuestion, nil)
	assert.Equal(t, domain.ActionRepeatQuestion, d.Action)
	assert.Contains(t, d.Reply, sampleQuestion.Text)
}

func TestProcessUserInput_ClarifyFallsBackOnGatewayError(t *testing.T) {
	t.Parallel()
	svc := usecase.NewConversationService(&scriptedGen{err: errors.New("down")}, "m", 0)
	d := svc.ProcessUserInput(context.Background(), "can you clarify that", sampleQuestion, nil)
	assert.Equal(t, domain.ActionClarifyQuestion, d.Action)
	assert.Contains(t, d.Reply, sampleQuestion.Text)
	assert.Contains(t, d.Reply, "Let me clarify")
}

func TestProcessUserInput_ClarifyUsesGatewayText(t *testing.T) {
	t.Parallel()
	svc := usecase.NewConversationService(&scriptedGen{out: "Think of it as automatic memory cleanup."}, "m", 0)
	d := svc.ProcessUserInput(context.Background(), "what do you mean", sampleQuestion, nil)
	assert.Equal(t, domain.ActionClarifyQuestion, d.Action)
	assert.Equal(t, "Think of it as automatic memory cleanup.", d.Reply)
}

func TestProcessUserInput_ResolverParsesJudgment(t *testing.T) {
	t.Parallel()
	gen := &scriptedGen{out: `Here is my analysis:
{"action":"continue","response_quality":"excellent","is_relevant":true,"completeness_score":9,"accuracy_score":8,"needs_follow_up":false,"ai_response":"Great explanation of the collector.","follow_up_question":"","feedback":"Well done","next_action":"move_to_next_question"}`}
	svc := usecase.NewConversationService(gen, "m", 0)

	d := svc.ProcessUserInput(context.Background(), "the collector uses concurrent tri-color mark and sweep with write barriers", sampleQuestion, nil)
	assert.Equal(t, domain.ActionContinue, d.Action)
	assert.Equal(t, domain.QualityExcellent, d.Quality)
	assert.Equal(t, 9, d.CompletenessScore)
	assert.Equal(t, 8, d.AccuracyScore)
	assert.False(t, d.ContinueListening)
	assert.Equal(t, "Great explanation of the collector.", d.Reply)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], sampleQuestion.Text)
}

func TestProcessUserInput_ResolverDefaults(t *testing.T) {
	t.Parallel()
	gen := &scriptedGen{out: `{"action":"follow_up","next_action":"continue_listening"}`}
	svc := usecase.NewConversationService(gen, "m", 0)

	d := svc.ProcessUserInput(context.Background(), "it frees memory automatically for the program", sampleQuestion, nil)
	assert.Equal(t, domain.ActionFollowUp, d.Action)
	assert.True(t, d.ContinueListening)
	assert.Equal(t, "Thank you for that response.", d.Reply)
	assert.Equal(t, domain.QualityFair, d.Quality)
	assert.Equal(t, 7, d.CompletenessScore)
	assert.Equal(t, 7, d.AccuracyScore)
}

func TestProcessUserInput_ResolverGarbageFallsBack(t *testing.T) {
	t.Parallel()
	gen := &scriptedGen{out: "sorry, I cannot answer that"}
	svc := usecase.NewConversationService(gen, "m", 0)

	d := svc.ProcessUserInput(context.Background(), "it frees memory automatically whenever the heap grows beyond a threshold that the runtime computes from live data", sampleQuestion, nil)
	assert.Equal(t, domain.ActionContinue, d.Action)
	assert.Equal(t, domain.QualityGood, d.Quality)
}

func TestFallbackDecision_Deterministic(t *testing.T) {
	t.Parallel()
	first := usecase.FallbackDecision("I don't know, maybe not sure")
	second := usecase.FallbackDecision("I don't know, maybe not sure")
	assert.Equal(t, first, second)
	assert.Equal(t, domain.ActionProvideFeedback, first.Action)
	assert.Equal(t, domain.QualityPoor, first.Quality)
	assert.True(t, first.ContinueListening)
}

func TestFallbackDecision_Bands(t *testing.T) {
	t.Parallel()

	short := usecase.FallbackDecision("just four short words")
	assert.Equal(t, domain.ActionProvideFeedback, short.Action)
	assert.Equal(t, domain.QualityPoor, short.Quality)

	medium := usecase.FallbackDecision("the service talks to postgres through a small connection pool layer")
	assert.Equal(t, domain.ActionEncourageMore, medium.Action)
	assert.Equal(t, domain.QualityFair, medium.Quality)
	assert.True(t, medium.ContinueListening)

	long := usecase.FallbackDecision("the service talks to postgres through a pooled driver and caches hot replies in redis while exporting metrics for every request")
	assert.Equal(t, domain.ActionContinue, long.Action)
	assert.Equal(t, domain.QualityGood, long.Quality)
	assert.False(t, long.ContinueListening)
}

func TestRenderContext_WindowsHistory(t *testing.T) {
	t.Parallel()
	gen := &scriptedGen{out: `{"action":"continue","next_action":"move_to_next_question"}`}
	svc := usecase.NewConversationService(gen, "m", 0)

	history := make([]domain.TurnEvent, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, domain.TurnEvent{Kind: domain.EventUserResponse, Text: "older answer"})
	}
	history = append(history, domain.TurnEvent{Kind: domain.EventAIQuestion, Text: "newest question text"})

	svc.ProcessUserInput(context.Background(), "this is a reasonably sized answer to the question", sampleQuestion, history)
	require.Len(t, gen.prompts, 1)
	// Only the trailing window of events feeds the prompt.
	assert.Contains(t, gen.prompts[0], "newest question text")
}

package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/pkg/jsonx"
)

// Phrase sets for the cheap intent tests, checked in precedence order.
// First match wins; matching is case-insensitive substring.
var (
	repeatPhrases = []string{
		"repeat", "again", "say that again", "repeat question",
		"what was the question", "can you repeat",
	}
	clarifyPhrases = []string{
		"clarify", "explain", "what do you mean", "unclear", "confused",
		"don't understand", "rephrase",
	}
	skipPhrases = []string{
		"skip", "next question", "pass", "i don't know", "no idea", "not sure",
	}
	pacePhrases = []string{
		"slow down", "too fast", "speak slower",
	}
	examplePhrases = []string{
		"example", "give me an example", "for instance", "what do you mean by",
	}
	uncertaintyMarkers = []string{
		"i dont know", "no idea", "not sure", "maybe", "i think", "probably",
	}
)

// historyWindow bounds how many trailing transcript events feed the
// answer resolver's context.
const historyWindow = 6

// ConversationService classifies user utterances and resolves substantive
// answers into controller actions. Classification is a two-stage cascade:
// fixed phrase sets first, the generation gateway only for utterances
// that look like real answers.
type ConversationService struct {
	Gen domain.TextGenerator
	// Model names the chat model for token budgeting of resolver context.
	Model string
	// ContextTokenBudget caps resolver context; oldest events drop first.
	// Zero disables the cap.
	ContextTokenBudget int
}

// NewConversationService constructs a ConversationService.
func NewConversationService(gen domain.TextGenerator, model string, contextTokenBudget int) *ConversationService {
	return &ConversationService{Gen: gen, Model: model, ContextTokenBudget: contextTokenBudget}
}

// ProcessUserInput maps a raw utterance to exactly one TurnDecision.
// Phrase intents are deterministic and side-effect free except clarify
// and example, which ask the gateway for text and fall back to a fixed
// template on any failure.
func (s *ConversationService) ProcessUserInput(ctx domain.Context, utterance string, question domain.Question, history []domain.TurnEvent) domain.TurnDecision {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	if containsAnyPhrase(lower, repeatPhrases) {
		return domain.TurnDecision{
			Action:            domain.ActionRepeatQuestion,
			Reply:             "Of course! Let me repeat the question: " + question.Text,
			ContinueListening: true,
		}
	}
	if containsAnyPhrase(lower, clarifyPhrases) {
		return domain.TurnDecision{
			Action:            domain.ActionClarifyQuestion,
			Reply:             s.clarifyQuestion(ctx, question),
			ContinueListening: true,
		}
	}
	if containsAnyPhrase(lower, skipPhrases) {
		return domain.TurnDecision{
			Action:            domain.ActionSkipQuestion,
			Reply:             "I understand. That's perfectly fine. Let me give you a moment to think, or we can move on to the next question. What would you prefer?",
			ContinueListening: true,
		}
	}
	if containsAnyPhrase(lower, pacePhrases) {
		return domain.TurnDecision{
			Action:            domain.ActionAdjustPace,
			Reply:             "I'll speak more slowly. Let me repeat the question at a comfortable pace: " + question.Text,
			ContinueListening: true,
		}
	}
	if containsAnyPhrase(lower, examplePhrases) {
		return domain.TurnDecision{
			Action:            domain.ActionProvideExample,
			Reply:             s.provideExample(ctx, question),
			ContinueListening: true,
		}
	}
	// Too short to be an answer; ask for more rather than waste a gateway call.
	if len(strings.Fields(utterance)) < 3 {
		return domain.TurnDecision{
			Action:            domain.ActionEncourageElaboration,
			Reply:             "I'd love to hear more about that. Could you elaborate and give me more details about your thoughts or experience?",
			NeedsFollowUp:     true,
			ContinueListening: true,
		}
	}

	return s.resolveAnswer(ctx, utterance, question, history)
}

func (s *ConversationService) clarifyQuestion(ctx domain.Context, q domain.Question) string {
	prompt := fmt.Sprintf(`A candidate is confused about this interview question: %q

Question Type: %s
Expected Areas: %s

Provide a helpful clarification that rephrases the question in simpler terms, explains what kind of answer is expected, gives a brief illustrating scenario, and stays encouraging and professional. Keep it to 2-3 sentences.`,
		q.Text, q.Type, strings.Join(q.ExpectedAnswerPoints, ", "))

	out, err := s.Gen.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		observability.FallbacksTotal.WithLabelValues("clarify").Inc()
		return "Let me clarify that question for you. " + q.Text + " - I'm looking for your personal experience, thoughts, or approach to this topic. Take your time and share what comes to mind."
	}
	return strings.TrimSpace(out)
}

func (s *ConversationService) provideExample(ctx domain.Context, q domain.Question) string {
	prompt := fmt.Sprintf(`A candidate has asked for an example to better understand this interview question: %q

Provide a helpful example that illustrates what kind of response is expected, sketches a sample answer structure, and encourages the candidate to share their own experience. Keep it concise.`, q.Text)

	out, err := s.Gen.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		observability.FallbacksTotal.WithLabelValues("example").Inc()
		return "For example, if I were answering this question, I might talk about a specific situation, the actions I took, and the outcome. Now, I'd like to hear about your own experience with this topic."
	}
	return strings.TrimSpace(out)
}

// resolvedJudgment is the wire shape the resolver asks the gateway for.
type resolvedJudgment struct {
	Action            string `json:"action"`
	ResponseQuality   string `json:"response_quality"`
	IsRelevant        bool   `json:"is_relevant"`
	CompletenessScore int    `json:"completeness_score"`
	AccuracyScore     int    `json:"accuracy_score"`
	NeedsFollowUp     bool   `json:"needs_follow_up"`
	AIResponse        string `json:"ai_response"`
	FollowUpQuestion  string `json:"follow_up_question"`
	Feedback          string `json:"feedback"`
	NextAction        string `json:"next_action"`
}

func (s *ConversationService) resolveAnswer(ctx domain.Context, utterance string, q domain.Question, history []domain.TurnEvent) domain.TurnDecision {
	prompt := s.buildResolverPrompt(utterance, q, history)

	out, err := s.Gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("answer resolution gateway call failed; using heuristic fallback", slog.Any("error", err))
		observability.FallbacksTotal.WithLabelValues("resolve").Inc()
		return FallbackDecision(utterance)
	}
	raw, ok := jsonx.ExtractObject(out)
	if !ok {
		slog.Warn("answer resolution returned no parseable judgment; using heuristic fallback")
		observability.FallbacksTotal.WithLabelValues("resolve").Inc()
		return FallbackDecision(utterance)
	}
	var j resolvedJudgment
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		observability.FallbacksTotal.WithLabelValues("resolve").Inc()
		return FallbackDecision(utterance)
	}

	d := domain.TurnDecision{
		Action:            parseAction(j.Action),
		Reply:             j.AIResponse,
		FollowUpQuestion:  j.FollowUpQuestion,
		Feedback:          j.Feedback,
		Quality:           j.ResponseQuality,
		CompletenessScore: j.CompletenessScore,
		AccuracyScore:     j.AccuracyScore,
		NeedsFollowUp:     j.NeedsFollowUp,
		ContinueListening: j.NextAction == "continue_listening",
	}
	if d.Reply == "" {
		d.Reply = "Thank you for that response."
	}
	if d.Quality == "" {
		d.Quality = domain.QualityFair
	}
	if d.CompletenessScore == 0 {
		d.CompletenessScore = 7
	}
	if d.AccuracyScore == 0 {
		d.AccuracyScore = 7
	}
	return d
}

func (s *ConversationService) buildResolverPrompt(utterance string, q domain.Question, history []domain.TurnEvent) string {
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	contextText := s.renderContext(recent)

	return fmt.Sprintf(`You are an experienced, adaptive AI interviewer analyzing a candidate's response. Be conversational, supportive, but honest in your analysis.

Current Question: %s
Question Type: %s
Difficulty Level: %s
Expected Points: %s

Candidate's Answer: %s

Recent Conversation Context:
%s

Analyze this response and determine the most appropriate next action. Return JSON in this exact format:
{
    "action": "continue|follow_up|provide_feedback|encourage_more|correct_misunderstanding|move_next",
    "response_quality": "excellent|good|fair|poor|off_topic|wrong",
    "is_relevant": true/false,
    "completeness_score": 1-10,
    "accuracy_score": 1-10,
    "needs_follow_up": true/false,
    "ai_response": "What you should say next - be conversational and adaptive",
    "follow_up_question": "Specific follow-up question if needed",
    "feedback": "Brief encouraging feedback",
    "next_action": "continue_listening|move_to_next_question"
}

Guidelines: correct wrong or poor answers gently and ask a clarifying question; redirect off-topic answers back to the question; ask for details on incomplete answers; acknowledge strengths of good answers and move forward; reference the candidate's specific points.`,
		q.Text, q.Type, q.Difficulty, strings.Join(q.ExpectedAnswerPoints, ", "),
		utterance, contextText)
}

// renderContext renders trailing transcript events, dropping the oldest
// until the token budget is met.
func (s *ConversationService) renderContext(events []domain.TurnEvent) string {
	render := func(evs []domain.TurnEvent) string {
		lines := make([]string, 0, len(evs))
		for _, e := range evs {
			lines = append(lines, string(e.Kind)+": "+e.Text)
		}
		return strings.Join(lines, "\n")
	}
	text := render(events)
	if s.ContextTokenBudget <= 0 {
		return text
	}
	for len(events) > 1 && tokencount.DefaultCounter.CountTokensOrEstimate(text, s.Model) > s.ContextTokenBudget {
		events = events[1:]
		text = render(events)
	}
	return text
}

// FallbackDecision is the deterministic judgment used when the gateway
// fails or returns no parseable structure. It guarantees the controller
// always has a usable action.
func FallbackDecision(utterance string) domain.TurnDecision {
	wordCount := len(strings.Fields(utterance))
	hasUncertainty := containsAnyPhrase(strings.ToLower(utterance), uncertaintyMarkers)

	switch {
	case wordCount < 5 || hasUncertainty:
		return domain.TurnDecision{
			Action:            domain.ActionProvideFeedback,
			Reply:             "I can see you're uncertain about this. Let me help clarify the concept and give you another chance to think about it. This is a common area that many candidates find challenging.",
			Quality:           domain.QualityPoor,
			NeedsFollowUp:     true,
			ContinueListening: true,
		}
	case wordCount < 15:
		return domain.TurnDecision{
			Action:            domain.ActionEncourageMore,
			Reply:             "That's a good start! I can see you understand some aspects. Could you elaborate more and perhaps give me a specific example or walk me through your thought process?",
			Quality:           domain.QualityFair,
			NeedsFollowUp:     true,
			ContinueListening: true,
		}
	default:
		return domain.TurnDecision{
			Action:            domain.ActionContinue,
			Reply:             "Thank you for that comprehensive answer. I can see you have good knowledge in this area and you've explained your thinking clearly.",
			Quality:           domain.QualityGood,
			ContinueListening: false,
		}
	}
}

func parseAction(s string) domain.TurnAction {
	switch s {
	case "continue":
		return domain.ActionContinue
	case "follow_up":
		return domain.ActionFollowUp
	case "provide_feedback":
		return domain.ActionProvideFeedback
	case "encourage_more":
		return domain.ActionEncourageMore
	case "correct_misunderstanding":
		return domain.ActionCorrectMisunderstanding
	case "move_next":
		return domain.ActionMoveNext
	default:
		return domain.ActionUnspecified
	}
}

func containsAnyPhrase(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

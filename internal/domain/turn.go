package domain

// TurnAction is the closed set of controller actions a resolved turn can
// carry. The dispatcher matches all variants explicitly; anything it does
// not recognize is treated as a pending follow-up.
type TurnAction int

const (
	// ActionUnspecified is the zero value; the dispatcher treats it as a
	// pending follow-up on the current question.
	ActionUnspecified TurnAction = iota
	ActionRepeatQuestion
	ActionClarifyQuestion
	ActionSkipQuestion
	ActionAdjustPace
	ActionProvideExample
	ActionEncourageElaboration
	ActionEncourageMore
	ActionFollowUp
	ActionProvideFeedback
	ActionCorrectMisunderstanding
	ActionContinue
	ActionMoveNext
)

var turnActionNames = map[TurnAction]string{
	ActionUnspecified:             "unspecified",
	ActionRepeatQuestion:          "repeat_question",
	ActionClarifyQuestion:         "clarify_question",
	ActionSkipQuestion:            "skip_question",
	ActionAdjustPace:              "adjust_pace",
	ActionProvideExample:          "provide_example",
	ActionEncourageElaboration:    "encourage_elaboration",
	ActionEncourageMore:           "encourage_more",
	ActionFollowUp:                "follow_up",
	ActionProvideFeedback:         "provide_feedback",
	ActionCorrectMisunderstanding: "correct_misunderstanding",
	ActionContinue:                "continue",
	ActionMoveNext:                "move_next",
}

func (a TurnAction) String() string {
	if n, ok := turnActionNames[a]; ok {
		return n
	}
	return "unspecified"
}

// IsMeta reports whether the action answers a meta-request about the
// current question (repeat, clarify, example, pace) rather than judging
// an answer. Meta actions never advance the question index and never
// touch the follow-up counter.
func (a TurnAction) IsMeta() bool {
	switch a {
	case ActionRepeatQuestion, ActionClarifyQuestion, ActionProvideExample, ActionAdjustPace:
		return true
	}
	return false
}

// Response quality labels produced by the answer resolver.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
	QualityOffTopic  = "off_topic"
	QualityWrong     = "wrong"
)

// TurnDecision is the resolver's judgment of one user utterance: which
// controller action to take, what to say, and whether to keep listening
// on the same question.
type TurnDecision struct {
	Action            TurnAction
	Reply             string
	FollowUpQuestion  string
	Feedback          string
	Quality           string
	CompletenessScore int
	AccuracyScore     int
	NeedsFollowUp     bool
	ContinueListening bool
}

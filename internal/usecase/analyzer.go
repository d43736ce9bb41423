package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/pkg/jsonx"
)

// AnalyzerService scores a finished answer against the question's
// expected points. Failures degrade to a length-band heuristic so the
// controller can always record something.
type AnalyzerService struct {
	Gen domain.TextGenerator
}

// NewAnalyzerService constructs an AnalyzerService.
func NewAnalyzerService(gen domain.TextGenerator) *AnalyzerService {
	return &AnalyzerService{Gen: gen}
}

// Analyze produces a ResponseAnalysis for one question/answer pair.
func (s *AnalyzerService) Analyze(ctx domain.Context, q domain.Question, answer string) domain.ResponseAnalysis {
	prompt := fmt.Sprintf(`Analyze this interview response:

Question: %s
Question Type: %s
Expected Answer Points: %s
User Response: %s

Provide analysis as JSON in this exact format:
{
    "completeness_score": 1-10,
    "accuracy_score": 1-10,
    "clarity_score": 1-10,
    "relevance_score": 1-10,
    "depth_score": 1-10,
    "missing_points": ["point1", "point2"],
    "strengths": ["strength1", "strength2"],
    "areas_for_improvement": ["area1", "area2"],
    "overall_feedback": "Brief constructive feedback",
    "follow_up_needed": true/false,
    "suggested_follow_up": "Optional follow-up question"
}`,
		q.Text, q.Type, strings.Join(q.ExpectedAnswerPoints, ", "), answer)

	out, err := s.Gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("response analysis gateway call failed; using heuristic fallback", slog.Any("error", err))
		observability.FallbacksTotal.WithLabelValues("analyze").Inc()
		return FallbackAnalysis(answer)
	}
	raw, ok := jsonx.ExtractObject(out)
	if !ok {
		observability.FallbacksTotal.WithLabelValues("analyze").Inc()
		return FallbackAnalysis(answer)
	}
	var a domain.ResponseAnalysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		observability.FallbacksTotal.WithLabelValues("analyze").Inc()
		return FallbackAnalysis(answer)
	}
	return a
}

// FallbackAnalysis scores an answer from word count alone. Bands mirror
// what a lenient human grader would give for terse, short, medium, and
// long answers.
func FallbackAnalysis(answer string) domain.ResponseAnalysis {
	wordCount := len(strings.Fields(answer))

	var completeness, clarity, depth int
	switch {
	case wordCount < 10:
		completeness, clarity, depth = 3, 4, 2
	case wordCount < 30:
		completeness, clarity, depth = 6, 7, 5
	case wordCount < 60:
		completeness, clarity, depth = 8, 8, 7
	default:
		completeness, clarity, depth = 9, 8, 8
	}

	improvements := []string{}
	feedback := "Comprehensive and well-structured response"
	if wordCount < 30 {
		improvements = []string{"Could provide more specific examples"}
		feedback = "Good response with room for more detail"
	}
	followUp := ""
	if wordCount < 20 {
		followUp = "Could you elaborate on that with a specific example?"
	}

	return domain.ResponseAnalysis{
		CompletenessScore:   completeness,
		AccuracyScore:       7,
		ClarityScore:        clarity,
		RelevanceScore:      7,
		DepthScore:          depth,
		MissingPoints:       []string{},
		Strengths:           []string{"Provided thoughtful response", "Good communication"},
		AreasForImprovement: improvements,
		OverallFeedback:     feedback,
		FollowUpNeeded:      wordCount < 20,
		SuggestedFollowUp:   followUp,
	}
}

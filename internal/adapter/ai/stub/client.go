// Package stub provides a fast, deterministic text generator for local
// development and tests.
package stub

import (
	"encoding/json"
	"strings"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// Client answers every prompt without network access. The reply shape is
// picked by sniffing the prompt so question generation, the answer
// resolver, and the analyzer all receive parseable output.
type Client struct{}

// New constructs a stub client.
func New() *Client { return &Client{} }

// Generate returns deterministic canned content for the prompt.
func (c *Client) Generate(_ domain.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "JSON array"):
		payload := []map[string]any{
			{
				"question":        "Walk me through a project where you applied this skill end to end.",
				"expected_points": []string{"Concrete project", "Own contribution", "Outcome"},
				"follow_up":       "What would you change if you did it again?",
			},
			{
				"question":        "How do you verify your work before shipping it?",
				"expected_points": []string{"Testing approach", "Review process", "Monitoring"},
				"follow_up":       "Tell me about a bug that slipped through.",
			},
		}
		b, _ := json.Marshal(payload)
		return string(b), nil
	case strings.Contains(prompt, `"action"`):
		payload := map[string]any{
			"action":             "continue",
			"response_quality":   "good",
			"is_relevant":        true,
			"completeness_score": 8,
			"accuracy_score":     8,
			"needs_follow_up":    false,
			"ai_response":        "Thanks, that covers the question well.",
			"follow_up_question": "",
			"feedback":           "Clear and structured answer.",
			"next_action":        "move_to_next_question",
		}
		b, _ := json.Marshal(payload)
		return string(b), nil
	case strings.Contains(prompt, `"completeness_score"`):
		payload := map[string]any{
			"completeness_score":    8,
			"accuracy_score":        8,
			"clarity_score":         8,
			"relevance_score":       8,
			"depth_score":           7,
			"missing_points":        []string{},
			"strengths":             []string{"Structured answer", "Specific example"},
			"areas_for_improvement": []string{},
			"overall_feedback":      "Comprehensive and well-structured response.",
			"follow_up_needed":      false,
			"suggested_follow_up":   "",
		}
		b, _ := json.Marshal(payload)
		return string(b), nil
	default:
		return "In other words, describe your own hands-on experience with this topic, including what you did and how it turned out.", nil
	}
}

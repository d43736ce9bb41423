package usecase

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

//go:embed questionbank.yaml
var questionBankYAML []byte

// questionBank holds the curated fallback questions, keyed by difficulty.
type questionBank struct {
	Technical  map[string][]string `yaml:"technical"`
	Behavioral map[string][]string `yaml:"behavioral"`
}

var fallbackBank = func() questionBank {
	var b questionBank
	if err := yaml.Unmarshal(questionBankYAML, &b); err != nil {
		panic(fmt.Sprintf("parse embedded question bank: %v", err))
	}
	return b
}()

func (b questionBank) technicalTemplates(d domain.DifficultyLevel) []string {
	if t, ok := b.Technical[string(d)]; ok {
		return t
	}
	return b.Technical[string(domain.DifficultyEntry)]
}

func (b questionBank) behavioralQuestions(d domain.DifficultyLevel) []string {
	if t, ok := b.Behavioral[string(d)]; ok {
		return t
	}
	return b.Behavioral[string(domain.DifficultyEntry)]
}

// fallbackTechnicalQuestions pairs up to two skills with the bank's
// templates for the requested difficulty.
func fallbackTechnicalQuestions(skills []string, d domain.DifficultyLevel) []domain.Question {
	templates := fallbackBank.technicalTemplates(d)
	var qs []domain.Question
	for i, skill := range skills {
		if i >= 2 || i >= len(templates) {
			break
		}
		qs = append(qs, domain.Question{
			ID:         fmt.Sprintf("tech_fallback_%d", i),
			Text:       strings.ReplaceAll(templates[i], "{skill}", skill),
			Type:       domain.QuestionTechnical,
			Difficulty: d,
			ExpectedAnswerPoints: []string{
				"Understanding of " + skill, "Practical experience", "Problem-solving approach",
			},
			FollowUpQuestions: []string{"What challenges did you face with " + skill + "?"},
		})
	}
	return qs
}

func fallbackBehavioralQuestions(d domain.DifficultyLevel) []domain.Question {
	var qs []domain.Question
	for i, text := range fallbackBank.behavioralQuestions(d) {
		qs = append(qs, domain.Question{
			ID:                   fmt.Sprintf("behavioral_fallback_%d", i),
			Text:                 text,
			Type:                 domain.QuestionBehavioral,
			Difficulty:           d,
			ExpectedAnswerPoints: []string{"Situation", "Task", "Action", "Result"},
			FollowUpQuestions:    []string{"What would you do differently next time?"},
		})
	}
	return qs
}

// fallbackExperienceQuestions asks about up to two experience lines,
// truncated so the question stays readable.
func fallbackExperienceQuestions(experiences []string, d domain.DifficultyLevel) []domain.Question {
	var qs []domain.Question
	for i, exp := range experiences {
		if i >= 2 {
			break
		}
		if len(exp) > 100 {
			exp = exp[:100]
		}
		qs = append(qs, domain.Question{
			ID:         fmt.Sprintf("exp_fallback_%d", i),
			Text:       "Can you walk me through your role and responsibilities in: " + exp + "...",
			Type:       domain.QuestionExperience,
			Difficulty: d,
			ExpectedAnswerPoints: []string{
				"Role description", "Key responsibilities", "Main achievements",
			},
			FollowUpQuestions: []string{"What was the most challenging aspect of this role?"},
		})
	}
	return qs
}

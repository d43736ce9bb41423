package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/pkg/jsonx"
)

// QuestionService builds a session's question set from a stored résumé.
// Each requested question type is generated independently; a type whose
// generation fails degrades to the curated fallback bank rather than
// failing the whole session.
type QuestionService struct {
	Resumes  domain.ResumeRepository
	Sessions domain.SessionRepository
	Gen      domain.TextGenerator

	// DefaultNumQuestions caps the assembled set when the config does not.
	DefaultNumQuestions int
}

// NewQuestionService constructs a QuestionService.
func NewQuestionService(resumes domain.ResumeRepository, sessions domain.SessionRepository, gen domain.TextGenerator, defaultNumQuestions int) *QuestionService {
	if defaultNumQuestions <= 0 {
		defaultNumQuestions = 5
	}
	return &QuestionService{Resumes: resumes, Sessions: sessions, Gen: gen, DefaultNumQuestions: defaultNumQuestions}
}

// CreateSession generates questions for the résumé per cfg, persists a
// ready session, and returns it.
func (s *QuestionService) CreateSession(ctx domain.Context, resumeID string, cfg domain.InterviewConfig) (domain.InterviewSession, error) {
	if resumeID == "" {
		return domain.InterviewSession{}, fmt.Errorf("resume id required: %w", domain.ErrInvalidArgument)
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = domain.DifficultyMid
	}
	if !cfg.Difficulty.Valid() {
		return domain.InterviewSession{}, fmt.Errorf("unknown difficulty %q: %w", cfg.Difficulty, domain.ErrInvalidArgument)
	}
	if len(cfg.QuestionTypes) == 0 {
		cfg.QuestionTypes = []domain.QuestionType{domain.QuestionTechnical, domain.QuestionBehavioral, domain.QuestionExperience}
	}
	if cfg.NumQuestions <= 0 {
		cfg.NumQuestions = s.DefaultNumQuestions
	}

	resume, err := s.Resumes.Get(ctx, resumeID)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=questions.CreateSession: %w", err)
	}

	questions := s.generate(ctx, resume, cfg)
	if len(questions) == 0 {
		return domain.InterviewSession{}, fmt.Errorf("no questions could be generated: %w", domain.ErrInternal)
	}

	session := domain.InterviewSession{
		ID:         uuid.New().String(),
		ResumeID:   resumeID,
		Difficulty: cfg.Difficulty,
		Questions:  questions,
		Responses:  []domain.ResponseRecord{},
		Status:     domain.SessionReady,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.Sessions.Create(ctx, session); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=questions.CreateSession: %w", err)
	}
	return session, nil
}

func (s *QuestionService) generate(ctx domain.Context, resume domain.Resume, cfg domain.InterviewConfig) []domain.Question {
	var questions []domain.Question
	for _, qt := range cfg.QuestionTypes {
		switch qt {
		case domain.QuestionTechnical:
			questions = append(questions, s.technical(ctx, resume.Skills, cfg.Difficulty)...)
		case domain.QuestionBehavioral:
			questions = append(questions, s.behavioral(ctx, cfg.Difficulty)...)
		case domain.QuestionExperience:
			questions = append(questions, s.experience(ctx, resume.Experience, cfg.Difficulty)...)
		}
	}
	if len(questions) > cfg.NumQuestions {
		questions = questions[:cfg.NumQuestions]
	}
	return questions
}

// generatedQuestion is the wire shape a generated question arrives in.
type generatedQuestion struct {
	Question       string   `json:"question"`
	ExpectedPoints []string `json:"expected_points"`
	FollowUp       string   `json:"follow_up"`
}

func (s *QuestionService) technical(ctx domain.Context, skills []string, d domain.DifficultyLevel) []domain.Question {
	if len(skills) == 0 {
		return nil
	}
	top := skills
	if len(top) > 5 {
		top = top[:5]
	}
	prompt := fmt.Sprintf(`Generate technical interview questions for a %s level candidate with skills: %s

For each skill, create 1-2 questions that test:
- Practical knowledge and application
- Problem-solving abilities
- Real-world usage scenarios

Difficulty levels:
- entry: Basic concepts, definitions, simple usage
- mid: Implementation details, best practices, debugging
- senior: Architecture decisions, optimization, leadership in technical choices

Return response as JSON array with format:
[{
    "question": "question text",
    "skill": "related skill",
    "expected_points": ["point1", "point2", "point3"],
    "follow_up": "follow up question"
}]`, d, strings.Join(top, ", "))

	qs := s.generateTyped(ctx, prompt, "tech", domain.QuestionTechnical, d, 3)
	if qs == nil {
		observability.FallbacksTotal.WithLabelValues("questions_technical").Inc()
		return fallbackTechnicalQuestions(skills, d)
	}
	return qs
}

func (s *QuestionService) behavioral(ctx domain.Context, d domain.DifficultyLevel) []domain.Question {
	prompt := fmt.Sprintf(`Generate behavioral interview questions for a %s level candidate using STAR method.

Focus areas based on difficulty:
- entry: Learning ability, teamwork, basic problem-solving
- mid: Leadership potential, conflict resolution, project management
- senior: Strategic thinking, mentoring, organizational impact

Return response as JSON array with format:
[{
    "question": "question text",
    "focus_area": "area being tested",
    "expected_points": ["point1", "point2", "point3"],
    "follow_up": "follow up question"
}]

Generate 3 questions.`, d)

	qs := s.generateTyped(ctx, prompt, "behavioral", domain.QuestionBehavioral, d, 3)
	if qs == nil {
		observability.FallbacksTotal.WithLabelValues("questions_behavioral").Inc()
		return fallbackBehavioralQuestions(d)
	}
	return qs
}

func (s *QuestionService) experience(ctx domain.Context, experiences []string, d domain.DifficultyLevel) []domain.Question {
	if len(experiences) == 0 {
		return nil
	}
	top := experiences
	if len(top) > 3 {
		top = top[:3]
	}
	prompt := fmt.Sprintf(`Based on these work experiences, generate specific questions for a %s level interview:

Experiences:
%s

Create questions that:
- Dive deep into specific projects and responsibilities
- Test problem-solving and decision-making
- Explore achievements and challenges

Difficulty considerations:
- entry: Focus on learning and contribution
- mid: Focus on independence and problem-solving
- senior: Focus on leadership and strategic impact

Return response as JSON array with format:
[{
    "question": "question text",
    "experience_focus": "which experience this targets",
    "expected_points": ["point1", "point2", "point3"],
    "follow_up": "follow up question"
}]`, d, strings.Join(top, "\n"))

	qs := s.generateTyped(ctx, prompt, "exp", domain.QuestionExperience, d, 2)
	if qs == nil {
		observability.FallbacksTotal.WithLabelValues("questions_experience").Inc()
		return fallbackExperienceQuestions(experiences, d)
	}
	return qs
}

// generateTyped runs one generation round trip and maps the parsed array
// onto Questions. It returns nil (not an empty slice) when the round trip
// fails so callers can tell "fallback needed" from "zero questions".
func (s *QuestionService) generateTyped(ctx domain.Context, prompt, idPrefix string, qt domain.QuestionType, d domain.DifficultyLevel, maxN int) []domain.Question {
	out, err := s.Gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("question generation gateway call failed", slog.String("type", string(qt)), slog.Any("error", err))
		return nil
	}
	raw, ok := jsonx.ExtractArray(out)
	if !ok {
		return nil
	}
	var parsed []generatedQuestion
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}
	if len(parsed) == 0 {
		return nil
	}
	if len(parsed) > maxN {
		parsed = parsed[:maxN]
	}
	qs := make([]domain.Question, 0, len(parsed))
	for i, g := range parsed {
		qs = append(qs, domain.Question{
			ID:                   fmt.Sprintf("%s_%d", idPrefix, i),
			Text:                 g.Question,
			Type:                 qt,
			Difficulty:           d,
			ExpectedAnswerPoints: g.ExpectedPoints,
			FollowUpQuestions:    []string{g.FollowUp},
		})
	}
	return qs
}

package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/internal/usecase"
)

type stubResumeRepo struct {
	resumes map[string]domain.Resume
}

func (r *stubResumeRepo) Create(_ domain.Context, res domain.Resume) (string, error) {
	if r.resumes == nil {
		r.resumes = map[string]domain.Resume{}
	}
	id := "resume-1"
	res.ID = id
	r.resumes[id] = res
	return id, nil
}

func (r *stubResumeRepo) Get(_ domain.Context, id string) (domain.Resume, error) {
	res, ok := r.resumes[id]
	if !ok {
		return domain.Resume{}, domain.ErrNotFound
	}
	return res, nil
}

func seededResumeRepo() *stubResumeRepo {
	return &stubResumeRepo{resumes: map[string]domain.Resume{
		"resume-1": {
			ID:         "resume-1",
			Skills:     []string{"Go", "Postgresql", "Redis"},
			Experience: []string{"Developed a payment reconciliation service processing millions of events daily"},
		},
	}}
}

func TestCreateSession_FallbackBankOnGatewayError(t *testing.T) {
	t.Parallel()
	sessions := newStubSessionRepo()
	svc := usecase.NewQuestionService(seededResumeRepo(), sessions, failingGen{}, 5)

	sess, err := svc.CreateSession(context.Background(), "resume-1", domain.InterviewConfig{Difficulty: domain.DifficultyMid})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionReady, sess.Status)
	require.NotEmpty(t, sess.Questions)
	assert.LessOrEqual(t, len(sess.Questions), 5)

	// Technical fallback substitutes the candidate's first skill.
	first := sess.Questions[0]
	assert.Equal(t, "tech_fallback_0", first.ID)
	assert.Contains(t, first.Text, "Go")
	assert.Equal(t, domain.DifficultyMid, first.Difficulty)

	// The session was persisted.
	stored, err := sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, len(sess.Questions), len(stored.Questions))
}

func TestCreateSession_ParsesGeneratedQuestions(t *testing.T) {
	t.Parallel()
	gen := &scriptedGen{out: `[
  {"question":"How do you tune Postgres indexes?","expected_points":["explain plans","index types"],"follow_up":"When would you avoid an index?"},
  {"question":"Describe Go scheduler behavior.","expected_points":["GOMAXPROCS"],"follow_up":"What about preemption?"}
]`}
	svc := usecase.NewQuestionService(seededResumeRepo(), newStubSessionRepo(), gen, 5)

	sess, err := svc.CreateSession(context.Background(), "resume-1", domain.InterviewConfig{
		Difficulty:    domain.DifficultySenior,
		QuestionTypes: []domain.QuestionType{domain.QuestionTechnical},
		NumQuestions:  5,
	})
	require.NoError(t, err)
	require.Len(t, sess.Questions, 2)
	assert.Equal(t, "tech_0", sess.Questions[0].ID)
	assert.Equal(t, "How do you tune Postgres indexes?", sess.Questions[0].Text)
	assert.Equal(t, []string{"explain plans", "index types"}, sess.Questions[0].ExpectedAnswerPoints)
	assert.Equal(t, []string{"When would you avoid an index?"}, sess.Questions[0].FollowUpQuestions)
	assert.Equal(t, domain.QuestionTechnical, sess.Questions[1].Type)
}

func TestCreateSession_CapsQuestionCount(t *testing.T) {
	t.Parallel()
	svc := usecase.NewQuestionService(seededResumeRepo(), newStubSessionRepo(), failingGen{}, 5)

	sess, err := svc.CreateSession(context.Background(), "resume-1", domain.InterviewConfig{
		Difficulty:   domain.DifficultyEntry,
		NumQuestions: 2,
	})
	require.NoError(t, err)
	assert.Len(t, sess.Questions, 2)
}

func TestCreateSession_UnknownResume(t *testing.T) {
	t.Parallel()
	svc := usecase.NewQuestionService(&stubResumeRepo{}, newStubSessionRepo(), failingGen{}, 5)
	_, err := svc.CreateSession(context.Background(), "missing", domain.InterviewConfig{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateSession_InvalidDifficulty(t *testing.T) {
	t.Parallel()
	svc := usecase.NewQuestionService(seededResumeRepo(), newStubSessionRepo(), failingGen{}, 5)
	_, err := svc.CreateSession(context.Background(), "resume-1", domain.InterviewConfig{Difficulty: "expert"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreateSession_BehavioralFallbackUsesSTARPoints(t *testing.T) {
	t.Parallel()
	svc := usecase.NewQuestionService(seededResumeRepo(), newStubSessionRepo(), failingGen{}, 10)

	sess, err := svc.CreateSession(context.Background(), "resume-1", domain.InterviewConfig{
		Difficulty:    domain.DifficultySenior,
		QuestionTypes: []domain.QuestionType{domain.QuestionBehavioral},
		NumQuestions:  10,
	})
	require.NoError(t, err)
	require.Len(t, sess.Questions, 3)
	for i, q := range sess.Questions {
		assert.Equal(t, domain.QuestionBehavioral, q.Type)
		assert.Equal(t, []string{"Situation", "Task", "Action", "Result"}, q.ExpectedAnswerPoints)
		assert.True(t, strings.HasPrefix(q.ID, "behavioral_fallback_"), "id %d: %s", i, q.ID)
	}
}

func TestCreateSession_ExperienceFallbackTruncates(t *testing.T) {
	t.Parallel()
	repo := seededResumeRepo()
	res := repo.resumes["resume-1"]
	res.Experience = []string{strings.Repeat("led a large migration effort ", 10)}
	repo.resumes["resume-1"] = res
	svc := usecase.NewQuestionService(repo, newStubSessionRepo(), failingGen{}, 10)

	sess, err := svc.CreateSession(context.Background(), "resume-1", domain.InterviewConfig{
		Difficulty:    domain.DifficultyMid,
		QuestionTypes: []domain.QuestionType{domain.QuestionExperience},
		NumQuestions:  10,
	})
	require.NoError(t, err)
	require.Len(t, sess.Questions, 1)
	assert.Equal(t, "exp_fallback_0", sess.Questions[0].ID)
	// Long experience lines are clipped inside the question text.
	assert.Less(t, len(sess.Questions[0].Text), 200)
}

func TestCreateSession_SetsTimestamps(t *testing.T) {
	t.Parallel()
	svc := usecase.NewQuestionService(seededResumeRepo(), newStubSessionRepo(), failingGen{}, 5)
	before := time.Now().UTC().Add(-time.Second)
	sess, err := svc.CreateSession(context.Background(), "resume-1", domain.InterviewConfig{})
	require.NoError(t, err)
	assert.True(t, sess.CreatedAt.After(before))
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "resume-1", sess.ResumeID)
	assert.Equal(t, domain.DifficultyMid, sess.Difficulty)
}

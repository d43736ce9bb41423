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

type stubExtractor struct {
	text string
	err  error
}

func (e stubExtractor) ExtractPath(_ domain.Context, _, _ string) (string, error) {
	return e.text, e.err
}

const resumeText = `Jane Doe
Developed a reconciliation service in Go with PostgreSQL and Redis caching layers
Bachelor of Science in Computer Science, Example University`

func TestResume_Ingest(t *testing.T) {
	t.Parallel()
	repo := &stubResumeRepo{}
	svc := usecase.NewResumeService(repo, stubExtractor{text: resumeText})

	r, err := svc.Ingest(context.Background(), "jane.pdf", "/tmp/jane.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resume-1", r.ID)
	assert.Equal(t, "jane.pdf", r.Filename)
	assert.Contains(t, r.Skills, "Go")
	assert.Contains(t, r.Skills, "Postgresql")
	assert.Contains(t, r.Skills, "Redis")
	require.Len(t, r.Experience, 1)
	require.Len(t, r.Education, 1)
	assert.Contains(t, r.Education[0], "University")
	assert.Equal(t, r.Skills, r.ParsedData["skills"])
}

func TestResume_IngestExtractorFailure(t *testing.T) {
	t.Parallel()
	svc := usecase.NewResumeService(&stubResumeRepo{}, stubExtractor{err: errors.New("tika down")})
	_, err := svc.Ingest(context.Background(), "jane.pdf", "/tmp/jane.pdf")
	require.Error(t, err)
}

func TestResume_IngestEmptyText(t *testing.T) {
	t.Parallel()
	svc := usecase.NewResumeService(&stubResumeRepo{}, stubExtractor{text: "   \n  "})
	_, err := svc.Ingest(context.Background(), "blank.pdf", "/tmp/blank.pdf")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestResume_Get(t *testing.T) {
	t.Parallel()
	svc := usecase.NewResumeService(seededResumeRepo(), stubExtractor{})

	r, err := svc.Get(context.Background(), "resume-1")
	require.NoError(t, err)
	assert.Equal(t, "resume-1", r.ID)

	_, err = svc.Get(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

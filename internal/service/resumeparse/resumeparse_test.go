package resumeparse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-coach/internal/service/resumeparse"
)

const sampleResume = `John Smith
Senior Software Engineer

Developed microservices in Go and Python deployed on Kubernetes clusters
Led a team of five engineers building a React frontend for internal tools
Implemented CI pipelines with Jenkins and Docker for all repositories
Maintained PostgreSQL and Redis infrastructure across three regions
Designed the migration from MySQL to PostgreSQL with zero downtime plan
Created onboarding material and mentored junior developers every quarter

Bachelor of Science in Computer Science, State University
Master of Engineering, Institute of Technology
AWS Certified Solutions Architect certification obtained in 2020`

func TestSkills(t *testing.T) {
	t.Parallel()
	skills := resumeparse.Skills(sampleResume)
	assert.Contains(t, skills, "Go")
	assert.Contains(t, skills, "Python")
	assert.Contains(t, skills, "Kubernetes")
	assert.Contains(t, skills, "React")
	assert.Contains(t, skills, "Postgresql")
	assert.Contains(t, skills, "Docker")
	assert.NotContains(t, skills, "Rust")

	// Deduplicated and sorted for stable output.
	sorted := append([]string(nil), skills...)
	assert.IsNonDecreasing(t, sorted)
	seen := map[string]bool{}
	for _, s := range skills {
		require.False(t, seen[s], "duplicate skill %s", s)
		seen[s] = true
	}
}

func TestSkills_MultiWord(t *testing.T) {
	t.Parallel()
	skills := resumeparse.Skills("Experience with machine learning pipelines and agile delivery")
	assert.Contains(t, skills, "Machine Learning")
	assert.Contains(t, skills, "Agile")
}

func TestExperience(t *testing.T) {
	t.Parallel()
	exp := resumeparse.Experience(sampleResume)
	require.NotEmpty(t, exp)
	assert.LessOrEqual(t, len(exp), 5)
	for _, line := range exp {
		lower := strings.ToLower(line)
		assert.NotContains(t, lower, "university")
		assert.Greater(t, len(line), 30)
	}
	assert.Contains(t, exp[0], "Developed microservices")
}

func TestExperience_CapsAtFive(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("Developed yet another long-running backend data processing component\n")
	}
	assert.Len(t, resumeparse.Experience(b.String()), 5)
}

func TestEducation(t *testing.T) {
	t.Parallel()
	edu := resumeparse.Education(sampleResume)
	require.Len(t, edu, 3)
	assert.Contains(t, edu[0], "State University")
	assert.Contains(t, edu[1], "Institute of Technology")
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()
	assert.Empty(t, resumeparse.Skills(""))
	assert.Empty(t, resumeparse.Experience(""))
	assert.Empty(t, resumeparse.Education(""))
}

package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/internal/service/resumeparse"
	"github.com/fairyhunter13/ai-interview-coach/pkg/textx"
)

// ResumeService ingests uploaded résumé files: extract text, derive
// structured fields, persist the document.
type ResumeService struct {
	Repo      domain.ResumeRepository
	Extractor domain.TextExtractor
}

// NewResumeService constructs a ResumeService.
func NewResumeService(repo domain.ResumeRepository, extractor domain.TextExtractor) *ResumeService {
	return &ResumeService{Repo: repo, Extractor: extractor}
}

// Ingest extracts text from the staged upload at path, parses skills,
// experience and education out of it, and stores the résumé. The returned
// Resume carries the assigned id.
func (s *ResumeService) Ingest(ctx domain.Context, fileName, path string) (domain.Resume, error) {
	text, err := s.Extractor.ExtractPath(ctx, fileName, path)
	if err != nil {
		return domain.Resume{}, fmt.Errorf("op=resume.Ingest extract: %w", err)
	}
	text = textx.SanitizeText(text)
	if strings.TrimSpace(text) == "" {
		return domain.Resume{}, fmt.Errorf("no text could be extracted from %s: %w", fileName, domain.ErrInvalidArgument)
	}

	skills := resumeparse.Skills(text)
	experience := resumeparse.Experience(text)
	education := resumeparse.Education(text)

	r := domain.Resume{
		Filename:   fileName,
		Content:    text,
		Skills:     skills,
		Experience: experience,
		Education:  education,
		ParsedData: map[string]any{
			"skills":     skills,
			"experience": experience,
			"education":  education,
		},
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.Repo.Create(ctx, r)
	if err != nil {
		return domain.Resume{}, fmt.Errorf("op=resume.Ingest: %w", err)
	}
	r.ID = id
	return r, nil
}

// Get loads a stored résumé by id.
func (s *ResumeService) Get(ctx domain.Context, id string) (domain.Resume, error) {
	if id == "" {
		return domain.Resume{}, fmt.Errorf("resume id required: %w", domain.ErrInvalidArgument)
	}
	r, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.Resume{}, fmt.Errorf("op=resume.Get: %w", err)
	}
	return r, nil
}

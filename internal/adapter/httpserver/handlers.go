package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Resumes    *usecase.ResumeService
	Questions  *usecase.QuestionService
	Interviews *usecase.InterviewService
	Turns      *usecase.TurnController
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
	TikaCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, resumes *usecase.ResumeService, questions *usecase.QuestionService, interviews *usecase.InterviewService, turns *usecase.TurnController, dbCheck, redisCheck, tikaCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Resumes: resumes, Questions: questions, Interviews: interviews, Turns: turns, DBCheck: dbCheck, RedisCheck: redisCheck, TikaCheck: tikaCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// allowedExt enforces an allowlist for résumé uploads: .pdf, .docx, .txt
func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx") || strings.HasSuffix(n, ".txt")
}

func allowedMIMEFor(m, filename string) bool {
	m = strings.ToLower(m)
	// Some detectors misclassify rich text files as text/html.
	if strings.HasSuffix(strings.ToLower(filename), ".txt") && strings.HasPrefix(m, "text/") {
		return true
	}
	if strings.HasPrefix(m, "text/plain") {
		return true
	}
	return m == "application/pdf" || m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// UploadResumeHandler handles multipart upload of a résumé file.
func (s *Server) UploadResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file required", domain.ErrInvalidArgument), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()

		if !allowedExt(header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (extension)",
				Details: map[string]any{"filename": header.Filename},
			}})
			return
		}

		// Stage the upload so the extractor can read it by path; sniff the
		// content while copying.
		tmp, err := os.CreateTemp("", "resume-*"+strings.ToLower(filepath.Ext(header.Filename)))
		if err != nil {
			writeError(w, r, fmt.Errorf("stage upload: %w", err), nil)
			return
		}
		defer func() { _ = os.Remove(tmp.Name()); _ = tmp.Close() }()

		mtype, err := mimetype.DetectReader(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: sniff: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if !allowedMIMEFor(mtype.String(), header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (content)",
				Details: map[string]any{"mime": mtype.String(), "filename": header.Filename},
			}})
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			writeError(w, r, fmt.Errorf("rewind upload: %w", err), nil)
			return
		}
		if _, err := tmp.ReadFrom(file); err != nil {
			writeError(w, r, fmt.Errorf("stage upload: %w", err), nil)
			return
		}

		resume, err := s.Resumes.Ingest(r.Context(), header.Filename, tmp.Name())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		preview := resume.Content
		if len(preview) > 200 {
			preview = preview[:200]
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Resume uploaded successfully",
			"resume_id":  resume.ID,
			"skills":     resume.Skills,
			"experience": resume.Experience,
			"education":  resume.Education,
			"preview":    preview + "...",
		})
	}
}

// GetResumeHandler returns a stored résumé document.
func (s *Server) GetResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resume, err := s.Resumes.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, resume)
	}
}

// GenerateQuestionsHandler builds a question set from a résumé and creates
// a ready interview session.
func (s *Server) GenerateQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			Difficulty      string   `json:"difficulty" validate:"omitempty,oneof=entry mid senior"`
			QuestionTypes   []string `json:"question_types" validate:"omitempty,dive,oneof=technical behavioral experience situational"`
			NumQuestions    int      `json:"num_questions" validate:"omitempty,min=1,max=20"`
			DurationMinutes int      `json:"duration_minutes" validate:"omitempty,min=1,max=180"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			if ve, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}

		cfg := domain.InterviewConfig{
			Difficulty:      domain.DifficultyLevel(req.Difficulty),
			NumQuestions:    req.NumQuestions,
			DurationMinutes: req.DurationMinutes,
		}
		for _, qt := range req.QuestionTypes {
			cfg.QuestionTypes = append(cfg.QuestionTypes, domain.QuestionType(qt))
		}
		session, err := s.Questions.CreateSession(r.Context(), chi.URLParam(r, "id"), cfg)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"interview_id":       session.ID,
			"questions":          session.Questions,
			"total_questions":    len(session.Questions),
			"estimated_duration": req.DurationMinutes,
		})
	}
}

// GetInterviewHandler returns a session document.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// GetQuestionHandler returns the question at an index within a session.
func (s *Server) GetQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: index must be an integer", domain.ErrInvalidArgument), nil)
			return
		}
		page, err := s.Interviews.QuestionAt(r.Context(), chi.URLParam(r, "id"), index)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if page.Exhausted {
			writeJSON(w, http.StatusOK, map[string]any{"message": "No more questions", "completed": true})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"question":        page.Question,
			"question_number": page.Number,
			"total_questions": page.Total,
			"is_last":         page.IsLast,
		})
	}
}

// StartInterviewHandler marks a session in progress.
func (s *Server) StartInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Interviews.Start(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Interview started", "status": string(domain.SessionInProgress)})
	}
}

// SubmitResponseHandler records and analyzes a direct answer to one question.
func (s *Server) SubmitResponseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			QuestionID   string `json:"question_id" validate:"required"`
			UserResponse string `json:"user_response" validate:"required"`
			ResponseTime int    `json:"response_time" validate:"omitempty,min=0"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			if ve, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		rec, err := s.Interviews.SubmitResponse(r.Context(), chi.URLParam(r, "id"), req.QuestionID, req.UserResponse, req.ResponseTime)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":             "Response recorded",
			"analysis":            rec.Analysis,
			"follow_up_needed":    rec.Analysis.FollowUpNeeded,
			"suggested_follow_up": rec.Analysis.SuggestedFollowUp,
		})
	}
}

// CompleteInterviewHandler marks a session completed.
func (s *Server) CompleteInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Interviews.Complete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Interview completed"})
	}
}

// StartVoiceHandler activates the conversational flow for a session.
func (s *Server) StartVoiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Turns.Start(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":          res.Message,
			"current_question": res.CurrentQuestion,
			"question_index":   res.QuestionIndex,
			"total_questions":  res.TotalQuestions,
		})
	}
}

// turnResponse is the wire shape of one processed conversational turn.
type turnResponse struct {
	Conversation         []domain.TurnEvent `json:"conversation"`
	AIResponse           string             `json:"ai_response"`
	ContinueSameQuestion bool               `json:"continue_same_question,omitempty"`
	HasFollowUp          bool               `json:"has_follow_up"`
	FollowUpQuestion     string             `json:"follow_up_question,omitempty"`
	NextQuestion         *domain.Question   `json:"next_question,omitempty"`
	QuestionIndex        int                `json:"question_index"`
	TransitionMessage    string             `json:"transition_message,omitempty"`
	InterviewCompleted   bool               `json:"interview_completed,omitempty"`
	CompletionMessage    string             `json:"completion_message,omitempty"`
}

// SubmitTurnHandler processes one user utterance in the conversational flow.
func (s *Server) SubmitTurnHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			Response     string `json:"response" validate:"required"`
			ResponseTime int    `json:"response_time" validate:"omitempty,min=0"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if strings.TrimSpace(req.Response) == "" {
			writeError(w, r, fmt.Errorf("%w: empty response", domain.ErrInvalidArgument), map[string]string{"field": "response"})
			return
		}
		res, err := s.Turns.SubmitTurn(r.Context(), chi.URLParam(r, "id"), req.Response, req.ResponseTime)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, turnResponse{
			Conversation:         res.Conversation,
			AIResponse:           res.AIResponse,
			ContinueSameQuestion: res.ContinueSameQuestion,
			HasFollowUp:          res.HasFollowUp,
			FollowUpQuestion:     res.FollowUpQuestion,
			NextQuestion:         res.NextQuestion,
			QuestionIndex:        res.QuestionIndex,
			TransitionMessage:    res.TransitionMessage,
			InterviewCompleted:   res.InterviewCompleted,
			CompletionMessage:    res.CompletionMessage,
		})
	}
}

// GetTranscriptHandler returns the session transcript, live or persisted.
func (s *Server) GetTranscriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.Turns.GetTranscript(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if events == nil {
			events = []domain.TurnEvent{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"conversation": events})
	}
}

// CompleteVoiceHandler tears down an active conversational session.
func (s *Server) CompleteVoiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.Turns.Complete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if !ok {
			writeError(w, r, fmt.Errorf("no active voice session: %w", domain.ErrNotFound), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Voice interview completed successfully"})
	}
}

// ReadyzHandler returns a readiness handler that probes DB, Redis and Tika.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 3)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, check{Name: "redis", Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "redis", OK: true})
			}
		}
		if s.TikaCheck != nil {
			if err := s.TikaCheck(ctx); err != nil {
				checks = append(checks, check{Name: "tika", Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "tika", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

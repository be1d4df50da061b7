package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/session"
	"github.com/abhisek/mathstudent/internal/sharecode"
	"github.com/abhisek/mathstudent/internal/trainer"
)

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode error response", "error", err)
	}
}

// respondTrainerError maps trainer errors to HTTP statuses.
func (s *Server) respondTrainerError(w http.ResponseWriter, err error) {
	var (
		incompatible *progress.ErrIncompatibleVersion
		malformed    *sharecode.ErrMalformed
	)
	switch {
	case errors.Is(err, trainer.ErrUnknownBlock):
		s.respondError(w, http.StatusNotFound, "unknown_block", err.Error())
	case errors.Is(err, trainer.ErrUnknownTask):
		s.respondError(w, http.StatusNotFound, "unknown_task", err.Error())
	case errors.Is(err, trainer.ErrLevelLocked):
		s.respondError(w, http.StatusForbidden, "level_locked", err.Error())
	case errors.Is(err, trainer.ErrNoTasksAvailable):
		s.respondError(w, http.StatusConflict, "no_tasks", err.Error())
	case errors.Is(err, trainer.ErrNoActiveSession), errors.Is(err, session.ErrNotInProgress):
		s.respondError(w, http.StatusConflict, "no_active_session", err.Error())
	case errors.Is(err, session.ErrTaskMismatch):
		s.respondError(w, http.StatusConflict, "task_mismatch", err.Error())
	case errors.Is(err, grading.ErrResponseMismatch),
		errors.Is(err, grading.ErrStepNotSelectable),
		errors.Is(err, grading.ErrIncomplete),
		errors.Is(err, grading.ErrInvalidResponse):
		s.respondError(w, http.StatusBadRequest, "invalid_response", err.Error())
	case errors.As(err, &incompatible):
		s.respondError(w, http.StatusConflict, "incompatible_version", err.Error())
	case errors.As(err, &malformed):
		s.respondError(w, http.StatusBadRequest, "malformed_share_code", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Progress handlers

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.trainer.Dashboard())
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.trainer.Badges())
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.trainer.Notices())
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_id", "notice id must be a number")
		return
	}
	s.trainer.DismissNotice(id)
	w.WriteHeader(http.StatusNoContent)
}

// ShareCodeRequest is the body of POST /share-code.
type ShareCodeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	code, err := s.trainer.Export()
	if err != nil {
		s.respondTrainerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ShareCodeRequest{Code: code})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req ShareCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}
	if err := s.trainer.Import(r.Context(), req.Code); err != nil {
		s.respondTrainerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.trainer.Dashboard())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.trainer.Reset(r.Context()); err != nil {
		s.respondTrainerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.trainer.Dashboard())
}

// Session handlers

// StartSessionRequest is the body of POST /sessions. Level 0 selects the
// block's highest unlocked level.
type StartSessionRequest struct {
	BlockID string `json:"blockId"`
	Level   int    `json:"level"`
}

// AnswerRequest is the body of POST /session/answers. Response is decoded
// according to the type of the current task.
type AnswerRequest struct {
	TaskID   catalog.TaskID  `json:"taskId"`
	Response json.RawMessage `json:"response"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.BlockID == "" {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "blockId is required")
		return
	}

	sess, err := s.trainer.StartSession(r.Context(), req.BlockID, req.Level)
	if err != nil {
		s.respondTrainerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, newSessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.trainer.Session()
	if sess == nil {
		s.respondTrainerError(w, trainer.ErrNoActiveSession)
		return
	}
	s.respondJSON(w, http.StatusOK, newSessionView(sess))
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	s.trainer.Abandon(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	task, ok := s.trainer.CurrentTask()
	if !ok {
		s.respondTrainerError(w, trainer.ErrNoActiveSession)
		return
	}
	if req.TaskID == "" {
		req.TaskID = task.ID
	}
	resp, err := grading.DecodeResponse(task.Kind(), req.Response)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_response", err.Error())
		return
	}

	out, err := s.trainer.Submit(r.Context(), req.TaskID, resp)
	if err != nil {
		s.respondTrainerError(w, err)
		return
	}
	if out.Summary != nil {
		s.trainer.Finish()
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "blockId")
	taskID := catalog.TaskID(chi.URLParam(r, "taskId"))

	hints, err := s.trainer.Hints(r.Context(), blockID, taskID)
	if err != nil {
		s.respondTrainerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"taskId": taskID,
		"hints":  hints,
	})
}

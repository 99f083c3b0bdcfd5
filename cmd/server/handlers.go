package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/jobmargin/internal/auth"
	"github.com/Simplici0/jobmargin/internal/costing"
	"github.com/Simplici0/jobmargin/internal/jobs"
)

// writeJSON encodes body before touching the response, so a failed encode leaves w unwritten.
func writeJSON(w http.ResponseWriter, status int, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
	return nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, map[string]string{"error": message})
}

func (s *server) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := writeJSON(w, status, body); err != nil {
		s.fail(w, r, err)
	}
}

// decodeJSON reads a bounded JSON body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// fail maps a service error to a status. Unexpected errors are logged and hidden from the client.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *jobs.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, jobs.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, jobs.ErrNoOwner):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func ownerID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.OwnerID
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		s.respond(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Enabled() {
		writeError(w, http.StatusNotImplemented, "Sessions are disabled")
		return
	}
	owner := ownerID(r)
	s.sessions.SetCookie(w, owner, s.secure)
	s.respond(w, r, http.StatusOK, map[string]string{"owner_id": owner})
}

func (s *server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleJobsList(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.ListWithMargin(r.Context(), ownerID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"jobs": list})
}

func (s *server) handleJobsCreate(w http.ResponseWriter, r *http.Request) {
	var in jobs.CreateJobInput
	if !decodeJSON(w, r, &in) {
		return
	}

	job, err := s.jobs.CreateJob(r.Context(), ownerID(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"job": job})
}

func (s *server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.jobs.JobDetail(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, detail)
}

func (s *server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status costing.Status `json:"status"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	job, err := s.jobs.SetStatus(r.Context(), ownerID(r), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"job": job})
}

func (s *server) handleLaborCreate(w http.ResponseWriter, r *http.Request) {
	var in jobs.AddLaborInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.JobID = chi.URLParam(r, "id")

	entry, err := s.jobs.AddLabor(r.Context(), ownerID(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"labor": entry})
}

func (s *server) handleLaborDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.RemoveLabor(r.Context(), ownerID(r), chi.URLParam(r, "id"), chi.URLParam(r, "entryID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMaterialsCreate(w http.ResponseWriter, r *http.Request) {
	var in jobs.AddMaterialInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.JobID = chi.URLParam(r, "id")

	entry, err := s.jobs.AddMaterial(r.Context(), ownerID(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"material": entry})
}

func (s *server) handleMaterialsDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.RemoveMaterial(r.Context(), ownerID(r), chi.URLParam(r, "id"), chi.URLParam(r, "entryID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.jobs.Stats(r.Context(), ownerID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, stats)
}

func (s *server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.jobs.MonthlyReport(r.Context(), ownerID(r), r.URL.Query().Get("month"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, report)
}

// handleRPC serves the tool-call endpoint. Notifications are acknowledged with 202 and no body.
func (s *server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		body = nil
	}

	caller, _ := auth.FromContext(r.Context())
	resp, ok := s.rpc.Handle(r.Context(), caller, body)
	if !ok {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.respond(w, r, http.StatusOK, resp)
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mytodo/internal/service"
	"mytodo/internal/storage"
)

const maxIDLength = 64

type createTaskRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type updateTaskRequest struct {
	Completed *bool   `json:"completed"`
	Text      *string `json:"text"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, service.Session{Login: u.Login})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSession(r.Context(), tokenFromContext(r.Context())); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	tasks, err := s.store.ListTasks(r.Context(), u.ID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ID) > maxIDLength {
		writeError(w, http.StatusBadRequest, "id too long")
		return
	}

	t, err := s.store.InsertTask(r.Context(), u.ID, req.ID, req.Text)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.broker.Publish(u.ID, service.ChangeEvent{Type: service.ChangeInsert, Record: &t})
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := s.store.UpdateTask(r.Context(), u.ID, id, storage.TaskPatch{Completed: req.Completed, Text: req.Text})
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.broker.Publish(u.ID, service.ChangeEvent{Type: service.ChangeUpdate, Record: &t})
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteTask(r.Context(), u.ID, id); err != nil {
		s.storeError(w, err)
		return
	}
	s.broker.Publish(u.ID, service.ChangeEvent{Type: service.ChangeDelete, OldID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("store error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

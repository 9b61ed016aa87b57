package server

import (
	"encoding/json"
	"net/http"

	"mytodo/internal/praise"
)

// PraiseRequest is the body of POST /api/praise.
type PraiseRequest struct {
	TaskText   string `json:"taskText"`
	LevelTitle string `json:"levelTitle"`
}

// PraiseResponse is returned on success and, with the fallback text, on failure.
type PraiseResponse struct {
	Message string `json:"message"`
}

func (s *Server) handlePraise(w http.ResponseWriter, r *http.Request) {
	var req PraiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("praise request body invalid", "error", err)
		writeJSON(w, http.StatusInternalServerError, PraiseResponse{Message: praise.Fallback})
		return
	}

	msg, ok := s.praise.Generate(r.Context(), req.TaskText, req.LevelTitle)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, PraiseResponse{Message: msg})
		return
	}
	writeJSON(w, http.StatusOK, PraiseResponse{Message: msg})
}

package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type invalidateRequest struct {
	Principal string `json:"principal,omitempty"`
	Handle    string `json:"handle,omitempty"`
}

type invalidateResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Entries())
}

// handleInvalidateSessions ends every session of a principal, or one session
// by handle.
func (s *Server) handleInvalidateSessions(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body.")
		return
	}

	principal := strings.TrimSpace(req.Principal)
	handle := strings.TrimSpace(req.Handle)

	removed := 0
	switch {
	case principal != "":
		removed = len(s.sessions.RemovePrincipal(principal))
	case handle != "":
		if _, ok := s.sessions.Remove(handle); ok {
			removed = 1
		}
	default:
		writeError(w, http.StatusBadRequest, "principal or handle is required.")
		return
	}

	if e, ok := sessionFrom(r.Context()); ok {
		s.logger.Printf("admin %s invalidated %d session(s) principal=%q", e.Principal, removed, principal)
	}
	writeJSON(w, http.StatusOK, invalidateResponse{Removed: removed})
}

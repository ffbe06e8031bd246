package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/service"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Message: message})
}

// classify maps a service error to an HTTP status, a client-safe message and
// a metrics outcome label.
func classify(err error) (int, string, string) {
	var fe *service.FieldError
	msg := ""
	if errors.As(err, &fe) {
		msg = fe.Message
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, msg, "not_found"
	case errors.Is(err, service.ErrFormat):
		return http.StatusBadRequest, msg, "format"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, msg, "validation"
	default:
		return http.StatusInternalServerError, "Unexpected server error.", "error"
	}
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/labshaker/internal/booking"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

type conflictResponse struct {
	Error string `json:"error"`
	booking.Availability
}

// serviceError maps an error from the booking service to a response.
// Unexpected errors are logged under action and reported as 500.
func serviceError(w http.ResponseWriter, err error, action string) {
	var verr *booking.ValidationError
	var cerr *booking.ConflictError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &cerr):
		jsonResponse(w, http.StatusConflict, conflictResponse{Error: cerr.Error(), Availability: cerr.Availability})
	case errors.Is(err, booking.ErrDeviceNotFound):
		jsonError(w, http.StatusNotFound, "device not found")
	case errors.Is(err, booking.ErrReservationNotFound):
		jsonError(w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, booking.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error(action, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/abdullah0300/fleet-management-sub001/internal/service"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("err", err))
	}
}

// writeError emits the error-body shape clients key off of.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, map[string]string{"error": msg}, status)
}

// writeServiceError maps service-layer errors onto HTTP responses. Unknown
// errors become opaque 500s.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, service.ErrMissingCoordinates):
		writeError(w, "Missing latitude/longitude", http.StatusBadRequest)
	case errors.Is(err, service.ErrNoVehicleAssigned):
		writeError(w, "No vehicle assigned to this driver", http.StatusNotFound)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, "Not found", http.StatusNotFound)
	case errors.As(err, &verr):
		writeError(w, verr.Error(), http.StatusBadRequest)
	default:
		logger.Error("request failed", slog.Any("err", err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tuicubserv/apperr"
)

// errorBody is the shape of every non-2xx response.
type errorBody struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, log *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("write response", zap.Error(err))
		return
	}
	log.Info("request", zap.Int("status", status))
}

// respondError maps an error onto its status and message. Anything outside
// the application error space is a 500 and logs the raw error.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Error("request failed", zap.Error(err), zap.Int("status", http.StatusInternalServerError))
		writeError(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	log.Warn("request failed",
		zap.String("error_name", appErr.Name),
		zap.Any("info", appErr.Info),
		zap.Int("status", appErr.Status),
	)
	writeError(w, appErr.Status, appErr.Message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Message: message})
}

func apperrInvalidID(value string) error {
	return apperr.InvalidIdentifier().WithInfo(map[string]any{"value": value})
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := mapError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// mapError translates domain sentinel errors into HTTP status codes.
// Unrecognised errors are treated as internal failures.
func mapError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidEventType),
		errors.Is(err, domain.ErrInvalidUserID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPublishFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

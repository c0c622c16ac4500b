package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/service"
)

// EventHandler is the ingress used by the rest of the CRM to hand
// domain events to the notification pipeline. Publishing is synchronous:
// a broker failure surfaces here so the caller can react.
type EventHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewEventHandler(svc *service.NotificationService, logger *zap.Logger) *EventHandler {
	return &EventHandler{svc: svc, logger: logger}
}

type acceptedResponse struct {
	MessageID string `json:"message_id"`
}

// PublishComment handles POST /api/v1/events/comment.
func (h *EventHandler) PublishComment(w http.ResponseWriter, r *http.Request) {
	var msg domain.CommentMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.svc.PublishComment(r.Context(), &msg); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusAccepted, acceptedResponse{MessageID: msg.MessageID})
}

// PublishTask handles POST /api/v1/events/task.
func (h *EventHandler) PublishTask(w http.ResponseWriter, r *http.Request) {
	var msg domain.TaskMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.svc.PublishTask(r.Context(), &msg); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusAccepted, acceptedResponse{MessageID: msg.MessageID})
}

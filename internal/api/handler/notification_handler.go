package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/service"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// NotificationHandler serves the notification read-side: listing a user's
// inbox and flipping the read/dismissed flags.
type NotificationHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

type listResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Total         int                    `json:"total"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
}

// List handles GET /api/v1/notifications?user_id=...&unread=true&page=1&limit=20.
// Dismissed notifications are never returned.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.ListFilter{
		UserID:     q.Get("user_id"),
		UnreadOnly: q.Get("unread") == "true",
		Page:       queryInt(q.Get("page"), defaultPage),
		Limit:      queryInt(q.Get("limit"), defaultLimit),
	}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 || filter.Limit > maxLimit {
		filter.Limit = defaultLimit
	}

	notifications, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}

	respondJSON(w, http.StatusOK, listResponse{
		Notifications: notifications,
		Total:         total,
		Page:          filter.Page,
		Limit:         filter.Limit,
	})
}

// MarkRead handles POST /api/v1/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.MarkRead(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Dismiss handles POST /api/v1/notifications/{id}/dismiss.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Dismiss(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

package handler

import (
	"net/http"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/middleware"
	"coworking-reservation-server/internal/repository"
	"coworking-reservation-server/pkg/response"
)

type NotificationHandler struct {
	repo repository.NotificationRepository
}

// NewNotificationHandler serves the caller's notification log. A nil repo
// means the log is not configured and every listing is empty.
func NewNotificationHandler(repo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		response.Success(w, []*domain.Notification{})
		return
	}

	notifications, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, notifications)
}

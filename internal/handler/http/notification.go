package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/worknest/intranet-backend-go/internal/handler/http/response"
	notificationService "github.com/worknest/intranet-backend-go/internal/service/notification"
)

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
	MarkAllRead(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
}

type NotificationHandlerImpl struct {
	notifications *notificationService.Service
}

func NewNotificationHandler(notifications *notificationService.Service) NotificationHandler {
	return &NotificationHandlerImpl{notifications: notifications}
}

// List implements NotificationHandler.
func (h *NotificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	result, err := h.notifications.List(r.Context(), userID, unreadOnly)
	if err != nil {
		slog.Error("List notifications error", "error", err, "recipient_id", userID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MarkRead implements NotificationHandler.
func (h *NotificationHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if len(body.IDs) == 0 {
		response.BadRequest(w, "ids is required", nil)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), userID, body.IDs); err != nil {
		slog.Error("MarkRead error", "error", err, "recipient_id", userID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

// MarkAllRead implements NotificationHandler.
func (h *NotificationHandlerImpl) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), userID); err != nil {
		slog.Error("MarkAllRead error", "error", err, "recipient_id", userID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

// UnreadCount implements NotificationHandler.
func (h *NotificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		slog.Error("UnreadCount error", "error", err, "recipient_id", userID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]int{"unread": count})
}

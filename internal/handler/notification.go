package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"threadboard/internal/httputil"
	"threadboard/internal/model"
	"threadboard/internal/service"
	"threadboard/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notifService *service.NotificationService
}

func NewNotificationHandler(notifService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
	}
}

// List handles GET /notifications?page=&limit=
// Returns the authenticated user's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid page parameter")
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultNotificationPageLimit)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	notifications, err := h.notifService.List(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("[ERROR] List notifications: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, notifications)
}

// GetUnreadCount handles GET /notifications/unread-count
// Returns the count of unread notifications (for badge display).
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	count, err := h.notifService.UnreadCount(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] Get unread count: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get unread count")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{
		"unread_count": count,
	})
}

// MarkRead handles PATCH /notifications/{id}/read
// Marks one notification as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	notificationID := chi.URLParam(r, "id")

	notification, err := h.notifService.MarkRead(r.Context(), notificationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotificationNotFound):
			httputil.WriteNotFound(w, "Notification not found")
		case errors.Is(err, model.ErrNotNotificationOwner):
			httputil.WriteForbidden(w, "You can only mark your own notifications as read")
		default:
			log.Printf("[ERROR] Mark notification read: user=%s notification=%s err=%v", userID, notificationID, err)
			httputil.WriteInternalError(w, "Failed to mark notification as read")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, notification)
}

// MarkAllRead handles POST /notifications/read-all
// Marks all notifications as read for the authenticated user.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	err := h.notifService.MarkAllRead(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] Mark all notifications read: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to mark all notifications as read")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "All notifications marked as read",
	})
}

package model

import (
	"errors"
	"time"
)

// Notification types. Reply notifications are the only kind today.
const (
	NotificationTypeCommentReply = "comment_reply"
)

// Notification represents a single notification record in the database.
// Message is pre-rendered at creation time from the replier's name.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	UserID    string    `db:"user_id" json:"-"` // Recipient
	CommentID string    `db:"comment_id" json:"comment_id"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationListResponse is the paginated notification list response.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	TotalPages    int            `json:"total_pages"`
}

// Notification errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("not the owner of this notification")
)

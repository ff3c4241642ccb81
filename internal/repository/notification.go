package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"threadboard/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Insert persists a new notification.
func (r *notificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	n.ID = uuid.NewString()

	query := `
		INSERT INTO notifications (id, type, message, user_id, comment_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.Type, n.Message, n.UserID, n.CommentID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// FindByUser returns a page of the user's notifications, newest first.
func (r *notificationRepository) FindByUser(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int, error) {
	query := `
		SELECT id, type, message, user_id, comment_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`
	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, offset, limit); err != nil {
		return nil, 0, fmt.Errorf("get notifications: %w", err)
	}

	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	return notifications, total, nil
}

// CountUnread returns the count of unread notifications.
func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification read. The user_id condition keeps users
// from touching notifications that are not theirs.
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING id, type, message, user_id, comment_id, is_read, created_at
	`
	var n model.Notification
	err := r.db.GetContext(ctx, &n, query, notificationID, userID)
	if err == sql.ErrNoRows {
		// Check if the notification exists but belongs to a different user
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, notificationID); err != nil {
			return nil, fmt.Errorf("check notification exists: %w", err)
		}
		if exists {
			return nil, model.ErrNotNotificationOwner
		}
		return nil, model.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}

// MarkAllRead marks all notifications for a user as read. Idempotent.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"threadboard/internal/model"
)

type CommentRepository interface {
	// Insert persists a new comment, assigning its id.
	Insert(ctx context.Context, comment *model.Comment) error
	// GetByID retrieves a single comment with its author joined.
	GetByID(ctx context.Context, commentID string) (*model.Comment, error)
	// UpdateContent replaces the content of a live comment and marks it edited.
	// Fails with ErrCommentDeleted if the row was deleted by a competing write.
	UpdateContent(ctx context.Context, commentID, content string, now time.Time) (*model.Comment, error)
	// MarkDeleted soft-deletes a live comment.
	MarkDeleted(ctx context.Context, commentID string, now time.Time) (*model.Comment, error)
	// Restore clears the tombstone of a deleted comment.
	Restore(ctx context.Context, commentID string, now time.Time) (*model.Comment, error)
	// FindRoots returns a page of root comments (newest first) plus the total
	// number of roots.
	FindRoots(ctx context.Context, offset, limit int) ([]*model.Comment, int, error)
	// FindChildren returns the immediate replies of one comment, oldest first.
	FindChildren(ctx context.Context, parentID string) ([]*model.Comment, error)
	// FindChildrenOf returns the immediate replies of a set of comments in one
	// query, oldest first. Used by the tree assembler to fetch a whole level.
	FindChildrenOf(ctx context.Context, parentIDs []string) ([]*model.Comment, error)
}

type NotificationRepository interface {
	// Insert persists a new notification, assigning its id.
	Insert(ctx context.Context, notification *model.Notification) error
	// FindByUser returns a page of the user's notifications (newest first)
	// plus the total count.
	FindByUser(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int, error)
	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkRead marks one notification read; the notification must belong to
	// userID.
	MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error)
	// MarkAllRead marks every unread notification for a user as read.
	MarkAllRead(ctx context.Context, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

package service

import (
	"context"
	"log"
	"time"

	"threadboard/internal/cache"
	"threadboard/internal/model"
	"threadboard/internal/repository"
)

// Pagination defaults for notification listings.
const (
	DefaultNotificationPageLimit = 10
	MaxNotificationPageLimit     = 50
)

// NotificationService handles the reply-notification inbox: durably recorded,
// pollable, never pushed. The unread cache is optional; with a nil cache
// every count goes to the database.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	unread    cache.UnreadCounts // Can be nil if redis not configured
}

func NewNotificationService(notifRepo repository.NotificationRepository, unread cache.UnreadCounts) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		unread:    unread,
	}
}

// CreateReplyNotification records a notification for the author of a comment
// that just received a reply. Called by CommentService after the reply is
// durable; createdAt is the caller's clock reading so the pair share one
// instant.
func (s *NotificationService) CreateReplyNotification(ctx context.Context, recipientID, commentID, replierName string, createdAt time.Time) error {
	notification := &model.Notification{
		Type:      model.NotificationTypeCommentReply,
		Message:   replierName + " replied to your comment",
		UserID:    recipientID,
		CommentID: commentID,
		CreatedAt: createdAt,
	}
	if err := s.notifRepo.Insert(ctx, notification); err != nil {
		return err
	}

	s.invalidateUnread(ctx, recipientID)
	return nil
}

// List returns a page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, page, limit int) (*model.NotificationListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultNotificationPageLimit
	}
	if limit > MaxNotificationPageLimit {
		limit = MaxNotificationPageLimit
	}

	offset := (page - 1) * limit
	notifications, total, err := s.notifRepo.FindByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &model.NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		TotalPages:    totalPages,
	}, nil
}

// UnreadCount returns the number of unread notifications (for badge display).
// Cache failures fall through to the database.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.unread != nil {
		count, found, err := s.unread.Get(ctx, userID)
		if err != nil {
			log.Printf("[NotificationService] Unread cache read failed for user %s: %v", userID, err)
		} else if found {
			return count, nil
		}
	}

	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.unread != nil {
		if err := s.unread.Set(ctx, userID, count); err != nil {
			log.Printf("[NotificationService] Unread cache write failed for user %s: %v", userID, err)
		}
	}
	return count, nil
}

// MarkRead marks one notification as read. Fails when the notification does
// not exist or belongs to a different user.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	notification, err := s.notifRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}

	s.invalidateUnread(ctx, userID)
	return notification, nil
}

// MarkAllRead marks every notification for a user as read. Idempotent: a
// second call is a no-op, not an error.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return err
	}

	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID string) {
	if s.unread == nil {
		return
	}
	if err := s.unread.Invalidate(ctx, userID); err != nil {
		log.Printf("[NotificationService] Unread cache invalidation failed for user %s: %v", userID, err)
	}
}

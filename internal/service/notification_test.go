package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"threadboard/internal/model"
)

func seedNotifications(t *testing.T, repo *fakeNotificationRepo, userID string, n int, base time.Time) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		notification := &model.Notification{
			Type:      model.NotificationTypeCommentReply,
			Message:   "someone replied to your comment",
			UserID:    userID,
			CommentID: "comment-1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(context.Background(), notification); err != nil {
			t.Fatalf("seed notification %d: %v", i, err)
		}
		ids = append(ids, notification.ID)
	}
	return ids
}

func TestNotificationService_List_NewestFirst(t *testing.T) {
	f := newFixture()
	base := f.clock.Now()
	ids := seedNotifications(t, f.notifRepo, "user-1", 3, base)

	resp, err := f.notifs.List(context.Background(), "user-1", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if len(resp.Notifications) != 3 {
		t.Fatalf("page size = %d, want 3", len(resp.Notifications))
	}
	// The last one seeded is the newest
	if resp.Notifications[0].ID != ids[2] {
		t.Errorf("first notification = %s, want %s", resp.Notifications[0].ID, ids[2])
	}
}

func TestNotificationService_List_Pagination(t *testing.T) {
	f := newFixture()
	seedNotifications(t, f.notifRepo, "user-1", 25, f.clock.Now())

	resp, err := f.notifs.List(context.Background(), "user-1", 3, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Default limit is 10, so page 3 holds the 5 oldest
	if len(resp.Notifications) != 5 {
		t.Errorf("page size = %d, want 5", len(resp.Notifications))
	}
	if resp.Total != 25 {
		t.Errorf("total = %d, want 25", resp.Total)
	}
	if resp.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", resp.TotalPages)
	}
}

func TestNotificationService_List_EmptyPage(t *testing.T) {
	f := newFixture()
	seedNotifications(t, f.notifRepo, "user-1", 2, f.clock.Now())

	resp, err := f.notifs.List(context.Background(), "user-1", 5, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Notifications) != 0 {
		t.Errorf("page size = %d, want 0", len(resp.Notifications))
	}
	if resp.Notifications == nil {
		t.Error("notifications should be an empty slice, not nil")
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}

func TestNotificationService_List_ScopedToUser(t *testing.T) {
	f := newFixture()
	seedNotifications(t, f.notifRepo, "user-1", 3, f.clock.Now())
	seedNotifications(t, f.notifRepo, "user-2", 2, f.clock.Now())

	resp, err := f.notifs.List(context.Background(), "user-2", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
	for _, n := range resp.Notifications {
		if n.UserID != "user-2" {
			t.Errorf("leaked notification for %s", n.UserID)
		}
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	f := newFixture()
	ids := seedNotifications(t, f.notifRepo, "user-1", 2, f.clock.Now())

	n, err := f.notifs.MarkRead(context.Background(), ids[0], "user-1")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !n.IsRead {
		t.Error("notification should be read")
	}

	count, err := f.notifs.UnreadCount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.notifs.MarkRead(context.Background(), "missing", "user-1")
	if !errors.Is(err, model.ErrNotificationNotFound) {
		t.Errorf("err = %v, want ErrNotificationNotFound", err)
	}
}

func TestNotificationService_MarkRead_NotOwner(t *testing.T) {
	f := newFixture()
	ids := seedNotifications(t, f.notifRepo, "user-1", 1, f.clock.Now())

	_, err := f.notifs.MarkRead(context.Background(), ids[0], "user-2")
	if !errors.Is(err, model.ErrNotNotificationOwner) {
		t.Errorf("err = %v, want ErrNotNotificationOwner", err)
	}

	// The notification is untouched
	count, _ := f.notifs.UnreadCount(context.Background(), "user-1")
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}
}

func TestNotificationService_MarkAllRead_Idempotent(t *testing.T) {
	f := newFixture()
	seedNotifications(t, f.notifRepo, "user-1", 3, f.clock.Now())
	seedNotifications(t, f.notifRepo, "user-2", 1, f.clock.Now())

	for i := 0; i < 2; i++ {
		if err := f.notifs.MarkAllRead(context.Background(), "user-1"); err != nil {
			t.Fatalf("mark all read (call %d): %v", i+1, err)
		}
	}

	count, err := f.notifs.UnreadCount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Errorf("unread = %d, want 0", count)
	}

	// Other users are untouched
	other, _ := f.notifs.UnreadCount(context.Background(), "user-2")
	if other != 1 {
		t.Errorf("user-2 unread = %d, want 1", other)
	}
}

func TestNotificationService_UnreadCount_CacheMissThenHit(t *testing.T) {
	repo := newFakeNotificationRepo()
	unread := newFakeUnreadCache()
	svc := NewNotificationService(repo, unread)
	seedNotifications(t, repo, "user-1", 4, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	count, err := svc.UnreadCount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
	if unread.setCalls != 1 {
		t.Errorf("cache writes = %d, want 1", unread.setCalls)
	}

	// Second read is served from the cache: no further writes
	if _, err := svc.UnreadCount(context.Background(), "user-1"); err != nil {
		t.Fatalf("unread count (cached): %v", err)
	}
	if unread.setCalls != 1 {
		t.Errorf("cache writes after hit = %d, want 1", unread.setCalls)
	}
}

func TestNotificationService_UnreadCount_InvalidatedOnChange(t *testing.T) {
	repo := newFakeNotificationRepo()
	unread := newFakeUnreadCache()
	svc := NewNotificationService(repo, unread)
	ids := seedNotifications(t, repo, "user-1", 2, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	// Warm the cache
	if _, err := svc.UnreadCount(context.Background(), "user-1"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	if _, err := svc.MarkRead(context.Background(), ids[0], "user-1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if unread.invalidated != 1 {
		t.Errorf("invalidations = %d, want 1", unread.invalidated)
	}

	count, err := svc.UnreadCount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (stale cache served?)", count)
	}
}

func TestNotificationService_CreateReplyNotification_InvalidatesCache(t *testing.T) {
	repo := newFakeNotificationRepo()
	unread := newFakeUnreadCache()
	svc := NewNotificationService(repo, unread)

	// Warm the cache with zero
	if _, err := svc.UnreadCount(context.Background(), "user-1"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	err := svc.CreateReplyNotification(context.Background(), "user-1", "comment-1", "Bob", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := svc.UnreadCount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

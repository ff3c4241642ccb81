package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"threadboard/internal/model"
)

// In-memory fakes standing in for the Postgres repositories. They mirror the
// real guard semantics (conditional mutations, owner checks) so the services
// exercise the same error paths they would against the database.

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// ---------------------------------------------------------------------------

type fakeCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment)}
}

func cloneComment(c *model.Comment) *model.Comment {
	cp := *c
	cp.Replies = nil
	cp.Author = &model.UserSummary{ID: c.AuthorID}
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}

func (f *fakeCommentRepo) Insert(ctx context.Context, c *model.Comment) error {
	f.nextID++
	c.ID = fmt.Sprintf("comment-%d", f.nextID)
	f.comments[c.ID] = cloneComment(c)
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	return cloneComment(c), nil
}

func (f *fakeCommentRepo) UpdateContent(ctx context.Context, id, content string, now time.Time) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	if c.IsDeleted {
		return nil, model.ErrCommentDeleted
	}
	c.Content = content
	c.IsEdited = true
	c.UpdatedAt = now
	return cloneComment(c), nil
}

func (f *fakeCommentRepo) MarkDeleted(ctx context.Context, id string, now time.Time) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	if c.IsDeleted {
		return nil, model.ErrAlreadyDeleted
	}
	c.IsDeleted = true
	deletedAt := now
	c.DeletedAt = &deletedAt
	c.UpdatedAt = now
	return cloneComment(c), nil
}

func (f *fakeCommentRepo) Restore(ctx context.Context, id string, now time.Time) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	if !c.IsDeleted {
		return nil, model.ErrCommentNotDeleted
	}
	c.IsDeleted = false
	c.DeletedAt = nil
	c.UpdatedAt = now
	return cloneComment(c), nil
}

func (f *fakeCommentRepo) FindRoots(ctx context.Context, offset, limit int) ([]*model.Comment, int, error) {
	var roots []*model.Comment
	for _, c := range f.comments {
		if c.ParentID == nil {
			roots = append(roots, cloneComment(c))
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if !roots[i].CreatedAt.Equal(roots[j].CreatedAt) {
			return roots[i].CreatedAt.After(roots[j].CreatedAt)
		}
		return roots[i].ID > roots[j].ID
	})

	total := len(roots)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return roots[offset:end], total, nil
}

func (f *fakeCommentRepo) FindChildren(ctx context.Context, parentID string) ([]*model.Comment, error) {
	return f.FindChildrenOf(ctx, []string{parentID})
}

func (f *fakeCommentRepo) FindChildrenOf(ctx context.Context, parentIDs []string) ([]*model.Comment, error) {
	parents := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}

	var children []*model.Comment
	for _, c := range f.comments {
		if c.ParentID != nil && parents[*c.ParentID] {
			children = append(children, cloneComment(c))
		}
	}
	sort.Slice(children, func(i, j int) bool {
		if !children[i].CreatedAt.Equal(children[j].CreatedAt) {
			return children[i].CreatedAt.Before(children[j].CreatedAt)
		}
		return children[i].ID < children[j].ID
	})
	return children, nil
}

// ---------------------------------------------------------------------------

type fakeNotificationRepo struct {
	notifications []model.Notification
	nextID        int

	insertErr error // when set, Insert fails
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	n.ID = fmt.Sprintf("notification-%d", f.nextID)
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) FindByUser(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int, error) {
	var owned []model.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			owned = append(owned, n)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID > owned[j].ID
	})

	total := len(owned)
	if offset >= total {
		return []model.Notification{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID {
			if f.notifications[i].UserID != userID {
				return nil, model.ErrNotNotificationOwner
			}
			f.notifications[i].IsRead = true
			n := f.notifications[i]
			return &n, nil
		}
	}
	return nil, model.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

// ---------------------------------------------------------------------------

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

// addUser seeds a user and returns its id.
func (f *fakeUserRepo) addUser(username, displayName string) string {
	f.nextID++
	id := fmt.Sprintf("user-%d", f.nextID)
	u := &model.User{ID: id, Username: username}
	if displayName != "" {
		u.DisplayName = &displayName
	}
	f.users[id] = u
	return id
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

// ---------------------------------------------------------------------------

type fakeUnreadCache struct {
	counts      map[string]int
	setCalls    int
	invalidated int
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{counts: make(map[string]int)}
}

func (f *fakeUnreadCache) Get(ctx context.Context, userID string) (int, bool, error) {
	count, ok := f.counts[userID]
	return count, ok, nil
}

func (f *fakeUnreadCache) Set(ctx context.Context, userID string, count int) error {
	f.setCalls++
	f.counts[userID] = count
	return nil
}

func (f *fakeUnreadCache) Invalidate(ctx context.Context, userID string) error {
	f.invalidated++
	delete(f.counts, userID)
	return nil
}

// ---------------------------------------------------------------------------

type fixture struct {
	clock       *fakeClock
	commentRepo *fakeCommentRepo
	notifRepo   *fakeNotificationRepo
	userRepo    *fakeUserRepo
	comments    *CommentService
	notifs      *NotificationService
}

func newFixture() *fixture {
	clk := newFakeClock()
	commentRepo := newFakeCommentRepo()
	notifRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo()
	notifs := NewNotificationService(notifRepo, nil)
	comments := NewCommentService(commentRepo, userRepo, notifs, clk)
	return &fixture{
		clock:       clk,
		commentRepo: commentRepo,
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		comments:    comments,
		notifs:      notifs,
	}
}

func strptr(s string) *string { return &s }

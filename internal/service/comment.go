package service

import (
	"context"
	"log"
	"strings"

	"threadboard/internal/clock"
	"threadboard/internal/model"
	"threadboard/internal/repository"
)

// Pagination defaults for root comment listings.
const (
	DefaultCommentPageLimit = 30
	MaxCommentPageLimit     = 100
)

// CommentService orchestrates the comment lifecycle: creation, time-boxed
// edits, soft delete/restore, and the reply notification side effect. It
// holds no state of its own; all persistence goes through the repositories.
type CommentService struct {
	commentRepo   repository.CommentRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	clock         clock.Clock
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	clk clock.Clock,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		userRepo:      userRepo,
		notifications: notifications,
		clock:         clk,
	}
}

// Create adds a root comment, or a reply when ParentID is set. Replying to a
// missing parent fails with ErrCommentNotFound, replying to a deleted parent
// with ErrParentDeleted. When the reply lands under someone else's comment, a
// notification is recorded for the parent's author; that write is best-effort
// and never undoes the already-persisted comment.
func (s *CommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	now := s.clock.Now()

	var parent *model.Comment
	if req.ParentID != nil {
		var err error
		parent, err = s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.IsDeleted {
			return nil, model.ErrParentDeleted
		}
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content:   content,
		AuthorID:  userID,
		ParentID:  req.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.commentRepo.Insert(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = author.Summary()
	comment.Replies = []*model.Comment{}
	comment.ApplyPermissions(now)

	log.Printf("[CommentService] User %s created comment %s (parent=%v)", userID, comment.ID, req.ParentID)

	// The comment is durable at this point. A failed notification is logged
	// and swallowed; it must not surface as the operation's error.
	if parent != nil && parent.AuthorID != userID {
		if err := s.notifications.CreateReplyNotification(ctx, parent.AuthorID, comment.ID, author.Name(), now); err != nil {
			log.Printf("[CommentService] Failed to create reply notification for user %s: %v", parent.AuthorID, err)
		}
	}

	return comment, nil
}

// Edit replaces a comment's content. Owner-only, and only while the comment
// is live and within the edit window of its creation. Editing never resets
// CreatedAt, so the window does not extend.
func (s *CommentService) Edit(ctx context.Context, commentID, userID string, req model.UpdateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	now := s.clock.Now()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, model.ErrNotCommentOwner
	}
	if comment.IsDeleted {
		return nil, model.ErrCommentDeleted
	}
	if !comment.EditableAt(now) {
		return nil, model.ErrEditWindowExpired
	}

	updated, err := s.commentRepo.UpdateContent(ctx, commentID, content, now)
	if err != nil {
		return nil, err
	}

	updated.Author = comment.Author
	updated.ApplyPermissions(now)

	log.Printf("[CommentService] User %s edited comment %s", userID, commentID)
	return updated, nil
}

// Delete soft-deletes a comment. Owner-only but never time-boxed; only the
// restore that may follow is.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) (*model.Comment, error) {
	now := s.clock.Now()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, model.ErrNotCommentOwner
	}
	if comment.IsDeleted {
		return nil, model.ErrAlreadyDeleted
	}

	deleted, err := s.commentRepo.MarkDeleted(ctx, commentID, now)
	if err != nil {
		return nil, err
	}

	deleted.Author = comment.Author
	deleted.ApplyPermissions(now)

	log.Printf("[CommentService] User %s deleted comment %s", userID, commentID)
	return deleted, nil
}

// Restore reverses a soft delete while the restore window is open. Once the
// window lapses the tombstone is permanent.
func (s *CommentService) Restore(ctx context.Context, commentID, userID string) (*model.Comment, error) {
	now := s.clock.Now()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, model.ErrNotCommentOwner
	}
	if !comment.IsDeleted {
		return nil, model.ErrCommentNotDeleted
	}
	if !comment.RestorableAt(now) {
		return nil, model.ErrRestoreWindowExpired
	}

	restored, err := s.commentRepo.Restore(ctx, commentID, now)
	if err != nil {
		return nil, err
	}

	restored.Author = comment.Author
	restored.ApplyPermissions(now)

	log.Printf("[CommentService] User %s restored comment %s", userID, commentID)
	return restored, nil
}

// Get returns one comment with its full reply subtree. Deleted nodes are
// returned as-is here; the tombstone fade applies only to root listings.
func (s *CommentService) Get(ctx context.Context, commentID string) (*model.Comment, error) {
	now := s.clock.Now()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if err := s.assembleReplies(ctx, []*model.Comment{comment}, now); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListRoots returns a page of root comments, newest first, each with its full
// reply tree. Soft-deleted roots whose restore window has lapsed fade out of
// the page, while Total keeps counting them; this mirrors how replies inside
// a visible thread keep showing their tombstones.
func (s *CommentService) ListRoots(ctx context.Context, page, limit int) (*model.CommentListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultCommentPageLimit
	}
	if limit > MaxCommentPageLimit {
		limit = MaxCommentPageLimit
	}

	now := s.clock.Now()
	offset := (page - 1) * limit

	roots, total, err := s.commentRepo.FindRoots(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Comment, 0, len(roots))
	for _, root := range roots {
		if root.IsDeleted && !root.RestorableAt(now) {
			continue
		}
		visible = append(visible, root)
	}

	if err := s.assembleReplies(ctx, visible, now); err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &model.CommentListResponse{
		Comments:   visible,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Replies returns the reply tree under one comment, oldest first at every
// level. Fails with ErrCommentNotFound if the parent does not exist.
func (s *CommentService) Replies(ctx context.Context, parentID string) ([]*model.Comment, error) {
	now := s.clock.Now()

	if _, err := s.commentRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}

	children, err := s.commentRepo.FindChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}

	if err := s.assembleReplies(ctx, children, now); err != nil {
		return nil, err
	}
	return children, nil
}

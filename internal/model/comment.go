package model

import (
	"errors"
	"time"
)

// Time windows for comment mutations. Editing is allowed for a fixed period
// after creation; a soft-deleted comment can be restored for a fixed period
// after deletion, then the tombstone becomes permanent.
const (
	EditWindow    = 15 * time.Minute
	RestoreWindow = 15 * time.Minute
)

// MaxCommentLength caps comment bodies.
const MaxCommentLength = 10000

// Comment represents a single comment in the reply tree. A nil ParentID marks
// a root comment. ParentID is immutable once set: a comment never moves.
type Comment struct {
	ID        string     `db:"id" json:"id"`
	Content   string     `db:"content" json:"content"`
	AuthorID  string     `db:"author_id" json:"-"`
	ParentID  *string    `db:"parent_id" json:"parent_id,omitempty"`
	IsDeleted bool       `db:"is_deleted" json:"is_deleted"`
	IsEdited  bool       `db:"is_edited" json:"is_edited"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`

	// Joined/assembled fields, never stored on the comments row.
	Author  *UserSummary `json:"author,omitempty"`
	Replies []*Comment   `json:"replies,omitempty"`

	// Derived at read time from the stored timestamps, never persisted.
	CanEdit    bool `json:"can_edit"`
	CanDelete  bool `json:"can_delete"`
	CanRestore bool `json:"can_restore"`
}

// EditableAt reports whether the comment content may still be changed at now.
func (c *Comment) EditableAt(now time.Time) bool {
	return !c.IsDeleted && now.Sub(c.CreatedAt) < EditWindow
}

// RestorableAt reports whether a soft delete may still be reversed at now.
func (c *Comment) RestorableAt(now time.Time) bool {
	return c.IsDeleted && c.DeletedAt != nil && now.Sub(*c.DeletedAt) < RestoreWindow
}

// ApplyPermissions fills the derived capability fields. Deletion itself is
// never time-boxed, only restoration is.
func (c *Comment) ApplyPermissions(now time.Time) {
	c.CanEdit = c.EditableAt(now)
	c.CanDelete = true
	c.CanRestore = c.RestorableAt(now)
}

// CreateCommentRequest is the request body for creating a comment or reply.
type CreateCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UpdateCommentRequest is the request body for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CommentListResponse is the paginated root comment listing. Total counts all
// root comments, including tombstones faded out of the page.
type CommentListResponse struct {
	Comments   []*Comment `json:"comments"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// Comment errors
var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotCommentOwner      = errors.New("not the owner of this comment")
	ErrContentRequired      = errors.New("comment content is required")
	ErrContentTooLong       = errors.New("comment content too long")
	ErrParentDeleted        = errors.New("cannot reply to a deleted comment")
	ErrCommentDeleted       = errors.New("comment is deleted")
	ErrAlreadyDeleted       = errors.New("comment is already deleted")
	ErrCommentNotDeleted    = errors.New("comment is not deleted")
	ErrEditWindowExpired    = errors.New("edit window has expired")
	ErrRestoreWindowExpired = errors.New("restore window has expired")
)

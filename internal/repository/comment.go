package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"threadboard/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// commentRow scans a comment joined with its author.
type commentRow struct {
	ID            string     `db:"id"`
	Content       string     `db:"content"`
	AuthorID      string     `db:"author_id"`
	ParentID      *string    `db:"parent_id"`
	IsDeleted     bool       `db:"is_deleted"`
	IsEdited      bool       `db:"is_edited"`
	DeletedAt     *time.Time `db:"deleted_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	JoinedID      string     `db:"author.id"`
	Username      string     `db:"author.username"`
	DisplayName   *string    `db:"author.display_name"`
}

func (row commentRow) toComment() *model.Comment {
	return &model.Comment{
		ID:        row.ID,
		Content:   row.Content,
		AuthorID:  row.AuthorID,
		ParentID:  row.ParentID,
		IsDeleted: row.IsDeleted,
		IsEdited:  row.IsEdited,
		DeletedAt: row.DeletedAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Author: &model.UserSummary{
			ID:          row.JoinedID,
			Username:    row.Username,
			DisplayName: row.DisplayName,
		},
	}
}

const commentSelect = `
	SELECT c.id, c.content, c.author_id, c.parent_id, c.is_deleted, c.is_edited,
	       c.deleted_at, c.created_at, c.updated_at,
	       u.id as "author.id", u.username as "author.username",
	       u.display_name as "author.display_name"
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

// Insert persists a new comment. The id is assigned here; timestamps come
// from the caller's single clock reading.
func (r *commentRepository) Insert(ctx context.Context, comment *model.Comment) error {
	comment.ID = uuid.NewString()

	query := `
		INSERT INTO comments (id, content, author_id, parent_id, is_deleted, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, FALSE, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.Content, comment.AuthorID, comment.ParentID,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetByID retrieves a single comment with its author.
func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	var row commentRow
	err := r.db.GetContext(ctx, &row, commentSelect+`WHERE c.id = $1`, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	c := row.toComment()
	return c, nil
}

// UpdateContent edits a live comment. The is_deleted guard makes competing
// mutations on the same row serialize inside Postgres: if a delete won the
// race, the update matches no row and we report the state error instead of
// silently overwriting.
func (r *commentRepository) UpdateContent(ctx context.Context, commentID, content string, now time.Time) (*model.Comment, error) {
	query := `
		UPDATE comments
		SET content = $1, is_edited = TRUE, updated_at = $2
		WHERE id = $3 AND is_deleted = FALSE
		RETURNING id, content, author_id, parent_id, is_deleted, is_edited, deleted_at, created_at, updated_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, content, now, commentID)
	if err == sql.ErrNoRows {
		return nil, r.missOrState(ctx, commentID, model.ErrCommentDeleted)
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

// MarkDeleted soft-deletes a live comment.
func (r *commentRepository) MarkDeleted(ctx context.Context, commentID string, now time.Time) (*model.Comment, error) {
	query := `
		UPDATE comments
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
		RETURNING id, content, author_id, parent_id, is_deleted, is_edited, deleted_at, created_at, updated_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, now, commentID)
	if err == sql.ErrNoRows {
		return nil, r.missOrState(ctx, commentID, model.ErrAlreadyDeleted)
	}
	if err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return &comment, nil
}

// Restore clears the tombstone of a deleted comment.
func (r *commentRepository) Restore(ctx context.Context, commentID string, now time.Time) (*model.Comment, error) {
	query := `
		UPDATE comments
		SET is_deleted = FALSE, deleted_at = NULL, updated_at = $1
		WHERE id = $2 AND is_deleted = TRUE
		RETURNING id, content, author_id, parent_id, is_deleted, is_edited, deleted_at, created_at, updated_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, now, commentID)
	if err == sql.ErrNoRows {
		return nil, r.missOrState(ctx, commentID, model.ErrCommentNotDeleted)
	}
	if err != nil {
		return nil, fmt.Errorf("restore comment: %w", err)
	}
	return &comment, nil
}

// missOrState distinguishes a missing row from a guard mismatch.
func (r *commentRepository) missOrState(ctx context.Context, commentID string, stateErr error) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID)
	if err != nil {
		return fmt.Errorf("check comment exists: %w", err)
	}
	if exists {
		return stateErr
	}
	return model.ErrCommentNotFound
}

// FindRoots returns a page of root comments, newest first, plus the total
// number of roots (deleted ones included; the fade filter is a view concern).
func (r *commentRepository) FindRoots(ctx context.Context, offset, limit int) ([]*model.Comment, int, error) {
	var rows []commentRow
	query := commentSelect + `
		WHERE c.parent_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC
		OFFSET $1 LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &rows, query, offset, limit); err != nil {
		return nil, 0, fmt.Errorf("get root comments: %w", err)
	}

	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments WHERE parent_id IS NULL`)
	if err != nil {
		return nil, 0, fmt.Errorf("count root comments: %w", err)
	}

	comments := make([]*model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, total, nil
}

// FindChildren returns the immediate replies of one comment, oldest first.
func (r *commentRepository) FindChildren(ctx context.Context, parentID string) ([]*model.Comment, error) {
	var rows []commentRow
	query := commentSelect + `
		WHERE c.parent_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, parentID); err != nil {
		return nil, fmt.Errorf("get replies: %w", err)
	}

	comments := make([]*model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

// FindChildrenOf fetches one whole tree level in a single round trip.
func (r *commentRepository) FindChildrenOf(ctx context.Context, parentIDs []string) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var rows []commentRow
	query := commentSelect + `
		WHERE c.parent_id = ANY($1)
		ORDER BY c.created_at ASC, c.id ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("get reply level: %w", err)
	}

	comments := make([]*model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

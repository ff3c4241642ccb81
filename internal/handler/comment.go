package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"threadboard/internal/httputil"
	"threadboard/internal/model"
	"threadboard/internal/service"
	"threadboard/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create handles POST /comments
// Creates a root comment, or a reply when parent_id is set.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Parent comment not found")
		case errors.Is(err, model.ErrParentDeleted):
			httputil.WriteConflict(w, "Cannot reply to a deleted comment")
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Comment content too long")
		default:
			log.Printf("[ERROR] Create comment handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Get handles GET /comments/{id}
// Returns a single comment with its full reply subtree.
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	comment, err := h.commentService.Get(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] Get comment handler: comment=%s err=%v", commentID, err)
		httputil.WriteInternalError(w, "Failed to get comment")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// List handles GET /comments?page=&limit=
// Returns paginated root comments with fully resolved reply trees.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid page parameter")
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultCommentPageLimit)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	comments, err := h.commentService.ListRoots(r.Context(), page, limit)
	if err != nil {
		log.Printf("[ERROR] List comments handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to get comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comments)
}

// Replies handles GET /comments/{id}/replies
// Returns the nested replies of a comment.
func (h *CommentHandler) Replies(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	replies, err := h.commentService.Replies(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] List replies handler: comment=%s err=%v", commentID, err)
		httputil.WriteInternalError(w, "Failed to get replies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, replies)
}

// Update handles PATCH /comments/{id}
// Edits a comment's content (owner-only, within the edit window).
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID := chi.URLParam(r, "id")

	var req model.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Edit(r.Context(), commentID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrNotCommentOwner):
			httputil.WriteForbidden(w, "You can only edit your own comments")
		case errors.Is(err, model.ErrCommentDeleted):
			httputil.WriteConflict(w, "Cannot edit a deleted comment")
		case errors.Is(err, model.ErrEditWindowExpired):
			httputil.WriteConflict(w, "Edit window has expired (15 minutes)")
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Comment content too long")
		default:
			log.Printf("[ERROR] Update comment handler: user=%s comment=%s err=%v", userID, commentID, err)
			httputil.WriteInternalError(w, "Failed to update comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /comments/{id}
// Soft-deletes a comment (owner-only, never time-boxed).
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID := chi.URLParam(r, "id")

	comment, err := h.commentService.Delete(r.Context(), commentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrNotCommentOwner):
			httputil.WriteForbidden(w, "You can only delete your own comments")
		case errors.Is(err, model.ErrAlreadyDeleted):
			httputil.WriteConflict(w, "Comment is already deleted")
		default:
			log.Printf("[ERROR] Delete comment handler: user=%s comment=%s err=%v", userID, commentID, err)
			httputil.WriteInternalError(w, "Failed to delete comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Restore handles POST /comments/{id}/restore
// Reverses a soft delete while the restore window is open.
func (h *CommentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID := chi.URLParam(r, "id")

	comment, err := h.commentService.Restore(r.Context(), commentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrNotCommentOwner):
			httputil.WriteForbidden(w, "You can only restore your own comments")
		case errors.Is(err, model.ErrCommentNotDeleted):
			httputil.WriteConflict(w, "Comment is not deleted")
		case errors.Is(err, model.ErrRestoreWindowExpired):
			httputil.WriteConflict(w, "Restore window has expired (15 minutes)")
		default:
			log.Printf("[ERROR] Restore comment handler: user=%s comment=%s err=%v", userID, commentID, err)
			httputil.WriteInternalError(w, "Failed to restore comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return parsed, nil
}

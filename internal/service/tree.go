package service

import (
	"context"
	"time"

	"threadboard/internal/model"
)

// assembleReplies resolves the full reply forest under the given comments.
// Threads nest arbitrarily deep, so instead of recursing per node it walks
// the tree level by level with an explicit frontier, fetching each whole
// level in one batched query. The children query orders by created_at
// ascending, so appending preserves the required order at every level.
func (s *CommentService) assembleReplies(ctx context.Context, roots []*model.Comment, now time.Time) error {
	byID := make(map[string]*model.Comment, len(roots))
	frontier := make([]string, 0, len(roots))

	for _, root := range roots {
		root.Replies = []*model.Comment{}
		root.ApplyPermissions(now)
		byID[root.ID] = root
		frontier = append(frontier, root.ID)
	}

	for len(frontier) > 0 {
		children, err := s.commentRepo.FindChildrenOf(ctx, frontier)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			break
		}

		frontier = frontier[:0]
		for _, child := range children {
			child.Replies = []*model.Comment{}
			child.ApplyPermissions(now)

			parent := byID[*child.ParentID]
			parent.Replies = append(parent.Replies, child)

			byID[child.ID] = child
			frontier = append(frontier, child.ID)
		}
	}

	return nil
}

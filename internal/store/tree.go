package store

import (
	"github.com/google/uuid"

	"quillpress/internal/models"
)

// BuildCategoryTree links a flat category list into a forest in a single
// pass over an id-to-node map. Categories whose parent is absent from the
// list, or who name themselves as parent, become roots. Input order is
// preserved among siblings.
func BuildCategoryTree(flat []models.Category) []*models.CategoryNode {
	nodes := make(map[uuid.UUID]*models.CategoryNode, len(flat))
	for i := range flat {
		nodes[flat[i].ID] = &models.CategoryNode{
			Category: flat[i],
			Children: []*models.CategoryNode{},
		}
	}

	roots := []*models.CategoryNode{}
	for i := range flat {
		node := nodes[flat[i].ID]
		pid := flat[i].ParentID
		if pid == nil || *pid == flat[i].ID {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*pid]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// childIndex maps a parent id to the ids of its direct children.
type childIndex map[uuid.UUID][]uuid.UUID

// descendants returns every id reachable below root, breadth-first. root
// itself is not included. The visited set stops the walk on any cycle
// already present in stored data.
func descendants(idx childIndex, root uuid.UUID) map[uuid.UUID]struct{} {
	seen := map[uuid.UUID]struct{}{root: {}}
	out := make(map[uuid.UUID]struct{})
	queue := []uuid.UUID{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range idx[cur] {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			out[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return out
}

// ThreadComments nests replies under their parents. Comments whose parent
// is not in the list are returned at the top level, in input order.
func ThreadComments(flat []models.Comment) []*models.CommentNode {
	nodes := make(map[uuid.UUID]*models.CommentNode, len(flat))
	for i := range flat {
		nodes[flat[i].ID] = &models.CommentNode{
			Comment: flat[i],
			Replies: []*models.CommentNode{},
		}
	}

	top := []*models.CommentNode{}
	for i := range flat {
		node := nodes[flat[i].ID]
		pid := flat[i].ParentID
		if pid != nil && *pid != flat[i].ID {
			if parent, ok := nodes[*pid]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		top = append(top, node)
	}
	return top
}

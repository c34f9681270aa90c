package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusSpam     CommentStatus = "spam"
)

// Valid reports whether s is one of the known moderation states.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected, CommentStatusSpam:
		return true
	}
	return false
}

// CommentDeletePolicy decides what happens to replies when a comment is deleted.
type CommentDeletePolicy string

const (
	// CommentDeleteOrphan moves replies up to the deleted comment's parent.
	CommentDeleteOrphan CommentDeletePolicy = "orphan"
	// CommentDeleteCascade removes the whole reply subtree.
	CommentDeleteCascade CommentDeletePolicy = "cascade"
	// CommentDeleteReject refuses to delete a comment that has replies.
	CommentDeleteReject CommentDeletePolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p CommentDeletePolicy) Valid() bool {
	switch p {
	case CommentDeleteOrphan, CommentDeleteCascade, CommentDeleteReject:
		return true
	}
	return false
}

// Comment is a reader comment on a post, optionally a reply to another comment.
type Comment struct {
	ID            uuid.UUID     `json:"id"`
	PostID        uuid.UUID     `json:"post_id"`
	AuthorName    string        `json:"author_name"`
	AuthorEmail   string        `json:"author_email"`
	AuthorWebsite *string       `json:"author_website"`
	Content       string        `json:"content"`
	Status        CommentStatus `json:"status"`
	ParentID      *uuid.UUID    `json:"parent_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CommentNode is a comment with its nested replies.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// CommentInput holds the fields accepted when a reader submits a comment.
// There is no status field: new comments always start pending.
type CommentInput struct {
	PostID        uuid.UUID  `json:"post_id"`
	AuthorName    string     `json:"author_name"`
	AuthorEmail   string     `json:"author_email"`
	AuthorWebsite *string    `json:"author_website"`
	Content       string     `json:"content"`
	ParentID      *uuid.UUID `json:"parent_id"`
}

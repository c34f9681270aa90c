package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a free-form label attached to posts through the post_tags junction.
type Tag struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	PostCount int `json:"post_count"`
}

// TagInput holds the fields accepted when creating a tag.
type TagInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

// TagPatch is a partial tag update.
type TagPatch struct {
	Name        Field[string] `json:"name"`
	Slug        Field[string] `json:"slug"`
	Description Field[string] `json:"description"`
}

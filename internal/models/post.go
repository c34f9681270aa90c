// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post is a blog article. Content is Markdown source.
type Post struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         *string    `json:"excerpt"`
	Content         string     `json:"content"`
	Status          PostStatus `json:"status"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id"`
	AuthorID        uuid.UUID  `json:"author_id"`
	CategoryID      *uuid.UUID `json:"category_id"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	CanonicalURL    *string    `json:"canonical_url"`
	PublishedAt     *time.Time `json:"published_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Populated by store methods that load the junction table.
	Tags []Tag `json:"tags"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// PostInput holds the fields accepted when creating a post.
type PostInput struct {
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Excerpt         *string     `json:"excerpt"`
	Content         string      `json:"content"`
	Status          PostStatus  `json:"status"`
	FeaturedImageID *uuid.UUID  `json:"featured_image_id"`
	AuthorID        uuid.UUID   `json:"author_id"`
	CategoryID      *uuid.UUID  `json:"category_id"`
	MetaTitle       *string     `json:"meta_title"`
	MetaDescription *string     `json:"meta_description"`
	CanonicalURL    *string     `json:"canonical_url"`
	TagIDs          []uuid.UUID `json:"tag_ids"`
}

// PostPatch is a partial post update. TagIDs, when present, replaces the
// post's whole tag set.
type PostPatch struct {
	Title           Field[string]      `json:"title"`
	Slug            Field[string]      `json:"slug"`
	Excerpt         Field[string]      `json:"excerpt"`
	Content         Field[string]      `json:"content"`
	Status          Field[PostStatus]  `json:"status"`
	FeaturedImageID Field[uuid.UUID]   `json:"featured_image_id"`
	CategoryID      Field[uuid.UUID]   `json:"category_id"`
	MetaTitle       Field[string]      `json:"meta_title"`
	MetaDescription Field[string]      `json:"meta_description"`
	CanonicalURL    Field[string]      `json:"canonical_url"`
	TagIDs          Field[[]uuid.UUID] `json:"tag_ids"`
}

// PostSearch is a page of posts together with its pagination metadata.
type PostSearch struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

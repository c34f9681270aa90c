// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a hierarchical post category.
// Posts can have at most one category assigned.
type Category struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     *string    `json:"description"`
	ParentID        *uuid.UUID `json:"parent_id"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Virtual field populated by list queries.
	PostCount int `json:"post_count"`
}

// CategoryNode is a category with its nested children, as returned by the
// tree endpoint. Children is never nil so leaves serialize as [].
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// CategoryInput holds the fields accepted when creating a category.
type CategoryInput struct {
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     *string    `json:"description"`
	ParentID        *uuid.UUID `json:"parent_id"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
}

// CategoryPatch is a partial category update. Only fields present in the
// request body are written.
type CategoryPatch struct {
	Name            Field[string]    `json:"name"`
	Slug            Field[string]    `json:"slug"`
	Description     Field[string]    `json:"description"`
	ParentID        Field[uuid.UUID] `json:"parent_id"`
	MetaTitle       Field[string]    `json:"meta_title"`
	MetaDescription Field[string]    `json:"meta_description"`
}

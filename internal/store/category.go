// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quillpress/internal/models"
)

// CategoryStore manages the category hierarchy.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `c.id, c.name, c.slug, c.description, c.parent_id,
	c.meta_title, c.meta_description, c.created_at, c.updated_at`

// categorySelect joins posts so every read carries its post count.
const categorySelect = `SELECT ` + categoryColumns + `, COUNT(p.id) AS post_count
	FROM categories c
	LEFT JOIN posts p ON p.category_id = c.id`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
		&c.MetaTitle, &c.MetaDescription, &c.CreatedAt, &c.UpdatedAt,
		&c.PostCount,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with post counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, categorySelect+`
		GROUP BY c.id
		ORDER BY c.name, c.id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Tree returns every category nested under its parent.
func (s *CategoryStore) Tree(ctx context.Context) ([]*models.CategoryNode, error) {
	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(flat), nil
}

func (s *CategoryStore) findOne(ctx context.Context, where string, arg any) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, categorySelect+` WHERE `+where+` GROUP BY c.id`, arg)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %v", ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// FindByID retrieves a category by ID.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "c.id = $1", id)
}

// FindBySlug retrieves a category by slug.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, "c.slug = $1", slug)
}

// Create inserts a new category. The parent, when given, must exist.
func (s *CategoryStore) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	if in.ParentID != nil {
		if err := mustExist(ctx, s.db, "categories", "parent category", *in.ParentID); err != nil {
			return nil, err
		}
	}

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, parent_id, meta_title, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		in.Name, in.Slug, in.Description, in.ParentID, in.MetaTitle, in.MetaDescription,
	).Scan(&id)
	if err != nil {
		return nil, categoryWriteErr("create category", err)
	}
	return s.FindByID(ctx, id)
}

// Update applies a partial update. Moving a category under itself or under
// one of its descendants is refused with ErrInvalidOperation.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, p models.CategoryPatch) (*models.Category, error) {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "categories", "category", id); err != nil {
			return err
		}

		if p.ParentID.Present() {
			if err := checkReparent(ctx, tx, id, p.ParentID.Value); err != nil {
				return err
			}
		}

		var u updateBuilder
		setField(&u, "name", p.Name)
		setField(&u, "slug", p.Slug)
		setField(&u, "description", p.Description)
		setField(&u, "parent_id", p.ParentID)
		setField(&u, "meta_title", p.MetaTitle)
		setField(&u, "meta_description", p.MetaDescription)

		q, args := u.build("categories", id)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return categoryWriteErr("update category", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// checkReparent validates moving id under parentID.
func checkReparent(ctx context.Context, q querier, id, parentID uuid.UUID) error {
	if parentID == id {
		return fmt.Errorf("%w: category cannot be its own parent", ErrInvalidOperation)
	}

	idx, err := loadCategoryIndex(ctx, q)
	if err != nil {
		return err
	}
	if _, ok := descendants(idx, id)[parentID]; ok {
		return fmt.Errorf("%w: parent %s is a descendant of category %s", ErrInvalidOperation, parentID, id)
	}

	return mustExist(ctx, q, "categories", "parent category", parentID)
}

// loadCategoryIndex reads every parent link in one query.
func loadCategoryIndex(ctx context.Context, q querier) (childIndex, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, parent_id FROM categories WHERE parent_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("load category links: %w", err)
	}
	defer rows.Close()

	idx := make(childIndex)
	for rows.Next() {
		var id, parent uuid.UUID
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, fmt.Errorf("scan category link: %w", err)
		}
		idx[parent] = append(idx[parent], id)
	}
	return idx, rows.Err()
}

// Delete removes a category. Its children become roots and its posts lose
// their category, all in one transaction.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "categories", "category", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE categories SET parent_id = NULL, updated_at = NOW() WHERE parent_id = $1`, id); err != nil {
			return fmt.Errorf("detach child categories: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE posts SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`, id); err != nil {
			return fmt.Errorf("detach category posts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func categoryWriteErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: slug already in use", op, ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: parent category", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

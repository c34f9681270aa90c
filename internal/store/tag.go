package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quillpress/internal/models"
)

// TagStore manages tags and their post links.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagSelect = `SELECT t.id, t.name, t.slug, t.description, t.created_at, t.updated_at,
	COUNT(pt.post_id) AS post_count
	FROM tags t
	LEFT JOIN post_tags pt ON pt.tag_id = t.id`

func scanTag(scanner interface{ Scan(...any) error }) (*models.Tag, error) {
	var t models.Tag
	err := scanner.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.CreatedAt, &t.UpdatedAt, &t.PostCount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TagStore) list(ctx context.Context, query string, args ...any) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// List returns every tag by name, with post counts.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	return s.list(ctx, tagSelect+` GROUP BY t.id ORDER BY t.name, t.id`)
}

// Popular returns the tags used by the most posts.
func (s *TagStore) Popular(ctx context.Context, limit int) ([]models.Tag, error) {
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return s.list(ctx, tagSelect+`
		GROUP BY t.id
		ORDER BY post_count DESC, t.name, t.id
		LIMIT $1`, limit)
}

// Search returns tags whose name contains query, case-insensitively.
func (s *TagStore) Search(ctx context.Context, query string, limit int) ([]models.Tag, error) {
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Tag{}, nil
	}
	return s.list(ctx, tagSelect+`
		WHERE t.name ILIKE $1
		GROUP BY t.id
		ORDER BY t.name, t.id
		LIMIT $2`, "%"+escapeLike(query)+"%", limit)
}

func (s *TagStore) findOne(ctx context.Context, where string, arg any) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx, tagSelect+` WHERE `+where+` GROUP BY t.id`, arg)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tag %v", ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return t, nil
}

// FindByID retrieves a tag by ID.
func (s *TagStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	return s.findOne(ctx, "t.id = $1", id)
}

// FindBySlug retrieves a tag by slug.
func (s *TagStore) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return s.findOne(ctx, "t.slug = $1", slug)
}

// Create inserts a tag.
func (s *TagStore) Create(ctx context.Context, in models.TagInput) (*models.Tag, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug, description) VALUES ($1, $2, $3)
		RETURNING id`, in.Name, in.Slug, in.Description,
	).Scan(&id)
	if err != nil {
		return nil, tagWriteErr("create tag", err)
	}
	return s.FindByID(ctx, id)
}

// Update applies a partial update.
func (s *TagStore) Update(ctx context.Context, id uuid.UUID, p models.TagPatch) (*models.Tag, error) {
	var u updateBuilder
	setField(&u, "name", p.Name)
	setField(&u, "slug", p.Slug)
	setField(&u, "description", p.Description)

	q, args := u.build("tags", id)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, tagWriteErr("update tag", err)
	}
	if err := affected(res, "tag", id); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Delete removes the tag's post links and then the tag, in one transaction.
func (s *TagStore) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "tags", "tag", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE tag_id = $1`, id); err != nil {
			return fmt.Errorf("unlink tag: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		return nil
	})
}

func tagWriteErr(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: slug already in use", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

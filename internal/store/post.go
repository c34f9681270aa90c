// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quillpress/internal/models"
	"quillpress/internal/slug"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.content, p.status,
	p.featured_image_id, p.author_id, p.category_id, p.meta_title,
	p.meta_description, p.canonical_url, p.published_at, p.created_at, p.updated_at`

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Status,
		&p.FeaturedImageID, &p.AuthorID, &p.CategoryID, &p.MetaTitle,
		&p.MetaDescription, &p.CanonicalURL, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Tags = []models.Tag{}
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// Create inserts a new post with its tags. A post created as published gets
// published_at set to now.
func (s *PostStore) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOperation, in.Status)
	}

	var id uuid.UUID
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "users", "author", in.AuthorID); err != nil {
			return err
		}
		if err := checkPostRefs(ctx, tx, in.CategoryID, in.FeaturedImageID); err != nil {
			return err
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO posts (title, slug, excerpt, content, status, featured_image_id,
				author_id, category_id, meta_title, meta_description, canonical_url, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
				CASE WHEN $12 THEN NOW() END)
			RETURNING id`,
			in.Title, in.Slug, in.Excerpt, in.Content, string(in.Status), in.FeaturedImageID,
			in.AuthorID, in.CategoryID, in.MetaTitle, in.MetaDescription, in.CanonicalURL,
			in.Status == models.PostStatusPublished,
		).Scan(&id)
		if err != nil {
			return postWriteErr("create post", err)
		}
		return replacePostTags(ctx, tx, id, in.TagIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// checkPostRefs verifies the optional category and featured image exist.
func checkPostRefs(ctx context.Context, q querier, categoryID, imageID *uuid.UUID) error {
	if categoryID != nil {
		if err := mustExist(ctx, q, "categories", "category", *categoryID); err != nil {
			return err
		}
	}
	if imageID != nil {
		if err := mustExist(ctx, q, "media", "featured image", *imageID); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostStore) findOne(ctx context.Context, where string, arg any) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE `+where, arg)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: post %v", ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}

	posts := []models.Post{*p}
	if err := attachTags(ctx, s.db, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// FindByID retrieves a post and its tags by ID.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "p.id = $1", id)
}

// FindBySlug retrieves a post and its tags by slug.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "p.slug = $1", slug)
}

// Search returns one page of posts matching params, plus pagination.
func (s *PostStore) Search(ctx context.Context, params SearchParams) (*models.PostSearch, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	where, args := buildPostFilter(params)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p WHERE `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	page := models.NewPagination(params.Page, params.Limit, total)
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM posts p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		postColumns, where, orderClause(params), n+1, n+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.db, posts); err != nil {
		return nil, err
	}

	return &models.PostSearch{Posts: posts, Pagination: page}, nil
}

// Published returns every published post, newest first, without tags.
// Used for the sitemap.
func (s *PostStore) Published(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts p
		WHERE p.status = 'published'
		ORDER BY p.published_at DESC NULLS LAST, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return scanPosts(rows)
}

// Update applies a partial update. A present tag_ids replaces the whole tag
// set. Moving into published status stamps published_at once.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, p models.PostPatch) (*models.Post, error) {
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOperation, p.Status.Value)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "posts", "post", id); err != nil {
			return err
		}
		if err := checkPostRefs(ctx, tx, p.CategoryID.Ptr(), p.FeaturedImageID.Ptr()); err != nil {
			return err
		}

		var u updateBuilder
		setField(&u, "title", p.Title)
		setField(&u, "slug", p.Slug)
		setField(&u, "excerpt", p.Excerpt)
		setField(&u, "content", p.Content)
		if p.Status.Set {
			u.add("status", string(p.Status.Value))
			if p.Status.Value == models.PostStatusPublished {
				u.expr("published_at = COALESCE(published_at, NOW())")
			}
		}
		setField(&u, "featured_image_id", p.FeaturedImageID)
		setField(&u, "category_id", p.CategoryID)
		setField(&u, "meta_title", p.MetaTitle)
		setField(&u, "meta_description", p.MetaDescription)
		setField(&u, "canonical_url", p.CanonicalURL)

		q, args := u.build("posts", id)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return postWriteErr("update post", err)
		}

		if p.TagIDs.Set {
			return replacePostTags(ctx, tx, id, p.TagIDs.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Delete removes a post. Tag links and comments go with it.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return affected(res, "post", id)
}

// Publish sets status to published. published_at keeps its first value.
func (s *PostStore) Publish(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.setStatus(ctx, id, models.PostStatusPublished)
}

// Archive sets status to archived.
func (s *PostStore) Archive(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.setStatus(ctx, id, models.PostStatusArchived)
}

func (s *PostStore) setStatus(ctx context.Context, id uuid.UUID, status models.PostStatus) (*models.Post, error) {
	stamp := ""
	if status == models.PostStatusPublished {
		stamp = "published_at = COALESCE(published_at, NOW()), "
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET status = $1, `+stamp+`updated_at = NOW() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return nil, fmt.Errorf("set post status: %w", err)
	}
	if err := affected(res, "post", id); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Related returns published posts sharing the category or any tag with the
// given post, newest first.
func (s *PostStore) Related(ctx context.Context, id uuid.UUID, limit int) ([]models.Post, error) {
	if limit < 1 || limit > MaxLimit {
		limit = 5
	}
	if err := mustExist(ctx, s.db, "posts", "post", id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts p
		WHERE p.status = 'published' AND p.id <> $1
		  AND (
			p.category_id = (SELECT category_id FROM posts WHERE id = $1)
			OR p.id IN (
				SELECT pt.post_id FROM post_tags pt
				WHERE pt.tag_id IN (SELECT tag_id FROM post_tags WHERE post_id = $1)
			)
		  )
		ORDER BY p.published_at DESC NULLS LAST, p.id DESC
		LIMIT $2`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("related posts: %w", err)
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Duplicate copies a post as a new draft with a "-copy" slug and the same
// tags. authorID, when non-nil, becomes the copy's author.
func (s *PostStore) Duplicate(ctx context.Context, id uuid.UUID, authorID *uuid.UUID) (*models.Post, error) {
	src, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newID uuid.UUID
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		copySlug, err := nextCopySlug(ctx, tx, src.Slug)
		if err != nil {
			return err
		}

		author := src.AuthorID
		if authorID != nil {
			author = *authorID
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO posts (title, slug, excerpt, content, status, featured_image_id,
				author_id, category_id, meta_title, meta_description, canonical_url)
			VALUES ($1, $2, $3, $4, 'draft', $5, $6, $7, $8, $9, NULL)
			RETURNING id`,
			src.Title+" (Copy)", copySlug, src.Excerpt, src.Content, src.FeaturedImageID,
			author, src.CategoryID, src.MetaTitle, src.MetaDescription,
		).Scan(&newID)
		if err != nil {
			return postWriteErr("duplicate post", err)
		}

		tagIDs := make([]uuid.UUID, len(src.Tags))
		for i, t := range src.Tags {
			tagIDs[i] = t.ID
		}
		return replacePostTags(ctx, tx, newID, tagIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, newID)
}

// nextCopySlug finds the first free "-copy", "-copy-2", ... slug for base.
func nextCopySlug(ctx context.Context, q querier, base string) (string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT slug FROM posts WHERE slug LIKE $1 ESCAPE '\'`, escapeLike(base+"-copy")+"%")
	if err != nil {
		return "", fmt.Errorf("find copy slugs: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", fmt.Errorf("scan copy slug: %w", err)
		}
		taken[s] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for n := 1; ; n++ {
		if candidate := slug.Copy(base, n); !taken[candidate] {
			return candidate, nil
		}
	}
}

// replacePostTags swaps the post's tag set for tagIDs. Unknown tags fail
// with ErrNotFound.
func replacePostTags(ctx context.Context, tx *sql.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	tagIDs = uniqueIDs(tagIDs)
	if len(tagIDs) > 0 {
		ph, args := inList(tagIDs, 0)
		var found int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tags WHERE id IN (`+ph+`)`, args...).Scan(&found); err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		if found != len(tagIDs) {
			return fmt.Errorf("%w: one or more tags", ErrNotFound)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID); err != nil {
			return fmt.Errorf("link post tag: %w", err)
		}
	}
	return nil
}

// attachTags loads the tags of every post in one query.
func attachTags(ctx context.Context, q querier, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	index := make(map[uuid.UUID]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Tags = []models.Tag{}
	}

	ph, args := inList(ids, 0)
	rows, err := q.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug, t.description, t.created_at, t.updated_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+ph+`)
		ORDER BY t.name`, args...)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

// inList returns "$k+1, $k+2, ..." placeholders for ids and the matching args.
func inList(ids []uuid.UUID, offset int) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", offset+i+1)
		args[i] = id
	}
	return strings.Join(ph, ", "), args
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func postWriteErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: slug already in use", op, ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: referenced record", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

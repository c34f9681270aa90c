package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quillpress/internal/models"
)

// CommentStore manages reader comments and their moderation state.
type CommentStore struct {
	db     *sql.DB
	policy models.CommentDeletePolicy
}

// NewCommentStore returns a CommentStore that deletes comments according to
// policy. An empty or unknown policy falls back to orphaning replies.
func NewCommentStore(db *sql.DB, policy models.CommentDeletePolicy) *CommentStore {
	if !policy.Valid() {
		policy = models.CommentDeleteOrphan
	}
	return &CommentStore{db: db, policy: policy}
}

// Policy returns the reply handling used by Delete.
func (s *CommentStore) Policy() models.CommentDeletePolicy {
	return s.policy
}

const commentColumns = `id, post_id, author_name, author_email, author_website,
	content, status, parent_id, created_at, updated_at`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.PostID, &c.AuthorName, &c.AuthorEmail, &c.AuthorWebsite,
		&c.Content, &c.Status, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComments(rows *sql.Rows) ([]models.Comment, error) {
	defer rows.Close()
	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create stores a new comment in pending status. The post must exist and be
// published, site comments must be enabled, and a parent comment must
// belong to the same post.
func (s *CommentStore) Create(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	return s.create(ctx, in, false)
}

// CreateAsStaff is Create for signed-in staff, who may also comment on
// draft and archived posts.
func (s *CommentStore) CreateAsStaff(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	return s.create(ctx, in, true)
}

func (s *CommentStore) create(ctx context.Context, in models.CommentInput, anyStatus bool) (*models.Comment, error) {
	var c *models.Comment
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		allowed, err := commentsAllowed(ctx, tx)
		if err != nil {
			return err
		}
		if !allowed {
			return fmt.Errorf("%w: comments are disabled", ErrInvalidOperation)
		}

		var status models.PostStatus
		err = tx.QueryRowContext(ctx, `SELECT status FROM posts WHERE id = $1`, in.PostID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: post %s", ErrNotFound, in.PostID)
		}
		if err != nil {
			return fmt.Errorf("check comment post: %w", err)
		}
		if !anyStatus && status != models.PostStatusPublished {
			return fmt.Errorf("%w: post %s is not published", ErrInvalidOperation, in.PostID)
		}

		if in.ParentID != nil {
			var parentPost uuid.UUID
			err := tx.QueryRowContext(ctx, `SELECT post_id FROM comments WHERE id = $1`, *in.ParentID).Scan(&parentPost)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: parent comment %s", ErrNotFound, *in.ParentID)
			}
			if err != nil {
				return fmt.Errorf("check parent comment: %w", err)
			}
			if parentPost != in.PostID {
				return fmt.Errorf("%w: parent comment belongs to another post", ErrInvalidOperation)
			}
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO comments (post_id, author_name, author_email, author_website, content, status, parent_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+commentColumns,
			in.PostID, in.AuthorName, in.AuthorEmail, in.AuthorWebsite, in.Content,
			string(models.CommentStatusPending), in.ParentID,
		)
		c, err = scanComment(row)
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// commentsAllowed reads the allow_comments site setting. A missing
// settings row means the defaults, which allow comments.
func commentsAllowed(ctx context.Context, q querier) (bool, error) {
	var allowed bool
	err := q.QueryRowContext(ctx, `SELECT allow_comments FROM site_settings WHERE id = 1`).Scan(&allowed)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read allow_comments: %w", err)
	}
	return allowed, nil
}

// FindByID retrieves a comment by ID.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: comment %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// ListByPost returns a post's comments oldest first, optionally only those
// in the given status.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID, status models.CommentStatus) ([]models.Comment, error) {
	if err := mustExist(ctx, s.db, "posts", "post", postID); err != nil {
		return nil, err
	}

	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1`
	args := []any{postID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list post comments: %w", err)
	}
	return scanComments(rows)
}

// List returns one page of comments across all posts, newest first.
func (s *CommentStore) List(ctx context.Context, page, limit int, status models.CommentStatus) ([]models.Comment, models.Pagination, error) {
	where := "TRUE"
	var args []any
	if status != "" {
		where = "status = $1"
		args = append(args, string(status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count comments: %w", err)
	}

	pg := models.NewPagination(page, limit, total)
	n := len(args)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM comments WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		commentColumns, where, n+1, n+2), append(args, pg.Limit, pg.Offset())...)
	if err != nil {
		return nil, pg, fmt.Errorf("list comments: %w", err)
	}
	items, err := scanComments(rows)
	return items, pg, err
}

// Pending returns the oldest comments awaiting moderation.
func (s *CommentStore) Pending(ctx context.Context, limit int) ([]models.Comment, error) {
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending comments: %w", err)
	}
	return scanComments(rows)
}

// SetStatus moves a comment to any moderation status.
func (s *CommentStore) SetStatus(ctx context.Context, id uuid.UUID, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown comment status %q", ErrInvalidOperation, status)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE comments SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+commentColumns, string(status), id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: comment %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("set comment status: %w", err)
	}
	return c, nil
}

// Approve marks a comment approved.
func (s *CommentStore) Approve(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.SetStatus(ctx, id, models.CommentStatusApproved)
}

// Reject marks a comment rejected.
func (s *CommentStore) Reject(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.SetStatus(ctx, id, models.CommentStatusRejected)
}

// MarkSpam marks a comment as spam.
func (s *CommentStore) MarkSpam(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.SetStatus(ctx, id, models.CommentStatusSpam)
}

// Delete removes a comment, handling its replies per the store's policy.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var parentID *uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT parent_id FROM comments WHERE id = $1`, id).Scan(&parentID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: comment %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("find comment: %w", err)
		}

		switch s.policy {
		case models.CommentDeleteReject:
			var replies int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM comments WHERE parent_id = $1`, id).Scan(&replies); err != nil {
				return fmt.Errorf("count replies: %w", err)
			}
			if replies > 0 {
				return fmt.Errorf("%w: comment has %d replies", ErrInvalidOperation, replies)
			}

		case models.CommentDeleteCascade:
			_, err := tx.ExecContext(ctx, `
				WITH RECURSIVE subtree AS (
					SELECT id FROM comments WHERE id = $1
					UNION
					SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
				)
				DELETE FROM comments WHERE id IN (SELECT id FROM subtree)`, id)
			if err != nil {
				return fmt.Errorf("delete comment thread: %w", err)
			}
			return nil

		default:
			if _, err := tx.ExecContext(ctx, `
				UPDATE comments SET parent_id = $1, updated_at = NOW()
				WHERE parent_id = $2`, parentID, id); err != nil {
				return fmt.Errorf("reparent replies: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
}

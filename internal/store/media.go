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

// MediaStore handles all media-related database operations.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, filename, original_filename, file_path, file_size,
	mime_type, alt_text, caption, uploaded_by, created_at, updated_at`

// scanMedia scans a media row from the result set.
func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.OriginalFilename, &m.FilePath, &m.FileSize,
		&m.MimeType, &m.AltText, &m.Caption, &m.UploadedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record and returns it with the generated ID.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO media (filename, original_filename, file_path, file_size,
			mime_type, alt_text, caption, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+mediaColumns,
		m.Filename, m.OriginalFilename, m.FilePath, m.FileSize,
		m.MimeType, m.AltText, m.Caption, m.UploadedBy,
	)
	created, err := scanMedia(row)
	switch {
	case isUniqueViolation(err):
		return nil, fmt.Errorf("create media: %w: file path already in use", ErrConflict)
	case isForeignKeyViolation(err):
		return nil, fmt.Errorf("create media: %w: uploader", ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single media record by its UUID.
func (s *MediaStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// List returns one page of media items, newest first.
func (s *MediaStore) List(ctx context.Context, page, limit int) ([]models.Media, models.Pagination, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media`).Scan(&total); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count media: %w", err)
	}
	pg := models.NewPagination(page, limit, total)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, pg.Limit, pg.Offset())
	if err != nil {
		return nil, pg, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	items := []models.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, pg, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, *m)
	}
	return items, pg, rows.Err()
}

// Update changes the alt text and caption. Nothing else about a stored
// file is mutable.
func (s *MediaStore) Update(ctx context.Context, id uuid.UUID, p models.MediaPatch) (*models.Media, error) {
	var u updateBuilder
	setField(&u, "alt_text", p.AltText)
	setField(&u, "caption", p.Caption)

	q, args := u.build("media", id)
	row := s.db.QueryRowContext(ctx, q+` RETURNING `+mediaColumns, args...)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update media: %w", err)
	}
	return m, nil
}

// Delete removes a media record and returns it so the caller can clean
// up the stored object. Posts using it as featured image lose the link.
func (s *MediaStore) Delete(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM media WHERE id = $1
		RETURNING `+mediaColumns, id)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("delete media: %w", err)
	}
	return m, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media represents a file uploaded to S3-compatible object storage.
// Metadata is stored in PostgreSQL; the file itself lives in the bucket
// under FilePath. Identity fields are immutable after creation.
type Media struct {
	ID               uuid.UUID `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	AltText          *string   `json:"alt_text"`
	Caption          *string   `json:"caption"`
	UploadedBy       uuid.UUID `json:"uploaded_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// URL is filled in by handlers from the storage client.
	URL string `json:"url,omitempty"`
}

// MediaPatch updates the only mutable media fields.
type MediaPatch struct {
	AltText Field[string] `json:"alt_text"`
	Caption Field[string] `json:"caption"`
}

// IsImage returns true if the media item is an image type.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(m.MimeType, "image/")
}

// HumanSize returns a human-readable file size string.
func (m *Media) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.FileSize >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.FileSize)/float64(mb))
	case m.FileSize >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.FileSize)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.FileSize)
	}
}

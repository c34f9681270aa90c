// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quillpress/internal/models"
)

// SiteSettingStore manages the single site settings row.
type SiteSettingStore struct {
	db       *sql.DB
	defaults models.SiteSettings
}

// NewSiteSettingStore returns a SiteSettingStore. siteURL seeds the
// defaults used when the row is created or reset.
func NewSiteSettingStore(db *sql.DB, siteURL string) *SiteSettingStore {
	return &SiteSettingStore{db: db, defaults: models.DefaultSiteSettings(siteURL)}
}

const settingColumns = `site_name, site_description, site_url, admin_email, posts_per_page,
	allow_comments, allow_registration, default_user_role, timezone, date_format,
	time_format, language, updated_at`

func scanSettings(scanner interface{ Scan(...any) error }) (*models.SiteSettings, error) {
	var st models.SiteSettings
	err := scanner.Scan(
		&st.SiteName, &st.SiteDescription, &st.SiteURL, &st.AdminEmail, &st.PostsPerPage,
		&st.AllowComments, &st.AllowRegistration, &st.DefaultUserRole, &st.Timezone, &st.DateFormat,
		&st.TimeFormat, &st.Language, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Get returns the settings, creating the row with defaults if absent.
func (s *SiteSettingStore) Get(ctx context.Context) (*models.SiteSettings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+settingColumns+` FROM site_settings WHERE id = 1`)
	st, err := scanSettings(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s.write(ctx, s.defaults, false)
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

// Update applies a partial update, creating the row first if needed.
func (s *SiteSettingStore) Update(ctx context.Context, p models.SiteSettingsPatch) (*models.SiteSettings, error) {
	var st *models.SiteSettings
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO site_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
			return fmt.Errorf("ensure settings row: %w", err)
		}

		var u updateBuilder
		setField(&u, "site_name", p.SiteName)
		setField(&u, "site_description", p.SiteDescription)
		setField(&u, "site_url", p.SiteURL)
		setField(&u, "admin_email", p.AdminEmail)
		setField(&u, "posts_per_page", p.PostsPerPage)
		setField(&u, "allow_comments", p.AllowComments)
		setField(&u, "allow_registration", p.AllowRegistration)
		if p.DefaultUserRole.Set {
			u.add("default_user_role", string(p.DefaultUserRole.Value))
		}
		setField(&u, "timezone", p.Timezone)
		setField(&u, "date_format", p.DateFormat)
		setField(&u, "time_format", p.TimeFormat)
		setField(&u, "language", p.Language)

		q, args := u.build("site_settings", 1)
		var err error
		st, err = scanSettings(tx.QueryRowContext(ctx, q+` RETURNING `+settingColumns, args...))
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Reset overwrites every setting with its default.
func (s *SiteSettingStore) Reset(ctx context.Context) (*models.SiteSettings, error) {
	return s.write(ctx, s.defaults, true)
}

// write inserts st as the settings row. With overwrite, an existing row is
// replaced; otherwise the existing row wins and is returned.
func (s *SiteSettingStore) write(ctx context.Context, st models.SiteSettings, overwrite bool) (*models.SiteSettings, error) {
	conflict := `DO UPDATE SET site_name = site_settings.site_name`
	if overwrite {
		conflict = `DO UPDATE SET
			site_name = EXCLUDED.site_name,
			site_description = EXCLUDED.site_description,
			site_url = EXCLUDED.site_url,
			admin_email = EXCLUDED.admin_email,
			posts_per_page = EXCLUDED.posts_per_page,
			allow_comments = EXCLUDED.allow_comments,
			allow_registration = EXCLUDED.allow_registration,
			default_user_role = EXCLUDED.default_user_role,
			timezone = EXCLUDED.timezone,
			date_format = EXCLUDED.date_format,
			time_format = EXCLUDED.time_format,
			language = EXCLUDED.language,
			updated_at = NOW()`
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO site_settings (id, site_name, site_description, site_url, admin_email,
			posts_per_page, allow_comments, allow_registration, default_user_role,
			timezone, date_format, time_format, language)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) `+conflict+`
		RETURNING `+settingColumns,
		st.SiteName, st.SiteDescription, st.SiteURL, st.AdminEmail,
		st.PostsPerPage, st.AllowComments, st.AllowRegistration, string(st.DefaultUserRole),
		st.Timezone, st.DateFormat, st.TimeFormat, st.Language,
	)
	saved, err := scanSettings(row)
	if err != nil {
		return nil, fmt.Errorf("write settings: %w", err)
	}
	return saved, nil
}

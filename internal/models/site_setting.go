// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// SiteSettings is the singleton row of site-wide configuration.
type SiteSettings struct {
	SiteName          string    `json:"site_name"`
	SiteDescription   string    `json:"site_description"`
	SiteURL           string    `json:"site_url"`
	AdminEmail        string    `json:"admin_email"`
	PostsPerPage      int       `json:"posts_per_page"`
	AllowComments     bool      `json:"allow_comments"`
	AllowRegistration bool      `json:"allow_registration"`
	DefaultUserRole   Role      `json:"default_user_role"`
	Timezone          string    `json:"timezone"`
	DateFormat        string    `json:"date_format"`
	TimeFormat        string    `json:"time_format"`
	Language          string    `json:"language"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultSiteSettings returns the values a fresh or reset site starts with.
// siteURL comes from configuration so feeds and sitemaps work before the
// settings row is ever edited.
func DefaultSiteSettings(siteURL string) SiteSettings {
	return SiteSettings{
		SiteName:          "quillpress",
		SiteDescription:   "A blog powered by quillpress",
		SiteURL:           siteURL,
		AdminEmail:        "admin@quillpress.local",
		PostsPerPage:      10,
		AllowComments:     true,
		AllowRegistration: false,
		DefaultUserRole:   RoleAuthor,
		Timezone:          "UTC",
		DateFormat:        "2006-01-02",
		TimeFormat:        "15:04",
		Language:          "en",
	}
}

// SiteSettingsPatch is a partial settings update.
type SiteSettingsPatch struct {
	SiteName          Field[string] `json:"site_name"`
	SiteDescription   Field[string] `json:"site_description"`
	SiteURL           Field[string] `json:"site_url"`
	AdminEmail        Field[string] `json:"admin_email"`
	PostsPerPage      Field[int]    `json:"posts_per_page"`
	AllowComments     Field[bool]   `json:"allow_comments"`
	AllowRegistration Field[bool]   `json:"allow_registration"`
	DefaultUserRole   Field[Role]   `json:"default_user_role"`
	Timezone          Field[string] `json:"timezone"`
	DateFormat        Field[string] `json:"date_format"`
	TimeFormat        Field[string] `json:"time_format"`
	Language          Field[string] `json:"language"`
}

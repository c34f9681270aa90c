// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for quillpress.
// Handlers are grouped by concern (content API, auth) and receive their
// dependencies through the handler struct.
package handlers

import (
	"quillpress/internal/storage"
	"quillpress/internal/store"
)

// Deps lists the collaborators of the content API. Storage may be nil
// when S3 is not configured; media routes then answer 503.
type Deps struct {
	Categories *store.CategoryStore
	Posts      *store.PostStore
	Tags       *store.TagStore
	Comments   *store.CommentStore
	Media      *store.MediaStore
	Users      *store.UserStore
	Settings   *store.SiteSettingStore
	Storage    *storage.Client

	// MaxUploadSize caps media uploads in bytes.
	MaxUploadSize int64
}

// API groups the content, taxonomy, comment, SEO, feed, settings and
// media handlers.
type API struct {
	categories    *store.CategoryStore
	posts         *store.PostStore
	tags          *store.TagStore
	comments      *store.CommentStore
	media         *store.MediaStore
	users         *store.UserStore
	settings      *store.SiteSettingStore
	storage       *storage.Client
	maxUploadSize int64
}

// NewAPI creates the API handler group.
func NewAPI(d Deps) *API {
	if d.MaxUploadSize <= 0 {
		d.MaxUploadSize = defaultMaxUploadSize
	}
	return &API{
		categories:    d.Categories,
		posts:         d.Posts,
		tags:          d.Tags,
		comments:      d.Comments,
		media:         d.Media,
		users:         d.Users,
		settings:      d.Settings,
		storage:       d.Storage,
		maxUploadSize: d.MaxUploadSize,
	}
}

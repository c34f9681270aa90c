// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// defaultRelatedLimit is used when ?limit= is absent on the related endpoint.
const defaultRelatedLimit = 5

// isStaff reports whether the request carries a staff session.
func isStaff(r *http.Request) bool {
	return middleware.SessionFromCtx(r.Context()) != nil
}

// visible reports whether the caller may see p. Anonymous callers only see
// published posts.
func visible(r *http.Request, p *models.Post) bool {
	return p.IsPublished() || isStaff(r)
}

// searchParams builds store.SearchParams from the query string.
func searchParams(r *http.Request) (store.SearchParams, error) {
	q := r.URL.Query()
	p := store.SearchParams{
		Query:     strings.TrimSpace(q.Get("q")),
		Status:    models.PostStatus(q.Get("status")),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	var err error
	if p.Page, err = queryInt(r, "page", 0); err != nil {
		return p, err
	}
	if p.Limit, err = queryInt(r, "limit", 0); err != nil {
		return p, err
	}
	if p.CategoryID, err = queryUUID(r, "category_id"); err != nil {
		return p, err
	}
	if p.AuthorID, err = queryUUID(r, "author_id"); err != nil {
		return p, err
	}
	if raw := q.Get("tag_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return p, fmt.Errorf("tag_ids must be comma-separated UUIDs")
			}
			p.TagIDs = append(p.TagIDs, id)
		}
	}
	return p, nil
}

// PostsList searches posts. Anonymous callers only ever see published posts.
func (a *API) PostsList(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validateSearchParams(r.URL.Query(), params); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	if !isStaff(r) {
		params.Status = models.PostStatusPublished
	}

	res, err := a.posts.Search(r.Context(), params)
	if err != nil {
		writeStoreError(w, r, "search posts", err)
		return
	}
	writePage(w, res.Posts, res.Pagination)
}

// PostGet returns one post by id.
func (a *API) PostGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a.writePost(w, r, func() (*models.Post, error) { return a.posts.FindByID(r.Context(), id) })
}

// PostBySlug returns one post by slug.
func (a *API) PostBySlug(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	a.writePost(w, r, func() (*models.Post, error) { return a.posts.FindBySlug(r.Context(), s) })
}

func (a *API) writePost(w http.ResponseWriter, r *http.Request, find func() (*models.Post, error)) {
	p, err := find()
	if err != nil {
		writeStoreError(w, r, "get post", err)
		return
	}
	if !visible(r, p) {
		writeError(w, http.StatusNotFound, "not_found", "not found: post", nil)
		return
	}
	writeData(w, http.StatusOK, p)
}

// loadVisiblePost fetches a post by the {id} parameter and hides
// unpublished posts from anonymous callers. It writes the error response
// itself and returns nil on failure.
func (a *API) loadVisiblePost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil
	}
	p, err := a.posts.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "get post", err)
		return nil
	}
	if !visible(r, p) {
		writeError(w, http.StatusNotFound, "not_found", "not found: post "+id.String(), nil)
		return nil
	}
	return p
}

// PostRelated returns published posts sharing the category or a tag.
func (a *API) PostRelated(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultRelatedLimit, store.MaxLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	p := a.loadVisiblePost(w, r)
	if p == nil {
		return
	}
	related, err := a.posts.Related(r.Context(), p.ID, limit)
	if err != nil {
		writeStoreError(w, r, "related posts", err)
		return
	}
	writeData(w, http.StatusOK, related)
}

// PostCreate creates a post. Authors always write as themselves; admins
// and editors may name another author.
func (a *API) PostCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var in models.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validatePostInput(&in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	if in.AuthorID == uuid.Nil || models.Role(sess.Role) == models.RoleAuthor {
		in.AuthorID = sess.UserID
	}

	p, err := a.posts.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "create post", err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

// PostUpdate applies a partial update.
func (a *API) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch models.PostPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validatePostPatch(&patch); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	p, err := a.posts.Update(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, r, "update post", err)
		return
	}
	writeData(w, http.StatusOK, p)
}

// PostDelete removes a post.
func (a *API) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.posts.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, "delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostPublish moves a post to published, stamping published_at once.
func (a *API) PostPublish(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "publish post", a.posts.Publish)
}

// PostArchive moves a post to archived.
func (a *API) PostArchive(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "archive post", a.posts.Archive)
}

func (a *API) transition(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, id uuid.UUID) (*models.Post, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := fn(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, op, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

// PostDuplicate creates a draft copy owned by the caller.
func (a *API) PostDuplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	p, err := a.posts.Duplicate(r.Context(), id, &sess.UserID)
	if err != nil {
		writeStoreError(w, r, "duplicate post", err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

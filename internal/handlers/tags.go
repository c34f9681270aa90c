package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/models"
)

// defaultTagLimit applies to the popular and search endpoints.
const defaultTagLimit = 10

// TagsList returns all tags with post counts.
func (a *API) TagsList(w http.ResponseWriter, r *http.Request) {
	tags, err := a.tags.List(r.Context())
	if err != nil {
		writeStoreError(w, r, "list tags", err)
		return
	}
	writeData(w, http.StatusOK, tags)
}

// TagsPopular returns the most used tags (?limit=, default 10).
func (a *API) TagsPopular(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultTagLimit, 100)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tags, err := a.tags.Popular(r.Context(), limit)
	if err != nil {
		writeStoreError(w, r, "popular tags", err)
		return
	}
	writeData(w, http.StatusOK, tags)
}

// TagsSearch matches tag names against ?q=.
func (a *API) TagsSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultTagLimit, 100)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	tags, err := a.tags.Search(r.Context(), q, limit)
	if err != nil {
		writeStoreError(w, r, "search tags", err)
		return
	}
	writeData(w, http.StatusOK, tags)
}

// TagGet returns one tag by id.
func (a *API) TagGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tag, err := a.tags.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "get tag", err)
		return
	}
	writeData(w, http.StatusOK, tag)
}

// TagBySlug returns one tag by slug.
func (a *API) TagBySlug(w http.ResponseWriter, r *http.Request) {
	tag, err := a.tags.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, r, "get tag", err)
		return
	}
	writeData(w, http.StatusOK, tag)
}

// TagCreate creates a tag.
func (a *API) TagCreate(w http.ResponseWriter, r *http.Request) {
	var in models.TagInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validateTagInput(&in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	tag, err := a.tags.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "create tag", err)
		return
	}
	writeData(w, http.StatusCreated, tag)
}

// TagUpdate applies a partial update.
func (a *API) TagUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var p models.TagPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validateTagPatch(&p); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	tag, err := a.tags.Update(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, r, "update tag", err)
		return
	}
	writeData(w, http.StatusOK, tag)
}

// TagDelete removes a tag and its post associations.
func (a *API) TagDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.tags.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, "delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

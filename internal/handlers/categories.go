package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/models"
)

// CategoriesList returns every category with its post count.
func (a *API) CategoriesList(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		writeStoreError(w, r, "list categories", err)
		return
	}
	writeData(w, http.StatusOK, cats)
}

// CategoriesTree returns the categories as a nested forest.
func (a *API) CategoriesTree(w http.ResponseWriter, r *http.Request) {
	tree, err := a.categories.Tree(r.Context())
	if err != nil {
		writeStoreError(w, r, "category tree", err)
		return
	}
	writeData(w, http.StatusOK, tree)
}

// CategoryGet returns one category by id.
func (a *API) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cat, err := a.categories.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "get category", err)
		return
	}
	writeData(w, http.StatusOK, cat)
}

// CategoryBySlug returns one category by slug.
func (a *API) CategoryBySlug(w http.ResponseWriter, r *http.Request) {
	cat, err := a.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, r, "get category", err)
		return
	}
	writeData(w, http.StatusOK, cat)
}

// CategoryCreate creates a category. The slug is derived from the name
// when omitted.
func (a *API) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validateCategoryInput(&in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	cat, err := a.categories.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "create category", err)
		return
	}
	writeData(w, http.StatusCreated, cat)
}

// CategoryUpdate applies a partial update.
func (a *API) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var p models.CategoryPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validateCategoryPatch(&p); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	cat, err := a.categories.Update(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, r, "update category", err)
		return
	}
	writeData(w, http.StatusOK, cat)
}

// CategoryDelete removes a category, detaching its children and posts.
func (a *API) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"
	"strings"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
)

const (
	maxUsernameLen    = 50
	minPasswordLength = 8
)

// UsersList returns all staff accounts.
func (a *API) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		writeStoreError(w, r, "list users", err)
		return
	}
	writeData(w, http.StatusOK, users)
}

// UserGet returns one staff account.
func (a *API) UserGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "get user", err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func validateUserInput(in *models.UserInput) fieldErrors {
	errs := fieldErrors{}
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	errs.required("email", in.Email, maxEmailLen)
	if in.Email != "" {
		errs.email("email", in.Email)
	}
	errs.required("username", in.Username, maxUsernameLen)
	errs.maxLen("first_name", in.FirstName, maxNameLen)
	errs.maxLen("last_name", in.LastName, maxNameLen)
	if len(in.Password) < minPasswordLength {
		errs.add("password", "must be at least 8 characters")
	}
	if in.Role != "" && !in.Role.Valid() {
		errs.add("role", "must be admin, editor or author")
	}
	return errs
}

// UserCreate adds a staff account. The role falls back to the site's
// default_user_role.
func (a *API) UserCreate(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := validateUserInput(&in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	if in.Role == "" {
		st, err := a.settings.Get(r.Context())
		if err != nil {
			writeStoreError(w, r, "load settings", err)
			return
		}
		in.Role = st.DefaultUserRole
	}

	u, err := a.users.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "create user", err)
		return
	}
	writeData(w, http.StatusCreated, u)
}

// UserSetActive enables or disables login for an account.
func (a *API) UserSetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if body.Active == nil {
		writeValidation(w, fieldErrors{"active": "is required"})
		return
	}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.UserID == id && !*body.Active {
		writeError(w, http.StatusUnprocessableEntity, "invalid_operation", "cannot deactivate your own account", nil)
		return
	}

	if err := a.users.SetActive(r.Context(), id, *body.Active); err != nil {
		writeStoreError(w, r, "set user active", err)
		return
	}
	u, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "get user", err)
		return
	}
	writeData(w, http.StatusOK, u)
}

// UserDelete removes an account that owns no content.
func (a *API) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.UserID == id {
		writeError(w, http.StatusUnprocessableEntity, "invalid_operation", "cannot delete your own account", nil)
		return
	}
	if err := a.users.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

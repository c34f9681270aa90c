package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quillpress/internal/middleware"
	"quillpress/internal/session"
	"quillpress/internal/store"
)

// Auth groups the session endpoints.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeValidation(w, fieldErrors{"credentials": "email and password are required"})
		return
	}

	user, err := a.userStore.FindByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeStoreError(w, r, "login lookup", err)
		return
	}

	// Unknown email, wrong password and disabled accounts look the same.
	if user == nil || !user.IsActive || !a.userStore.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password", nil)
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName(),
		Role:        string(user.Role),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	writeData(w, http.StatusOK, user)
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the account behind the current session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		writeStoreError(w, r, "current user", err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// CSRF hands the double-submit token to API clients that cannot read
// cookies.
func (a *Auth) CSRF(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{
		"token": middleware.CSRFTokenFromCtx(r.Context()),
	})
}

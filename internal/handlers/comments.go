package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"quillpress/internal/models"
	"quillpress/internal/sanitize"
	"quillpress/internal/store"
)

// defaultPendingLimit caps the moderation queue endpoint.
const defaultPendingLimit = 20

// redactEmails blanks commenter emails for anonymous readers.
func redactEmails(comments []models.Comment) {
	for i := range comments {
		comments[i].AuthorEmail = ""
	}
}

// CommentCreate accepts a comment. Markup is stripped from the name and
// body, and the comment always starts pending. Anonymous callers may only
// comment on published posts; staff may also comment on drafts.
func (a *API) CommentCreate(w http.ResponseWriter, r *http.Request) {
	var in models.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	in.AuthorName = sanitize.Text(in.AuthorName)
	in.Content = sanitize.Text(in.Content)
	if errs := validateCommentInput(&in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	create := a.comments.Create
	if isStaff(r) {
		create = a.comments.CreateAsStaff
	}
	c, err := create(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "create comment", err)
		return
	}
	if !isStaff(r) {
		c.AuthorEmail = ""
	}
	writeData(w, http.StatusCreated, c)
}

// PostComments lists a post's comments. Anonymous readers see approved
// comments only; staff may filter with ?status=. ?threaded=true nests
// replies under their parents.
func (a *API) PostComments(w http.ResponseWriter, r *http.Request) {
	p := a.loadVisiblePost(w, r)
	if p == nil {
		return
	}

	status := models.CommentStatusApproved
	if isStaff(r) {
		status = models.CommentStatus(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			writeBadRequest(w, "unknown comment status")
			return
		}
	}

	comments, err := a.comments.ListByPost(r.Context(), p.ID, status)
	if err != nil {
		writeStoreError(w, r, "list post comments", err)
		return
	}
	if !isStaff(r) {
		redactEmails(comments)
	}

	if r.URL.Query().Get("threaded") == "true" {
		writeData(w, http.StatusOK, store.ThreadComments(comments))
		return
	}
	writeData(w, http.StatusOK, comments)
}

// CommentsList pages through all comments, optionally filtered by ?status=.
func (a *API) CommentsList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", store.DefaultPage)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	limit, err := queryLimit(r, store.DefaultLimit, store.MaxLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if page < 1 {
		writeBadRequest(w, "page must be at least 1")
		return
	}
	status := models.CommentStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeBadRequest(w, "unknown comment status")
		return
	}

	comments, pg, err := a.comments.List(r.Context(), page, limit, status)
	if err != nil {
		writeStoreError(w, r, "list comments", err)
		return
	}
	writePage(w, comments, pg)
}

// CommentsPending returns the oldest pending comments first.
func (a *API) CommentsPending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultPendingLimit, store.MaxLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	comments, err := a.comments.Pending(r.Context(), limit)
	if err != nil {
		writeStoreError(w, r, "pending comments", err)
		return
	}
	writeData(w, http.StatusOK, comments)
}

// CommentGet returns one comment.
func (a *API) CommentGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := a.comments.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "get comment", err)
		return
	}
	writeData(w, http.StatusOK, c)
}

// CommentSetStatus moves a comment to any status given as {"status": "..."}.
func (a *API) CommentSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.CommentStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if !body.Status.Valid() {
		writeValidation(w, fieldErrors{"status": "must be pending, approved, rejected or spam"})
		return
	}
	c, err := a.comments.SetStatus(r.Context(), id, body.Status)
	if err != nil {
		writeStoreError(w, r, "set comment status", err)
		return
	}
	writeData(w, http.StatusOK, c)
}

// CommentApprove marks a comment approved.
func (a *API) CommentApprove(w http.ResponseWriter, r *http.Request) {
	a.moderate(w, r, "approve comment", a.comments.Approve)
}

// CommentReject marks a comment rejected.
func (a *API) CommentReject(w http.ResponseWriter, r *http.Request) {
	a.moderate(w, r, "reject comment", a.comments.Reject)
}

// CommentSpam marks a comment as spam.
func (a *API) CommentSpam(w http.ResponseWriter, r *http.Request) {
	a.moderate(w, r, "mark comment spam", a.comments.MarkSpam)
}

func (a *API) moderate(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, id uuid.UUID) (*models.Comment, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := fn(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, op, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

// CommentDelete removes a comment; replies follow COMMENT_DELETE_POLICY.
func (a *API) CommentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.comments.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, "delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

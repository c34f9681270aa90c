// api_test.go contains handler integration tests for the content API.
// Tests exercise a real database; they are skipped when it is unavailable.
package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"quillpress/internal/models"
)

func TestCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	editor := sessionFor(env.testUser(t, models.RoleEditor, "editor-password"))
	name := "Handlers " + uuid.NewString()[:8]

	rr := call(t, env.API.CategoryCreate, "POST", "/api/categories", map[string]any{"name": name}, editor)
	expectStatus(t, rr, http.StatusCreated)
	var cat models.Category
	decodeData(t, rr, &cat)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM categories WHERE id = $1", cat.ID) })

	if !strings.HasPrefix(cat.Slug, "handlers-") {
		t.Errorf("slug = %q, want derived from name", cat.Slug)
	}

	// Same slug again conflicts.
	rr = call(t, env.API.CategoryCreate, "POST", "/api/categories",
		map[string]any{"name": "Other", "slug": cat.Slug}, editor)
	expectStatus(t, rr, http.StatusConflict)

	rr = call(t, env.API.CategoryBySlug, "GET", "/api/categories/slug/"+cat.Slug, nil, nil, "slug", cat.Slug)
	expectStatus(t, rr, http.StatusOK)

	rr = call(t, env.API.CategoryUpdate, "PUT", "/api/categories/"+cat.ID.String(),
		map[string]any{"description": "About handlers"}, editor, "id", cat.ID.String())
	expectStatus(t, rr, http.StatusOK)
	var updated models.Category
	decodeData(t, rr, &updated)
	if updated.Description == nil || *updated.Description != "About handlers" {
		t.Errorf("description not updated: %+v", updated.Description)
	}

	// A category cannot be its own parent.
	rr = call(t, env.API.CategoryUpdate, "PUT", "/api/categories/"+cat.ID.String(),
		map[string]any{"parent_id": cat.ID}, editor, "id", cat.ID.String())
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = call(t, env.API.CategoryDelete, "DELETE", "/api/categories/"+cat.ID.String(), nil, editor, "id", cat.ID.String())
	expectStatus(t, rr, http.StatusNoContent)

	rr = call(t, env.API.CategoryGet, "GET", "/api/categories/"+cat.ID.String(), nil, nil, "id", cat.ID.String())
	expectStatus(t, rr, http.StatusNotFound)
	if e := decodeError(t, rr); e.Code != "not_found" {
		t.Errorf("code = %q, want not_found", e.Code)
	}
}

func TestCategoryCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	editor := sessionFor(env.testUser(t, models.RoleEditor, "editor-password"))

	rr := call(t, env.API.CategoryCreate, "POST", "/api/categories", map[string]any{"name": ""}, editor)
	expectStatus(t, rr, http.StatusUnprocessableEntity)
	e := decodeError(t, rr)
	if e.Code != "validation_error" || e.Details["name"] == "" {
		t.Errorf("unexpected error: %+v", e)
	}

	rr = call(t, env.API.CategoryCreate, "POST", "/api/categories", map[string]any{"title": "x"}, editor)
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestPostVisibility(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, models.RoleAuthor, "author-password")
	other := env.testUser(t, models.RoleAuthor, "author-password")
	sess := sessionFor(author)
	title := "Visibility " + uuid.NewString()[:8]

	// Authors cannot create posts on behalf of someone else.
	rr := call(t, env.API.PostCreate, "POST", "/api/posts",
		map[string]any{"title": title, "content": "Hello **world**", "author_id": other.ID}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var p models.Post
	decodeData(t, rr, &p)

	if p.AuthorID != author.ID {
		t.Errorf("author = %s, want session user %s", p.AuthorID, author.ID)
	}
	if p.Status != models.PostStatusDraft {
		t.Errorf("status = %q, want draft", p.Status)
	}

	id := p.ID.String()
	rr = call(t, env.API.PostGet, "GET", "/api/posts/"+id, nil, nil, "id", id)
	expectStatus(t, rr, http.StatusNotFound)

	rr = call(t, env.API.PostBySlug, "GET", "/api/posts/slug/"+p.Slug, nil, nil, "slug", p.Slug)
	expectStatus(t, rr, http.StatusNotFound)

	rr = call(t, env.API.PostGet, "GET", "/api/posts/"+id, nil, sess, "id", id)
	expectStatus(t, rr, http.StatusOK)

	rr = call(t, env.API.PostPublish, "POST", "/api/posts/"+id+"/publish", nil, sess, "id", id)
	expectStatus(t, rr, http.StatusOK)
	decodeData(t, rr, &p)
	if p.PublishedAt == nil {
		t.Error("published_at not set on publish")
	}

	rr = call(t, env.API.PostGet, "GET", "/api/posts/"+id, nil, nil, "id", id)
	expectStatus(t, rr, http.StatusOK)
}

func TestPostsListForcesPublishedForPublic(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, models.RoleAuthor, "author-password")
	sess := sessionFor(author)
	marker := "zebracorn" + uuid.NewString()[:6]

	for _, status := range []string{"draft", "published"} {
		rr := call(t, env.API.PostCreate, "POST", "/api/posts",
			map[string]any{"title": marker + " " + status, "status": status}, sess)
		expectStatus(t, rr, http.StatusCreated)
	}

	rr := call(t, env.API.PostsList, "GET", "/api/posts?status=draft&q="+marker, nil, nil)
	expectStatus(t, rr, http.StatusOK)
	var public []models.Post
	decodeData(t, rr, &public)
	if len(public) != 1 || public[0].Status != models.PostStatusPublished {
		t.Errorf("public list = %+v, want only the published post", public)
	}

	rr = call(t, env.API.PostsList, "GET", "/api/posts?q="+marker, nil, sess)
	expectStatus(t, rr, http.StatusOK)
	var staff []models.Post
	decodeData(t, rr, &staff)
	if len(staff) != 2 {
		t.Errorf("staff list has %d posts, want 2", len(staff))
	}

	rr = call(t, env.API.PostsList, "GET", "/api/posts?category_id=nope", nil, nil)
	expectStatus(t, rr, http.StatusBadRequest)

	for _, q := range []string{"limit=0", "limit=500", "page=0", "sort_by=secret", "sort_order=up"} {
		rr = call(t, env.API.PostsList, "GET", "/api/posts?"+q, nil, nil)
		expectStatus(t, rr, http.StatusUnprocessableEntity)
		if e := decodeError(t, rr); e.Code != "validation_error" {
			t.Errorf("%s: code = %q, want validation_error", q, e.Code)
		}
	}
}

func TestPostDuplicate(t *testing.T) {
	env := newTestEnv(t)
	editor := env.testUser(t, models.RoleEditor, "editor-password")
	sess := sessionFor(editor)

	rr := call(t, env.API.PostCreate, "POST", "/api/posts",
		map[string]any{"title": "Original " + uuid.NewString()[:8], "status": "published"}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var orig models.Post
	decodeData(t, rr, &orig)

	id := orig.ID.String()
	rr = call(t, env.API.PostDuplicate, "POST", "/api/posts/"+id+"/duplicate", nil, sess, "id", id)
	expectStatus(t, rr, http.StatusCreated)
	var dup models.Post
	decodeData(t, rr, &dup)

	if dup.Title != orig.Title+" (Copy)" {
		t.Errorf("title = %q", dup.Title)
	}
	if dup.Slug != orig.Slug+"-copy" {
		t.Errorf("slug = %q", dup.Slug)
	}
	if dup.Status != models.PostStatusDraft || dup.PublishedAt != nil {
		t.Errorf("duplicate should be an unpublished draft: %+v", dup)
	}
}

func TestCommentFlow(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, models.RoleAuthor, "author-password")
	moderator := sessionFor(env.testUser(t, models.RoleEditor, "editor-password"))
	sess := sessionFor(author)

	rr := call(t, env.API.PostCreate, "POST", "/api/posts",
		map[string]any{"title": "Comments " + uuid.NewString()[:8], "status": "published"}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var p models.Post
	decodeData(t, rr, &p)
	pid := p.ID.String()

	rr = call(t, env.API.CommentCreate, "POST", "/api/comments", map[string]any{
		"post_id":      p.ID,
		"author_name":  "<b>Reader</b>",
		"author_email": "reader@example.com",
		"content":      "Great <script>alert(1)</script>post",
	}, nil)
	expectStatus(t, rr, http.StatusCreated)
	var c models.Comment
	decodeData(t, rr, &c)

	if c.Status != models.CommentStatusPending {
		t.Errorf("status = %q, want pending", c.Status)
	}
	if c.AuthorEmail != "" {
		t.Errorf("email leaked to anonymous caller: %q", c.AuthorEmail)
	}
	if strings.Contains(c.AuthorName, "<") || strings.Contains(c.Content, "<script") {
		t.Errorf("markup not stripped: %q / %q", c.AuthorName, c.Content)
	}

	// Pending comments are hidden from readers.
	rr = call(t, env.API.PostComments, "GET", "/api/posts/"+pid+"/comments", nil, nil, "id", pid)
	expectStatus(t, rr, http.StatusOK)
	var listed []models.Comment
	decodeData(t, rr, &listed)
	if len(listed) != 0 {
		t.Errorf("public saw %d unapproved comments", len(listed))
	}

	cid := c.ID.String()
	rr = call(t, env.API.CommentApprove, "POST", "/api/comments/"+cid+"/approve", nil, moderator, "id", cid)
	expectStatus(t, rr, http.StatusOK)

	rr = call(t, env.API.PostComments, "GET", "/api/posts/"+pid+"/comments", nil, nil, "id", pid)
	expectStatus(t, rr, http.StatusOK)
	decodeData(t, rr, &listed)
	if len(listed) != 1 || listed[0].AuthorEmail != "" {
		t.Errorf("public list = %+v, want one redacted comment", listed)
	}

	rr = call(t, env.API.PostComments, "GET", "/api/posts/"+pid+"/comments", nil, moderator, "id", pid)
	decodeData(t, rr, &listed)
	if len(listed) != 1 || listed[0].AuthorEmail != "reader@example.com" {
		t.Errorf("staff list = %+v, want email visible", listed)
	}

	rr = call(t, env.API.CommentSetStatus, "PUT", "/api/comments/"+cid+"/status",
		map[string]string{"status": "bogus"}, moderator, "id", cid)
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = call(t, env.API.CommentDelete, "DELETE", "/api/comments/"+cid, nil, moderator, "id", cid)
	expectStatus(t, rr, http.StatusNoContent)
}

func TestCommentOnDraftStaffOnly(t *testing.T) {
	env := newTestEnv(t)
	sess := sessionFor(env.testUser(t, models.RoleAuthor, "author-password"))

	rr := call(t, env.API.PostCreate, "POST", "/api/posts", map[string]any{"title": "Draft " + uuid.NewString()[:8]}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var p models.Post
	decodeData(t, rr, &p)

	rr = call(t, env.API.CommentCreate, "POST", "/api/comments", map[string]any{
		"post_id":      p.ID,
		"author_name":  "Reader",
		"author_email": "reader@example.com",
		"content":      "Early bird",
	}, nil)
	expectStatus(t, rr, http.StatusUnprocessableEntity)
	if e := decodeError(t, rr); e.Code != "invalid_operation" {
		t.Errorf("code = %q, want invalid_operation", e.Code)
	}

	rr = call(t, env.API.CommentCreate, "POST", "/api/comments", map[string]any{
		"post_id":      p.ID,
		"author_name":  "Reviewer",
		"author_email": "reviewer@example.com",
		"content":      "Tighten the intro",
	}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var c models.Comment
	decodeData(t, rr, &c)
	if c.PostID != p.ID || c.Status != models.CommentStatusPending {
		t.Errorf("staff comment on draft = %+v", c)
	}
}

func TestSettingsGetRedactsAdminEmail(t *testing.T) {
	env := newTestEnv(t)
	admin := sessionFor(env.testUser(t, models.RoleAdmin, "admin-password"))

	rr := call(t, env.API.SettingsGet, "GET", "/api/settings", nil, nil)
	expectStatus(t, rr, http.StatusOK)
	var public models.SiteSettings
	decodeData(t, rr, &public)
	if public.AdminEmail != "" {
		t.Errorf("admin email visible to public: %q", public.AdminEmail)
	}

	rr = call(t, env.API.SettingsGet, "GET", "/api/settings", nil, admin)
	expectStatus(t, rr, http.StatusOK)
	var staff models.SiteSettings
	decodeData(t, rr, &staff)
	if staff.AdminEmail == "" {
		t.Error("admin email hidden from staff")
	}

	rr = call(t, env.API.SettingsUpdate, "PUT", "/api/settings", map[string]any{"posts_per_page": 0}, admin)
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = call(t, env.API.SettingsValidate, "POST", "/api/settings/validate", map[string]any{"timezone": "Nowhere/City"}, admin)
	expectStatus(t, rr, http.StatusOK)
	var result struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	decodeData(t, rr, &result)
	if result.Valid || result.Errors["timezone"] == "" {
		t.Errorf("unexpected validation result: %+v", result)
	}
}

func TestFeedsAndSitemap(t *testing.T) {
	env := newTestEnv(t)
	sess := sessionFor(env.testUser(t, models.RoleAuthor, "author-password"))
	title := "Feedable " + uuid.NewString()[:8]

	rr := call(t, env.API.PostCreate, "POST", "/api/posts",
		map[string]any{"title": title, "content": "Some *markdown*", "status": "published"}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var p models.Post
	decodeData(t, rr, &p)

	rr = call(t, env.API.FeedRSS, "GET", "/feed/rss?limit=100", nil, nil)
	expectStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("rss content-type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), title) {
		t.Error("rss feed missing the new post")
	}

	rr = call(t, env.API.FeedAtom, "GET", "/feed/atom", nil, nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `<feed xmlns="http://www.w3.org/2005/Atom"`) {
		t.Errorf("not an atom document: %.200s", rr.Body.String())
	}

	missing := uuid.NewString()
	rr = call(t, env.API.FeedCategory, "GET", "/feed/category/"+missing, nil, nil, "id", missing)
	expectStatus(t, rr, http.StatusNotFound)

	rr = call(t, env.API.Sitemap, "GET", "/sitemap.xml", nil, nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), p.Slug) {
		t.Error("sitemap missing the new post")
	}

	rr = call(t, env.API.Robots, "GET", "/robots.txt", nil, nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "Sitemap:") {
		t.Errorf("robots.txt missing sitemap line: %s", rr.Body.String())
	}
}

func TestScopedFeedsWithoutPublishedPosts(t *testing.T) {
	env := newTestEnv(t)
	editor := sessionFor(env.testUser(t, models.RoleEditor, "editor-password"))
	sfx := uuid.NewString()[:8]

	rr := call(t, env.API.CategoryCreate, "POST", "/api/categories", map[string]any{"name": "Quiet " + sfx}, editor)
	expectStatus(t, rr, http.StatusCreated)
	var cat models.Category
	decodeData(t, rr, &cat)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM categories WHERE id = $1", cat.ID) })

	rr = call(t, env.API.TagCreate, "POST", "/api/tags", map[string]any{"name": "quiet-" + sfx}, editor)
	expectStatus(t, rr, http.StatusCreated)
	var tag models.Tag
	decodeData(t, rr, &tag)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM tags WHERE id = $1", tag.ID) })

	author := env.testUser(t, models.RoleAuthor, "author-password")
	catID, tagID, authorID := cat.ID.String(), tag.ID.String(), author.ID.String()

	feeds := []struct {
		name string
		h    http.HandlerFunc
		path string
		id   string
	}{
		{"category", env.API.FeedCategory, "/feed/category/", catID},
		{"tag", env.API.FeedTag, "/feed/tag/", tagID},
		{"author", env.API.FeedAuthor, "/feed/author/", authorID},
	}
	expectEmpty := func(t *testing.T) {
		t.Helper()
		for _, f := range feeds {
			rr := call(t, f.h, "GET", f.path+f.id, nil, nil, "id", f.id)
			expectStatus(t, rr, http.StatusNotFound)
			if e := decodeError(t, rr); e.Code != "not_found" {
				t.Errorf("%s feed: code = %q, want not_found", f.name, e.Code)
			}
		}
	}

	// Scopes exist but nothing is attached yet.
	expectEmpty(t)

	sess := sessionFor(author)
	rr = call(t, env.API.PostCreate, "POST", "/api/posts", map[string]any{
		"title":       "Unreleased " + sfx,
		"content":     "Not yet",
		"category_id": cat.ID,
		"tag_ids":     []uuid.UUID{tag.ID},
	}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var p models.Post
	decodeData(t, rr, &p)
	if p.Status != models.PostStatusDraft {
		t.Fatalf("status = %q, want draft", p.Status)
	}

	// Only a draft in each scope.
	expectEmpty(t)

	pid := p.ID.String()
	rr = call(t, env.API.PostPublish, "POST", "/api/posts/"+pid+"/publish", nil, sess, "id", pid)
	expectStatus(t, rr, http.StatusOK)

	for _, f := range feeds {
		rr := call(t, f.h, "GET", f.path+f.id, nil, nil, "id", f.id)
		expectStatus(t, rr, http.StatusOK)
		if !strings.Contains(rr.Body.String(), "Unreleased "+sfx) {
			t.Errorf("%s feed missing the published post", f.name)
		}
	}
}

func TestSEOEndpoints(t *testing.T) {
	env := newTestEnv(t)
	sess := sessionFor(env.testUser(t, models.RoleAuthor, "author-password"))

	rr := call(t, env.API.PostCreate, "POST", "/api/posts",
		map[string]any{"title": "SEO " + uuid.NewString()[:8], "status": "published"}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var p models.Post
	decodeData(t, rr, &p)
	id := p.ID.String()

	rr = call(t, env.API.SEOCanonical, "GET", "/api/seo/posts/"+id+"/canonical", nil, nil, "id", id)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "/posts/"+p.Slug) {
		t.Errorf("canonical missing post slug: %s", rr.Body.String())
	}

	rr = call(t, env.API.SEOStructuredData, "GET", "/api/seo/posts/"+id+"/structured-data", nil, nil, "id", id)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "BlogPosting") {
		t.Errorf("structured data missing BlogPosting: %s", rr.Body.String())
	}

	rr = call(t, env.API.SEOAnalyzePost, "GET", "/api/seo/posts/"+id+"/analyze", nil, sess, "id", id)
	expectStatus(t, rr, http.StatusOK)
}

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testUser(t, models.RoleAdmin, "admin-password")
	sess := sessionFor(admin)
	sfx := uuid.NewString()[:8]

	rr := call(t, env.API.UserCreate, "POST", "/api/users", map[string]any{
		"email": "new-" + sfx + "@example.com", "username": "new-" + sfx, "password": "short",
	}, sess)
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = call(t, env.API.UserCreate, "POST", "/api/users", map[string]any{
		"email": "new-" + sfx + "@example.com", "username": "new-" + sfx, "password": "long-enough-pw",
	}, sess)
	expectStatus(t, rr, http.StatusCreated)
	var u models.User
	decodeData(t, rr, &u)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	if !u.Role.Valid() {
		t.Errorf("role = %q, want site default", u.Role)
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Error("password hash serialized")
	}

	uid := u.ID.String()
	rr = call(t, env.API.UserSetActive, "PUT", "/api/users/"+uid+"/active", map[string]bool{"active": false}, sess, "id", uid)
	expectStatus(t, rr, http.StatusOK)

	self := admin.ID.String()
	rr = call(t, env.API.UserDelete, "DELETE", "/api/users/"+self, nil, sess, "id", self)
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = call(t, env.API.UserDelete, "DELETE", "/api/users/"+uid, nil, sess, "id", uid)
	expectStatus(t, rr, http.StatusNoContent)
}

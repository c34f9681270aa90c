package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"quillpress/internal/models"
	"quillpress/internal/seo"
	"quillpress/internal/store"
)

// featuredImageURL resolves the public URL of a post's featured image, or
// "" when there is none or storage is disabled.
func (a *API) featuredImageURL(ctx context.Context, p *models.Post) string {
	if p.FeaturedImageID == nil || a.storage == nil {
		return ""
	}
	m, err := a.media.FindByID(ctx, *p.FeaturedImageID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("featured image lookup failed", "post_id", p.ID, "error", err)
		}
		return ""
	}
	return a.storage.FileURL(m.FilePath)
}

// SEOMetadata returns title, description, canonical URL, OpenGraph and
// Twitter tags for a post.
func (a *API) SEOMetadata(w http.ResponseWriter, r *http.Request) {
	p := a.loadVisiblePost(w, r)
	if p == nil {
		return
	}
	st, err := a.settings.Get(r.Context())
	if err != nil {
		writeStoreError(w, r, "load settings", err)
		return
	}
	writeData(w, http.StatusOK, seo.BuildMeta(p, seo.SiteFromSettings(st), a.featuredImageURL(r.Context(), p)))
}

// SEOStructuredData returns the schema.org BlogPosting JSON-LD for a post.
func (a *API) SEOStructuredData(w http.ResponseWriter, r *http.Request) {
	p := a.loadVisiblePost(w, r)
	if p == nil {
		return
	}
	ctx := r.Context()
	st, err := a.settings.Get(ctx)
	if err != nil {
		writeStoreError(w, r, "load settings", err)
		return
	}

	var authorName, categoryName string
	if u, err := a.users.FindByID(ctx, p.AuthorID); err == nil {
		authorName = u.DisplayName()
	} else if !errors.Is(err, store.ErrNotFound) {
		writeStoreError(w, r, "load author", err)
		return
	}
	if p.CategoryID != nil {
		if c, err := a.categories.FindByID(ctx, *p.CategoryID); err == nil {
			categoryName = c.Name
		} else if !errors.Is(err, store.ErrNotFound) {
			writeStoreError(w, r, "load category", err)
			return
		}
	}

	doc := seo.BuildStructuredData(p, seo.SiteFromSettings(st), authorName, categoryName, a.featuredImageURL(ctx, p))
	writeData(w, http.StatusOK, doc)
}

// SEOCanonical returns the canonical URL of a post.
func (a *API) SEOCanonical(w http.ResponseWriter, r *http.Request) {
	p := a.loadVisiblePost(w, r)
	if p == nil {
		return
	}
	st, err := a.settings.Get(r.Context())
	if err != nil {
		writeStoreError(w, r, "load settings", err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"canonical_url": seo.CanonicalURL(p, st.SiteURL)})
}

// SEOAnalyzePost scores a stored post.
func (a *API) SEOAnalyzePost(w http.ResponseWriter, r *http.Request) {
	p := a.loadVisiblePost(w, r)
	if p == nil {
		return
	}
	writeData(w, http.StatusOK, seo.Analyze(p))
}

// SEOAnalyze scores an unsaved draft sent in the body.
func (a *API) SEOAnalyze(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title           string  `json:"title"`
		Slug            string  `json:"slug"`
		Content         string  `json:"content"`
		Excerpt         *string `json:"excerpt"`
		MetaTitle       *string `json:"meta_title"`
		MetaDescription *string `json:"meta_description"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	p := &models.Post{
		Title:           in.Title,
		Slug:            in.Slug,
		Content:         in.Content,
		Excerpt:         in.Excerpt,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
	}
	writeData(w, http.StatusOK, seo.Analyze(p))
}

// Sitemap serves sitemap.xml with the homepage, published posts, and every
// category and tag that has posts.
func (a *API) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := a.settings.Get(ctx)
	if err != nil {
		writeStoreError(w, r, "load settings", err)
		return
	}
	posts, err := a.posts.Published(ctx)
	if err != nil {
		writeStoreError(w, r, "sitemap posts", err)
		return
	}
	cats, err := a.categories.List(ctx)
	if err != nil {
		writeStoreError(w, r, "sitemap categories", err)
		return
	}
	tags, err := a.tags.List(ctx)
	if err != nil {
		writeStoreError(w, r, "sitemap tags", err)
		return
	}

	b := seo.NewSitemapBuilder(st.SiteURL)
	b.AddHomepage()
	for _, p := range posts {
		b.AddPost(p.Slug, p.UpdatedAt)
	}
	for _, c := range cats {
		if c.PostCount > 0 {
			b.AddCategory(c.Slug, c.UpdatedAt)
		}
	}
	for _, t := range tags {
		if t.PostCount > 0 {
			b.AddTag(t.Slug, t.UpdatedAt)
		}
	}

	out, err := b.Build()
	if err != nil {
		writeStoreError(w, r, "build sitemap", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(out)
}

// Robots serves robots.txt pointing at the sitemap.
func (a *API) Robots(w http.ResponseWriter, r *http.Request) {
	st, err := a.settings.Get(r.Context())
	if err != nil {
		writeStoreError(w, r, "load settings", err)
		return
	}
	body := seo.NewRobotsBuilder(seo.RobotsConfig{SiteURL: st.SiteURL}).Build()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}

// Package seo builds search-engine metadata for posts: meta tags, JSON-LD
// structured data, content analysis, sitemaps and robots.txt.
package seo

import (
	"strings"
	"time"

	"quillpress/internal/models"
	"quillpress/internal/sanitize"
)

// DescriptionLength is the longest meta description search engines show.
const DescriptionLength = 160

// Site carries the site-wide values metadata falls back to.
type Site struct {
	Name        string
	Description string
	URL         string
	Language    string
}

// SiteFromSettings converts stored settings into a Site.
func SiteFromSettings(st *models.SiteSettings) Site {
	return Site{
		Name:        st.SiteName,
		Description: st.SiteDescription,
		URL:         strings.TrimRight(st.SiteURL, "/"),
		Language:    st.Language,
	}
}

// Meta holds the tags a client renders into a post page's <head>.
type Meta struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Keywords    []string          `json:"keywords"`
	Canonical   string            `json:"canonical"`
	Robots      string            `json:"robots"`
	OpenGraph   map[string]string `json:"open_graph"`
	Twitter     map[string]string `json:"twitter"`
}

// CanonicalURL returns the post's canonical_url, or its address on the site.
func CanonicalURL(p *models.Post, siteURL string) string {
	if p.CanonicalURL != nil && *p.CanonicalURL != "" {
		return *p.CanonicalURL
	}
	return strings.TrimRight(siteURL, "/") + "/posts/" + p.Slug
}

// Description picks meta_description, then the excerpt, then the start of
// the content with markup removed.
func Description(p *models.Post) string {
	if p.MetaDescription != nil && *p.MetaDescription != "" {
		return *p.MetaDescription
	}
	if p.Excerpt != nil && *p.Excerpt != "" {
		return sanitize.Excerpt(*p.Excerpt, DescriptionLength)
	}
	return sanitize.Excerpt(p.Content, DescriptionLength)
}

// Title picks meta_title, falling back to the post title.
func Title(p *models.Post) string {
	if p.MetaTitle != nil && *p.MetaTitle != "" {
		return *p.MetaTitle
	}
	return p.Title
}

// BuildMeta assembles meta tags for a post. imageURL is the absolute URL of
// the featured image, or empty.
func BuildMeta(p *models.Post, site Site, imageURL string) Meta {
	title := Title(p)
	desc := Description(p)
	canonical := CanonicalURL(p, site.URL)

	keywords := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		keywords = append(keywords, t.Name)
	}

	robots := "index,follow"
	if !p.IsPublished() {
		robots = "noindex,nofollow"
	}

	og := map[string]string{
		"og:type":        "article",
		"og:title":       title,
		"og:description": desc,
		"og:url":         canonical,
		"og:site_name":   site.Name,
	}
	if site.Language != "" {
		og["og:locale"] = site.Language
	}
	if p.PublishedAt != nil {
		og["article:published_time"] = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	og["article:modified_time"] = p.UpdatedAt.UTC().Format(time.RFC3339)

	card := "summary"
	if imageURL != "" {
		og["og:image"] = imageURL
		card = "summary_large_image"
	}

	tw := map[string]string{
		"twitter:card":        card,
		"twitter:title":       title,
		"twitter:description": desc,
	}
	if imageURL != "" {
		tw["twitter:image"] = imageURL
	}

	return Meta{
		Title:       title,
		Description: desc,
		Keywords:    keywords,
		Canonical:   canonical,
		Robots:      robots,
		OpenGraph:   og,
		Twitter:     tw,
	}
}

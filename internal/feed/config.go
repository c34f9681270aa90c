// Package feed renders RSS 2.0 and Atom 1.0 documents for published posts.
package feed

import (
	"fmt"
	"strings"
	"time"

	"quillpress/internal/markdown"
	"quillpress/internal/models"
	"quillpress/internal/seo"
)

// DefaultLimit is the number of entries a feed carries when unset.
const DefaultLimit = 20

// Config describes the channel. Empty fields are filled from site settings
// by WithDefaults.
type Config struct {
	Title          string
	Description    string
	Link           string
	Language       string
	Copyright      string
	ManagingEditor string
	WebMaster      string
	Limit          int
}

// WithDefaults fills empty fields from the site settings.
func (c Config) WithDefaults(st *models.SiteSettings) Config {
	if c.Title == "" {
		c.Title = st.SiteName
	}
	if c.Description == "" {
		c.Description = st.SiteDescription
	}
	if c.Link == "" {
		c.Link = st.SiteURL
	}
	c.Link = strings.TrimRight(c.Link, "/")
	if c.Language == "" {
		c.Language = st.Language
	}
	if c.Copyright == "" {
		c.Copyright = fmt.Sprintf("Copyright %d %s", time.Now().Year(), st.SiteName)
	}
	if c.ManagingEditor == "" {
		c.ManagingEditor = st.AdminEmail
	}
	if c.WebMaster == "" {
		c.WebMaster = st.AdminEmail
	}
	if c.Limit < 1 || c.Limit > 100 {
		c.Limit = DefaultLimit
	}
	return c
}

// Scoped returns a copy whose title names the scope, e.g. "Blog - Go".
func (c Config) Scoped(label string) Config {
	if label != "" {
		c.Title = c.Title + " - " + label
	}
	return c
}

// Item is one feed entry, independent of the output format.
type Item struct {
	Title       string
	Link        string
	Description string
	ContentHTML string
	Author      string
	Categories  []string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// NewItem converts a published post into a feed item. The body is rendered
// from Markdown and sanitized.
func NewItem(p *models.Post, siteURL, authorName string) (Item, error) {
	body, err := markdown.Render(p.Content)
	if err != nil {
		return Item{}, fmt.Errorf("render post %s: %w", p.ID, err)
	}

	it := Item{
		Title:       p.Title,
		Link:        seo.CanonicalURL(p, siteURL),
		Description: seo.Description(p),
		ContentHTML: body,
		Author:      authorName,
		UpdatedAt:   p.UpdatedAt,
		PublishedAt: p.UpdatedAt,
	}
	if p.PublishedAt != nil {
		it.PublishedAt = *p.PublishedAt
	}
	for _, t := range p.Tags {
		it.Categories = append(it.Categories, t.Name)
	}
	return it, nil
}

// newest returns the latest update time across items, or now when empty.
func newest(items []Item) time.Time {
	var t time.Time
	for _, it := range items {
		if it.UpdatedAt.After(t) {
			t = it.UpdatedAt
		}
	}
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC()
}

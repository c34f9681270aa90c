package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// SitemapNamespace is the sitemap 0.9 XML namespace.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq is a sitemap change frequency hint.
type ChangeFreq string

const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL is a single <url> entry.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder collects site URLs and renders them as a sitemap.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder returns a builder for URLs under siteURL.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimRight(siteURL, "/"),
		urls:    []SitemapURL{},
	}
}

func (b *SitemapBuilder) add(path string, lastMod time.Time, freq ChangeFreq, priority string) {
	u := SitemapURL{
		Loc:        b.siteURL + path,
		ChangeFreq: freq,
		Priority:   priority,
	}
	if !lastMod.IsZero() {
		u.LastMod = lastMod.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, u)
}

// AddHomepage adds the site root.
func (b *SitemapBuilder) AddHomepage() {
	b.add("/", time.Time{}, ChangeFreqDaily, "1.0")
}

// AddPost adds a published post's page.
func (b *SitemapBuilder) AddPost(slug string, updatedAt time.Time) {
	b.add("/posts/"+slug, updatedAt, ChangeFreqWeekly, "0.8")
}

// AddCategory adds a category archive page.
func (b *SitemapBuilder) AddCategory(slug string, updatedAt time.Time) {
	b.add("/categories/"+slug, updatedAt, ChangeFreqWeekly, "0.6")
}

// AddTag adds a tag archive page.
func (b *SitemapBuilder) AddTag(slug string, updatedAt time.Time) {
	b.add("/tags/"+slug, updatedAt, ChangeFreqMonthly, "0.5")
}

// Len returns the number of URLs added so far.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build renders the sitemap document, XML declaration included.
func (b *SitemapBuilder) Build() ([]byte, error) {
	out, err := xml.MarshalIndent(urlSet{XMLNS: SitemapNamespace, URLs: b.urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

package seo

import (
	"strings"
	"time"

	"quillpress/internal/models"
)

// BlogPosting is schema.org BlogPosting JSON-LD.
type BlogPosting struct {
	Context          string        `json:"@context"`
	Type             string        `json:"@type"`
	Headline         string        `json:"headline"`
	Description      string        `json:"description,omitempty"`
	Image            string        `json:"image,omitempty"`
	DatePublished    string        `json:"datePublished,omitempty"`
	DateModified     string        `json:"dateModified"`
	Author           *Person       `json:"author,omitempty"`
	Publisher        *Organization `json:"publisher"`
	MainEntityOfPage *WebPage      `json:"mainEntityOfPage"`
	Keywords         string        `json:"keywords,omitempty"`
	ArticleSection   string        `json:"articleSection,omitempty"`
	InLanguage       string        `json:"inLanguage,omitempty"`
}

// Person is a schema.org Person.
type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// Organization is a schema.org Organization.
type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// WebPage is a schema.org WebPage reference.
type WebPage struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

// BuildStructuredData returns BlogPosting JSON-LD for a post. authorName and
// categoryName may be empty.
func BuildStructuredData(p *models.Post, site Site, authorName, categoryName, imageURL string) BlogPosting {
	canonical := CanonicalURL(p, site.URL)

	doc := BlogPosting{
		Context:          "https://schema.org",
		Type:             "BlogPosting",
		Headline:         p.Title,
		Description:      Description(p),
		Image:            imageURL,
		DateModified:     p.UpdatedAt.UTC().Format(time.RFC3339),
		Publisher:        &Organization{Type: "Organization", Name: site.Name, URL: site.URL},
		MainEntityOfPage: &WebPage{Type: "WebPage", ID: canonical},
		ArticleSection:   categoryName,
		InLanguage:       site.Language,
	}
	if p.PublishedAt != nil {
		doc.DatePublished = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	if authorName != "" {
		doc.Author = &Person{Type: "Person", Name: authorName}
	}

	kw := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		kw = append(kw, t.Name)
	}
	doc.Keywords = strings.Join(kw, ", ")
	return doc
}

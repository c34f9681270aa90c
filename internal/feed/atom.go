package feed

import (
	"encoding/xml"
	"time"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	XMLNS    string      `xml:"xmlns,attr"`
	Lang     string      `xml:"xml:lang,attr,omitempty"`
	ID       string      `xml:"id"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Updated  string      `xml:"updated"`
	Rights   string      `xml:"rights,omitempty"`
	Links    []atomLink  `xml:"link"`
	Author   *atomPerson `xml:"author,omitempty"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomPerson struct {
	Name  string `xml:"name"`
	Email string `xml:"email,omitempty"`
}

type atomText struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Links      []atomLink     `xml:"link"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Author     *atomPerson    `xml:"author,omitempty"`
	Categories []atomCategory `xml:"category"`
	Summary    *atomText      `xml:"summary,omitempty"`
	Content    *atomText      `xml:"content,omitempty"`
}

// Atom renders an Atom 1.0 document. selfURL is the feed's own address.
func Atom(cfg Config, items []Item, selfURL string) ([]byte, error) {
	feed := atomFeed{
		XMLNS:    atomNamespace,
		Lang:     cfg.Language,
		ID:       cfg.Link + "/",
		Title:    cfg.Title,
		Subtitle: cfg.Description,
		Updated:  newest(items).Format(time.RFC3339),
		Rights:   cfg.Copyright,
		Links: []atomLink{
			{Href: cfg.Link + "/", Rel: "alternate", Type: "text/html"},
		},
		Entries: make([]atomEntry, 0, len(items)),
	}
	if selfURL != "" {
		feed.Links = append(feed.Links, atomLink{Href: selfURL, Rel: "self", Type: "application/atom+xml"})
	}
	if cfg.ManagingEditor != "" {
		feed.Author = &atomPerson{Name: cfg.Title, Email: cfg.ManagingEditor}
	}

	for _, it := range items {
		e := atomEntry{
			ID:        it.Link,
			Title:     it.Title,
			Links:     []atomLink{{Href: it.Link, Rel: "alternate", Type: "text/html"}},
			Published: it.PublishedAt.UTC().Format(time.RFC3339),
			Updated:   it.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if it.Author != "" {
			e.Author = &atomPerson{Name: it.Author}
		}
		for _, c := range it.Categories {
			e.Categories = append(e.Categories, atomCategory{Term: c})
		}
		if it.Description != "" {
			e.Summary = &atomText{Type: "text", Value: it.Description}
		}
		if it.ContentHTML != "" {
			e.Content = &atomText{Type: "html", Value: it.ContentHTML}
		}
		feed.Entries = append(feed.Entries, e)
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

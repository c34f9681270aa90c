package feed

import (
	"encoding/xml"
	"time"
)

const contentNamespace = "http://purl.org/rss/1.0/modules/content/"
const dcNamespace = "http://purl.org/dc/elements/1.1/"

type rssDoc struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	DCNS      string     `xml:"xmlns:dc,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string    `xml:"title"`
	Link           string    `xml:"link"`
	Description    string    `xml:"description"`
	Language       string    `xml:"language,omitempty"`
	Copyright      string    `xml:"copyright,omitempty"`
	ManagingEditor string    `xml:"managingEditor,omitempty"`
	WebMaster      string    `xml:"webMaster,omitempty"`
	LastBuildDate  string    `xml:"lastBuildDate"`
	Generator      string    `xml:"generator"`
	Items          []rssItem `xml:"item"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type rssContent struct {
	XMLName xml.Name `xml:"content:encoded"`
	Value   string   `xml:",cdata"`
}

type rssItem struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	Description string      `xml:"description"`
	Content     *rssContent `xml:"content:encoded,omitempty"`
	Creator     string      `xml:"dc:creator,omitempty"`
	Categories  []string    `xml:"category"`
	GUID        rssGUID     `xml:"guid"`
	PubDate     string      `xml:"pubDate"`
}

// RSS renders an RSS 2.0 document. Every text field is XML-escaped; the
// HTML body goes into content:encoded as CDATA.
func RSS(cfg Config, items []Item) ([]byte, error) {
	ch := rssChannel{
		Title:          cfg.Title,
		Link:           cfg.Link,
		Description:    cfg.Description,
		Language:       cfg.Language,
		Copyright:      cfg.Copyright,
		ManagingEditor: cfg.ManagingEditor,
		WebMaster:      cfg.WebMaster,
		LastBuildDate:  newest(items).Format(time.RFC1123Z),
		Generator:      "quillpress",
		Items:          make([]rssItem, 0, len(items)),
	}

	for _, it := range items {
		ri := rssItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Creator:     it.Author,
			Categories:  it.Categories,
			GUID:        rssGUID{Value: it.Link, IsPermaLink: true},
			PubDate:     it.PublishedAt.UTC().Format(time.RFC1123Z),
		}
		if it.ContentHTML != "" {
			ri.Content = &rssContent{Value: it.ContentHTML}
		}
		ch.Items = append(ch.Items, ri)
	}

	doc := rssDoc{Version: "2.0", ContentNS: contentNamespace, DCNS: dcNamespace, Channel: ch}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

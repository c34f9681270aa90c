package seo

import (
	"strings"
	"unicode/utf8"

	"quillpress/internal/models"
)

// Length thresholds used by Analyze, in characters.
const (
	minContentLength = 300
	minTitleLength   = 30
	maxTitleLength   = 60
)

// Analysis is the outcome of Analyze. Issues are problems that hurt
// indexing; recommendations are improvements.
type Analysis struct {
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// Analyze scores a post's search readiness from 100 down to 0.
func Analyze(p *models.Post) Analysis {
	a := Analysis{Score: 100, Issues: []string{}, Recommendations: []string{}}
	issue := func(points int, msg string) {
		a.Score -= points
		a.Issues = append(a.Issues, msg)
	}
	recommend := func(points int, msg string) {
		a.Score -= points
		a.Recommendations = append(a.Recommendations, msg)
	}

	title := strings.TrimSpace(p.Title)
	content := strings.TrimSpace(p.Content)
	metaDesc := strPtr(p.MetaDescription)
	excerpt := strPtr(p.Excerpt)

	if title == "" {
		issue(20, "Post has no title")
	} else {
		switch n := utf8.RuneCountInString(title); {
		case n < minTitleLength:
			recommend(5, "Title is shorter than 30 characters")
		case n > maxTitleLength:
			recommend(3, "Title is longer than 60 characters and may be truncated")
		}
	}

	if content == "" {
		issue(25, "Post has no content")
	} else if utf8.RuneCountInString(content) < minContentLength {
		recommend(10, "Content is shorter than 300 characters")
	}

	if strings.TrimSpace(p.Slug) == "" {
		issue(15, "Post has no slug")
	} else if strings.Contains(p.Slug, "_") {
		recommend(2, "Use hyphens instead of underscores in the slug")
	}

	switch {
	case metaDesc == "" && excerpt == "":
		issue(15, "Add a meta description or excerpt")
	case utf8.RuneCountInString(metaDesc) > DescriptionLength:
		recommend(8, "Meta description is longer than 160 characters")
	}

	if strPtr(p.MetaTitle) == "" {
		recommend(5, "Add a meta title")
	}

	if a.Score < 0 {
		a.Score = 0
	}
	return a
}

func strPtr(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

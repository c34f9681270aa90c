package seo

import "strings"

// defaultDisallow lists the staff-only paths crawlers should skip.
var defaultDisallow = []string{"/admin/", "/login/", "/dashboard/"}

// RobotsConfig holds configuration for robots.txt generation.
type RobotsConfig struct {
	SiteURL       string   // base URL for the Sitemap line
	DisallowAll   bool     // block every crawler, for staging sites
	DisallowPaths []string // extra paths to disallow
}

// RobotsBuilder builds robots.txt content.
type RobotsBuilder struct {
	config RobotsConfig
}

// NewRobotsBuilder creates a new robots.txt builder.
func NewRobotsBuilder(config RobotsConfig) *RobotsBuilder {
	return &RobotsBuilder{config: config}
}

// Build generates the robots.txt content.
func (b *RobotsBuilder) Build() string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")

	if b.config.DisallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}

	for _, path := range append(append([]string{}, defaultDisallow...), b.config.DisallowPaths...) {
		sb.WriteString("Disallow: " + path + "\n")
	}
	sb.WriteString("Allow: /\n")

	if b.config.SiteURL != "" {
		sb.WriteString("\nSitemap: " + strings.TrimRight(b.config.SiteURL, "/") + "/sitemap.xml\n")
	}
	return sb.String()
}

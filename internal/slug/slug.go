// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and validation.
package slug

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// MaxLength caps generated slugs so they fit the slug columns.
const MaxLength = 200

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of spaces, tabs and newlines.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid is the shape every stored slug must have.
	valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from the given string. Non-ASCII
// letters are transliterated first.
// Example: "Héllo, Wörld! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
	result = strings.ReplaceAll(result, "_", " ")
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// IsValid reports whether s is a well-formed slug: lowercase ASCII letters
// and digits in hyphen-separated groups.
func IsValid(s string) bool {
	return len(s) <= MaxLength && valid.MatchString(s)
}

// Copy returns the n-th candidate slug for a duplicate of base:
// "base-copy" for n <= 1, then "base-copy-2", "base-copy-3" and so on.
func Copy(base string, n int) string {
	if n <= 1 {
		return base + "-copy"
	}
	return base + "-copy-" + strconv.Itoa(n)
}

package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quillpress/internal/models"
)

// Search defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Sortable post columns and directions.
var (
	postSortColumns = map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"published_at": true,
		"title":        true,
	}
	sortOrders = map[string]bool{"asc": true, "desc": true}
)

// SortablePostColumn reports whether posts can be ordered by col.
func SortablePostColumn(col string) bool { return postSortColumns[col] }

// ValidSortOrder reports whether dir is asc or desc, ignoring case.
func ValidSortOrder(dir string) bool { return sortOrders[strings.ToLower(dir)] }

// SearchParams filters and pages a post listing. Zero values mean "no
// filter" or "use the default".
type SearchParams struct {
	Query      string
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Status     models.PostStatus
	TagIDs     []uuid.UUID
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// Normalize fills in defaults for unset paging and sorting fields.
func (p SearchParams) Normalize() SearchParams {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	p.SortOrder = strings.ToLower(p.SortOrder)
	if p.SortOrder == "" {
		p.SortOrder = "desc"
	}
	return p
}

// Validate checks normalized params. Failures wrap ErrInvalidOperation.
func (p SearchParams) Validate() error {
	switch {
	case p.Page < 1:
		return fmt.Errorf("%w: page must be at least 1", ErrInvalidOperation)
	case p.Limit < 1 || p.Limit > MaxLimit:
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidOperation, MaxLimit)
	case !postSortColumns[p.SortBy]:
		return fmt.Errorf("%w: cannot sort by %q", ErrInvalidOperation, p.SortBy)
	case !sortOrders[p.SortOrder]:
		return fmt.Errorf("%w: sort order must be asc or desc", ErrInvalidOperation)
	case p.Status != "" && !p.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOperation, p.Status)
	}
	return nil
}

// escapeLike escapes the LIKE metacharacters in s so it matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildPostFilter returns the WHERE clause (without the keyword, "TRUE"
// when unfiltered) and its positional arguments. The same clause feeds the
// count and the page query.
func buildPostFilter(p SearchParams) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(p.Query); q != "" {
		n := arg("%" + escapeLike(q) + "%")
		conds = append(conds, fmt.Sprintf(
			"(p.title ILIKE %[1]s OR p.content ILIKE %[1]s OR p.excerpt ILIKE %[1]s)", n))
	}
	if p.CategoryID != nil {
		conds = append(conds, "p.category_id = "+arg(*p.CategoryID))
	}
	if p.AuthorID != nil {
		conds = append(conds, "p.author_id = "+arg(*p.AuthorID))
	}
	if p.Status != "" {
		conds = append(conds, "p.status = "+arg(string(p.Status)))
	}
	if len(p.TagIDs) > 0 {
		ph := make([]string, len(p.TagIDs))
		for i, id := range p.TagIDs {
			ph[i] = arg(id)
		}
		conds = append(conds, "p.id IN (SELECT post_id FROM post_tags WHERE tag_id IN ("+strings.Join(ph, ", ")+"))")
	}

	if len(conds) == 0 {
		return "TRUE", args
	}
	return strings.Join(conds, " AND "), args
}

// orderClause builds ORDER BY from whitelisted params, with id as the
// tie-breaker so pages never overlap.
func orderClause(p SearchParams) string {
	dir := "DESC"
	if p.SortOrder == "asc" {
		dir = "ASC"
	}
	col := "created_at"
	if postSortColumns[p.SortBy] {
		col = p.SortBy
	}
	nulls := ""
	if col == "published_at" {
		nulls = " NULLS LAST"
	}
	return fmt.Sprintf("p.%s %s%s, p.id %s", col, dir, nulls, dir)
}

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quillpress/internal/models"
)

func TestSearchParamsNormalize(t *testing.T) {
	p := SearchParams{}.Normalize()
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, "created_at", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)

	p = SearchParams{Page: 3, Limit: 25, SortBy: "title", SortOrder: "ASC"}.Normalize()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, "title", p.SortBy)
	assert.Equal(t, "asc", p.SortOrder)
}

func TestSearchParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  SearchParams
		wantErr bool
	}{
		{name: "defaults", params: SearchParams{}},
		{name: "max limit", params: SearchParams{Limit: MaxLimit}},
		{name: "negative page", params: SearchParams{Page: -1}, wantErr: true},
		{name: "limit too large", params: SearchParams{Limit: MaxLimit + 1}, wantErr: true},
		{name: "negative limit", params: SearchParams{Limit: -5}, wantErr: true},
		{name: "unknown sort column", params: SearchParams{SortBy: "content; DROP TABLE posts"}, wantErr: true},
		{name: "unknown sort order", params: SearchParams{SortOrder: "sideways"}, wantErr: true},
		{name: "unknown status", params: SearchParams{Status: "deleted"}, wantErr: true},
		{name: "published_at sort", params: SearchParams{SortBy: "published_at", SortOrder: "asc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Normalize().Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidOperation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBuildPostFilterEmpty(t *testing.T) {
	where, args := buildPostFilter(SearchParams{})
	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)
}

func TestBuildPostFilterAllPredicates(t *testing.T) {
	catID, authorID := uuid.New(), uuid.New()
	tag1, tag2 := uuid.New(), uuid.New()

	where, args := buildPostFilter(SearchParams{
		Query:      "golang",
		CategoryID: &catID,
		AuthorID:   &authorID,
		Status:     models.PostStatusPublished,
		TagIDs:     []uuid.UUID{tag1, tag2},
	})

	assert.Equal(t,
		"(p.title ILIKE $1 OR p.content ILIKE $1 OR p.excerpt ILIKE $1)"+
			" AND p.category_id = $2"+
			" AND p.author_id = $3"+
			" AND p.status = $4"+
			" AND p.id IN (SELECT post_id FROM post_tags WHERE tag_id IN ($5, $6))",
		where)
	assert.Equal(t, []any{"%golang%", catID, authorID, "published", tag1, tag2}, args)
}

func TestBuildPostFilterEmptyTagsIgnored(t *testing.T) {
	where, args := buildPostFilter(SearchParams{TagIDs: []uuid.UUID{}, Query: "   "})
	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))

	_, args := buildPostFilter(SearchParams{Query: "50%_off"})
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "p.created_at DESC, p.id DESC", orderClause(SearchParams{}.Normalize()))
	assert.Equal(t, "p.title ASC, p.id ASC", orderClause(SearchParams{SortBy: "title", SortOrder: "asc"}))
	assert.Equal(t, "p.published_at DESC NULLS LAST, p.id DESC",
		orderClause(SearchParams{SortBy: "published_at", SortOrder: "desc"}))
	assert.Equal(t, "p.created_at DESC, p.id DESC",
		orderClause(SearchParams{SortBy: "bogus", SortOrder: "desc"}))
}

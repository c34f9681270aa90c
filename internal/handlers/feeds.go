package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"quillpress/internal/feed"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// Feed content types.
const (
	rssContentType  = "application/rss+xml; charset=utf-8"
	atomContentType = "application/atom+xml; charset=utf-8"
)

// feedConfig reads channel overrides from the query string. Unset values
// fall back to site settings in feed.Config.WithDefaults.
func feedConfig(r *http.Request) (feed.Config, error) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return feed.Config{}, err
	}
	cfg := feed.Config{
		Title:          q.Get("title"),
		Description:    q.Get("description"),
		Link:           q.Get("link"),
		Language:       q.Get("language"),
		Copyright:      q.Get("copyright"),
		ManagingEditor: firstQuery(q, "managingEditor", "managing_editor"),
		WebMaster:      firstQuery(q, "webMaster", "webmaster"),
		Limit:          limit,
	}
	if cfg.Link != "" && !isAbsoluteURL(cfg.Link) {
		return feed.Config{}, fmt.Errorf("link must be an absolute http(s) URL")
	}
	return cfg, nil
}

// firstQuery returns the first non-empty value among the given keys.
func firstQuery(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// FeedRSS serves the site-wide RSS 2.0 feed.
func (a *API) FeedRSS(w http.ResponseWriter, r *http.Request) {
	a.serveFeed(w, r, "rss", "", store.SearchParams{})
}

// FeedAtom serves the site-wide Atom 1.0 feed.
func (a *API) FeedAtom(w http.ResponseWriter, r *http.Request) {
	a.serveFeed(w, r, "atom", "", store.SearchParams{})
}

// FeedCategory serves the feed of one category. ?format=atom switches
// from RSS.
func (a *API) FeedCategory(w http.ResponseWriter, r *http.Request) {
	a.scopedFeed(w, r, func(ctx context.Context, id uuid.UUID) (string, store.SearchParams, error) {
		c, err := a.categories.FindByID(ctx, id)
		if err != nil {
			return "", store.SearchParams{}, err
		}
		return c.Name, store.SearchParams{CategoryID: &id}, nil
	})
}

// FeedTag serves the feed of one tag.
func (a *API) FeedTag(w http.ResponseWriter, r *http.Request) {
	a.scopedFeed(w, r, func(ctx context.Context, id uuid.UUID) (string, store.SearchParams, error) {
		t, err := a.tags.FindByID(ctx, id)
		if err != nil {
			return "", store.SearchParams{}, err
		}
		return t.Name, store.SearchParams{TagIDs: []uuid.UUID{id}}, nil
	})
}

// FeedAuthor serves the feed of one author.
func (a *API) FeedAuthor(w http.ResponseWriter, r *http.Request) {
	a.scopedFeed(w, r, func(ctx context.Context, id uuid.UUID) (string, store.SearchParams, error) {
		u, err := a.users.FindByID(ctx, id)
		if err != nil {
			return "", store.SearchParams{}, err
		}
		return u.DisplayName(), store.SearchParams{AuthorID: &id}, nil
	})
}

type feedScope func(ctx context.Context, id uuid.UUID) (label string, filter store.SearchParams, err error)

func (a *API) scopedFeed(w http.ResponseWriter, r *http.Request, scope feedScope) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	label, filter, err := scope(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "feed scope", err)
		return
	}
	format := "rss"
	if r.URL.Query().Get("format") == "atom" {
		format = "atom"
	}
	a.serveFeed(w, r, format, label, filter)
}

// serveFeed renders the newest published posts matching filter. A scoped
// feed (label != "") with no posts is a 404.
func (a *API) serveFeed(w http.ResponseWriter, r *http.Request, format, label string, filter store.SearchParams) {
	ctx := r.Context()
	cfg, err := feedConfig(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	st, err := a.settings.Get(ctx)
	if err != nil {
		writeStoreError(w, r, "load settings", err)
		return
	}
	cfg = cfg.WithDefaults(st).Scoped(label)

	filter.Status = models.PostStatusPublished
	filter.Page = 1
	filter.Limit = cfg.Limit
	filter.SortBy = "published_at"
	filter.SortOrder = "desc"
	res, err := a.posts.Search(ctx, filter)
	if err != nil {
		writeStoreError(w, r, "feed posts", err)
		return
	}
	if label != "" && len(res.Posts) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "not found: no published posts in "+label, nil)
		return
	}

	names, err := a.users.DisplayNames(ctx)
	if err != nil {
		writeStoreError(w, r, "feed authors", err)
		return
	}
	items := make([]feed.Item, 0, len(res.Posts))
	for i := range res.Posts {
		p := &res.Posts[i]
		it, err := feed.NewItem(p, st.SiteURL, names[p.AuthorID])
		if err != nil {
			writeStoreError(w, r, "feed item", err)
			return
		}
		items = append(items, it)
	}

	var out []byte
	contentType := rssContentType
	if format == "atom" {
		contentType = atomContentType
		selfURL := strings.TrimRight(st.SiteURL, "/") + r.URL.RequestURI()
		out, err = feed.Atom(cfg, items, selfURL)
	} else {
		out, err = feed.RSS(cfg, items)
	}
	if err != nil {
		writeStoreError(w, r, "render feed", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(out)
}

// Package router sets up all HTTP routes and middleware chains for
// quillpress. Routes are split into public, staff, editor and admin groups,
// each adding its own guard on top of the global stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"quillpress/internal/handlers"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. commentLimiter throttles public comment
// submission and loginLimiter throttles credential checks.
func New(
	sessionStore *session.Store,
	api *handlers.API,
	auth *handlers.Auth,
	commentLimiter, loginLimiter *middleware.RateLimiter,
	secure bool,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))
	r.Use(middleware.NewCSRF(secure))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// Feeds and crawler endpoints.
	r.Get("/feed/rss", api.FeedRSS)
	r.Get("/feed/atom", api.FeedAtom)
	r.Get("/feed/category/{id}", api.FeedCategory)
	r.Get("/feed/tag/{id}", api.FeedTag)
	r.Get("/feed/author/{id}", api.FeedAuthor)
	r.Get("/sitemap.xml", api.Sitemap)
	r.Get("/robots.txt", api.Robots)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.Get("/csrf", auth.CSRF)
			r.With(middleware.RequireAuth).Get("/me", auth.Me)
		})

		// Public reads.
		r.Get("/categories", api.CategoriesList)
		r.Get("/categories/tree", api.CategoriesTree)
		r.Get("/categories/slug/{slug}", api.CategoryBySlug)
		r.Get("/categories/{id}", api.CategoryGet)

		r.Get("/posts", api.PostsList)
		r.Get("/posts/slug/{slug}", api.PostBySlug)
		r.Get("/posts/{id}", api.PostGet)
		r.Get("/posts/{id}/related", api.PostRelated)
		r.Get("/posts/{id}/comments", api.PostComments)

		r.Get("/tags", api.TagsList)
		r.Get("/tags/popular", api.TagsPopular)
		r.Get("/tags/search", api.TagsSearch)
		r.Get("/tags/slug/{slug}", api.TagBySlug)
		r.Get("/tags/{id}", api.TagGet)

		r.With(commentLimiter.Middleware).Post("/comments", api.CommentCreate)

		r.Get("/seo/posts/{id}/metadata", api.SEOMetadata)
		r.Get("/seo/posts/{id}/structured-data", api.SEOStructuredData)
		r.Get("/seo/posts/{id}/canonical", api.SEOCanonical)

		r.Get("/settings", api.SettingsGet)
		r.Get("/settings/timezones", api.SettingsTimezones)

		// Any authenticated staff member.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/posts", api.PostCreate)
			r.Put("/posts/{id}", api.PostUpdate)
			r.Delete("/posts/{id}", api.PostDelete)
			r.Post("/posts/{id}/publish", api.PostPublish)
			r.Post("/posts/{id}/archive", api.PostArchive)
			r.Post("/posts/{id}/duplicate", api.PostDuplicate)

			r.Post("/seo/analyze", api.SEOAnalyze)
			r.Get("/seo/posts/{id}/analyze", api.SEOAnalyzePost)

			r.Route("/media", func(r chi.Router) {
				r.Get("/", api.MediaList)
				r.Post("/", api.MediaUpload)
				r.Get("/{id}", api.MediaGet)
				r.Put("/{id}", api.MediaUpdate)
				r.Delete("/{id}", api.MediaDelete)
			})
		})

		// Taxonomy writes and moderation.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))

			r.Post("/categories", api.CategoryCreate)
			r.Put("/categories/{id}", api.CategoryUpdate)
			r.Delete("/categories/{id}", api.CategoryDelete)

			r.Post("/tags", api.TagCreate)
			r.Put("/tags/{id}", api.TagUpdate)
			r.Delete("/tags/{id}", api.TagDelete)

			r.Get("/comments", api.CommentsList)
			r.Get("/comments/pending", api.CommentsPending)
			r.Get("/comments/{id}", api.CommentGet)
			r.Put("/comments/{id}/status", api.CommentSetStatus)
			r.Post("/comments/{id}/approve", api.CommentApprove)
			r.Post("/comments/{id}/reject", api.CommentReject)
			r.Post("/comments/{id}/spam", api.CommentSpam)
			r.Delete("/comments/{id}", api.CommentDelete)
		})

		// Site configuration and accounts, admin only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Put("/settings", api.SettingsUpdate)
			r.Post("/settings/reset", api.SettingsReset)
			r.Post("/settings/validate", api.SettingsValidate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", api.UsersList)
				r.Post("/", api.UserCreate)
				r.Get("/{id}", api.UserGet)
				r.Put("/{id}/active", api.UserSetActive)
				r.Delete("/{id}", api.UserDelete)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"quillpress/internal/database"
	"quillpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "quillpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "quillpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// suffix returns a short random string for unique slugs and emails.
func suffix() string {
	return uuid.NewString()[:8]
}

// testAuthor creates a throwaway author and removes it after the test.
func testAuthor(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	sfx := suffix()
	u, err := NewUserStore(db).Create(context.Background(), models.UserInput{
		Email:     "author-" + sfx + "@example.com",
		Username:  "author-" + sfx,
		Password:  "secret-password",
		FirstName: "Test",
		LastName:  "Author",
		Role:      models.RoleAuthor,
	})
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// testCategory creates a category that is removed after the test.
func testCategory(t *testing.T, db *sql.DB, name string, parent *uuid.UUID) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), models.CategoryInput{
		Name:     name,
		Slug:     "cat-" + suffix(),
		ParentID: parent,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testTag creates a tag that is removed after the test.
func testTag(t *testing.T, db *sql.DB, name string) *models.Tag {
	t.Helper()
	tag, err := NewTagStore(db).Create(context.Background(), models.TagInput{
		Name: name,
		Slug: "tag-" + suffix(),
	})
	if err != nil {
		t.Fatalf("create tag %q: %v", name, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM tags WHERE id = $1", tag.ID) })
	return tag
}

// testPost creates a post owned by author. Cleanup happens with the author.
func testPost(t *testing.T, db *sql.DB, author *models.User, in models.PostInput) *models.Post {
	t.Helper()
	in.AuthorID = author.ID
	if in.Title == "" {
		in.Title = "Test Post"
	}
	if in.Slug == "" {
		in.Slug = "post-" + suffix()
	}
	p, err := NewPostStore(db).Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"quillpress/internal/database"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/session"
	"quillpress/internal/store"
)

const testSiteURL = "https://blog.example.com"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "quillpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "quillpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(ctx, db, database.SeedOptions{SiteURL: testSiteURL}); err != nil {
		db.Close()
		t.Fatalf("seed: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Sessions *session.Store
	Users    *store.UserStore
	Posts    *store.PostStore
	API      *API
	Auth     *Auth
}

// newTestEnv creates a test environment backed by PostgreSQL only. Media
// storage is left unconfigured.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)

	api := NewAPI(Deps{
		Categories: store.NewCategoryStore(db),
		Posts:      posts,
		Tags:       store.NewTagStore(db),
		Comments:   store.NewCommentStore(db, models.CommentDeleteOrphan),
		Media:      store.NewMediaStore(db),
		Users:      users,
		Settings:   store.NewSiteSettingStore(db, testSiteURL),
	})

	return &testEnv{
		DB:    db,
		Users: users,
		Posts: posts,
		API:   api,
	}
}

// withSessions adds a Valkey-backed session store and the Auth handlers.
func (e *testEnv) withSessions(t *testing.T) *testEnv {
	t.Helper()
	e.Sessions = session.NewStore(testValkeyClient(t), false)
	e.Auth = NewAuth(e.Sessions, e.Users)
	return e
}

// testUser creates a throwaway account. Its posts go with it.
func (e *testEnv) testUser(t *testing.T, role models.Role, password string) *models.User {
	t.Helper()
	sfx := uuid.NewString()[:8]
	u, err := e.Users.Create(context.Background(), models.UserInput{
		Email:     string(role) + "-" + sfx + "@example.com",
		Username:  string(role) + "-" + sfx,
		Password:  password,
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		e.DB.Exec("DELETE FROM posts WHERE author_id = $1", u.ID)
		e.DB.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// sessionFor builds the session data middleware would load for u.
func sessionFor(u *models.User) *session.Data {
	return &session.Data{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		Role:        string(u.Role),
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// call invokes h with an optional JSON body, session and URL params given
// as alternating key/value pairs.
func call(t *testing.T, h http.HandlerFunc, method, target string, body any, sess *session.Data, params ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = middleware.WithSession(ctx, sess)
	}
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

// decodeData unmarshals the "data" member of a success envelope into v.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

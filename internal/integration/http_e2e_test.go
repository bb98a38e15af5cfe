//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"qrate/internal/adapters/credentials"
	server "qrate/internal/adapters/http_server"
	"qrate/internal/adapters/moderation"
	"qrate/internal/adapters/observability"
	redisad "qrate/internal/adapters/redis"
	"qrate/internal/app"
	"qrate/internal/domain"
	mysqlrepo "qrate/internal/storage/mysql"
)

// ---------- helpers ----------
type outbox struct {
	mu   sync.Mutex
	last string
}

func (o *outbox) Send(_ context.Context, _, _, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = body
	return nil
}

var verifyPath = regexp.MustCompile(`/api/v1/auth/verify/[0-9a-f]{64}`)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("SKIP_DOCKER_TESTS") != "" {
		t.Skip("SKIP_DOCKER_TESTS set")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=qrate"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/qrate?charset=utf8mb4", resource.GetPort("3306/tcp"))
	var db *sql.DB
	pool.MaxWait = 2 * time.Minute
	if err := pool.Retry(func() error {
		var e error
		db, e = mysqlrepo.Open(context.Background(), dsn, mysqlrepo.Options{MaxOpenConns: 10, WriteTimeout: 2500 * time.Millisecond})
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, mysqlrepo.Migrate(context.Background(), db))
	return db
}

type stack struct {
	ts      *httptest.Server
	mail    *outbox
	seeder  *app.SeedService
	limited int
}

func newStack(t *testing.T, authPerMinute int) *stack {
	t.Helper()
	repo := mysqlrepo.New(startMySQL(t))

	mr := miniredis.RunT(t)
	rc := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	limiter, err := redisad.NewFixedWindowLimiter(rc, "rl:auth", authPerMinute, time.Minute)
	require.NoError(t, err)

	tokens, err := credentials.NewJWT("e2e-secret", time.Hour)
	require.NoError(t, err)
	mail := &outbox{}
	catalog := app.NewCatalogService(repo, repo, redisad.New(rc), time.Minute)
	gate := app.NewGate(repo, tokens)

	s := server.New()
	s.MountHandlers(&server.Handlers{
		Catalog:     catalog,
		Reviews:     app.NewReviewService(repo),
		Auth:        app.NewAuthService(repo, credentials.NewBcrypt(bcrypt.MinCost), tokens, mail, app.AuthConfig{EmailDomain: "@queensu.ca", BackendURL: "http://api.test"}).WithRecorder(observability.Recorder{}),
		Pipeline:    app.NewWritePipeline(gate, app.NewModerator(moderation.NewLexiconWith([]string{"frak"}, nil, nil)).WithRecorder(observability.Recorder{})),
		Limiter:     limiter,
		FrontendURL: "http://web.test",
	})
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)

	return &stack{ts: ts, mail: mail, seeder: app.NewSeedService(repo, catalog, 2), limited: authPerMinute}
}

func (s *stack) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// ---------- the tests ----------
func TestHTTP_EndToEnd_ReviewLifecycle(t *testing.T) {
	s := newStack(t, 100)
	ctx := context.Background()

	rep, err := s.seeder.Seed(ctx, domain.KindCourse, []map[string]any{
		{"code": "CISC 124", "name": "Introduction to Computing Science II", "department": "Computing"},
		{"code": "CISC 121", "name": "Introduction to Computing Science I"},
		{"name": "no code here"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, rep.Upserted)
	assert.EqualValues(t, 1, rep.Skipped)

	resp, out := s.do(t, http.MethodGet, "/api/v1/courses?limit=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, out["totalCount"])
	items := out["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "CISC 121", first["key"])
	assert.Equal(t, "Unknown", first["department"])
	courseID := items[1].(map[string]any)["id"].(string)

	// register, follow the mailed link, log in
	resp, out = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "e2e@queensu.ca", "password": "longenough"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, out)
	s.mail.mu.Lock()
	link := verifyPath.FindString(s.mail.last)
	s.mail.mu.Unlock()
	require.NotEmpty(t, link)
	resp, _ = s.do(t, http.MethodGet, link, "", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://web.test/?verified=true", resp.Header.Get("Location"))

	resp, out = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "E2E@queensu.ca", "password": "longenough"})
	require.Equal(t, http.StatusOK, resp.StatusCode, out)
	token := out["token"].(string)

	resp, out = s.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]any{
		"courseCode":    "CISC 124",
		"instructor":    "Dr. Grace",
		"term":          "Winter 2025",
		"overallRating": "4",
		"difficulty":    []int{2},
		"comment":       "Well paced course with fair exams and a lot of useful practice problems.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, out)
	reviewID := out["id"].(string)

	resp, out = s.do(t, http.MethodGet, "/api/v1/courses/"+courseID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, out["totalReviews"])
	ratings := out["ratings"].(map[string]any)
	assert.Equal(t, "4.0", ratings["overall"])
	assert.Equal(t, "2.0", ratings["difficulty"])

	// listing stats are computed fresh even though the page is cached
	resp, out = s.do(t, http.MethodGet, "/api/v1/courses?limit=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := out["items"].([]any)[1].(map[string]any)
	assert.EqualValues(t, 1, second["numReviews"])

	resp, out = s.do(t, http.MethodGet, "/api/v1/reviews/search?course=CISC%20124", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, out)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/reviews/"+reviewID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/v1/reviews/"+reviewID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_EndToEnd_AuthRateLimit(t *testing.T) {
	s := newStack(t, 2)

	creds := map[string]string{"email": "nobody@queensu.ca", "password": "longenough"}
	for i := 0; i < s.limited; i++ {
		resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

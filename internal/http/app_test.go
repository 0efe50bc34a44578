package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"clearfashion/internal/config"
	"clearfashion/internal/http/handlers"
	applog "clearfashion/internal/log"
	"clearfashion/internal/repos"
)

const sourcePage = `{"success":true,"data":{"result":[
  {"uuid":"b56c6d88-749a-5b4c-b571-e5b5c6483131","brand":"loom","name":"Le pull","price":90,"released":"2021-01-20","link":"https://loom.fr/pull"},
  {"uuid":"f0a4d2a2-30a5-5a40-9c35-4c5e0a21c3f8","brand":"hopaal","name":"T-shirt","price":35,"released":"2020-11-02","link":"https://hopaal.com/tee"},
  {"uuid":"9d1e2b4c-0c77-5b7e-8d35-2f0f6c8a5e10","brand":"adresse","name":"<script>alert(1)</script>","price":120,"released":"2021-01-22","link":"https://adresse.paris/veste"}
],"meta":{"currentPage":1,"pageSize":12,"pageCount":1,"count":3}}}`

const (
	pullID = "b56c6d88-749a-5b4c-b571-e5b5c6483131"
	teeID  = "f0a4d2a2-30a5-5a40-9c35-4c5e0a21c3f8"
)

type testApp struct {
	app *fiber.App
	db  *sqlx.DB
}

func newSourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sourcePage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestApp wires the real routes with the middleware stack used in main.
// extra runs before the routes are mounted.
func newTestApp(t *testing.T, extra ...fiber.Handler) *testApp {
	t.Helper()
	srv := newSourceServer(t)
	cfg := config.Config{
		DBDSN:         ":memory:",
		SourceURL:     srv.URL,
		PageSize:      12,
		FetchRetries:  1,
		PhotoTimeout:  50 * time.Millisecond,
		FallbackPhoto: "/static/no-photo.svg",
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(handlers.Session())
	for _, h := range extra {
		app.Use(h)
	}
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	deps := handlers.NewDeps(t.Context(), db, cfg)
	deps.Catalog.Now = func() time.Time { return time.Date(2021, 1, 25, 12, 0, 0, 0, time.UTC) }
	handlers.Mount(app, deps)
	return &testApp{app: app, db: db}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// visit loads the catalog page and returns the visitor and csrf cookies.
func (ta *testApp) visit(t *testing.T) (sid, csrfTok string) {
	t.Helper()
	resp, err := ta.app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home: expected 200, got %d", resp.StatusCode)
	}
	sid, csrfTok = extractCookie(resp, "sid"), extractCookie(resp, "csrf_")
	if sid == "" || csrfTok == "" {
		t.Fatalf("missing cookies sid=%q csrf=%q", sid, csrfTok)
	}
	return sid, csrfTok
}

func (ta *testApp) postForm(t *testing.T, path, form, sid, csrfTok string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/?sort=price-asc")
	if csrfTok != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func (ta *testApp) getJSON(t *testing.T, path, sid string, dst any) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	SID    string         `json:"sid"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clearfashion/internal/catalog"
)

func TestCatalogPageRendersTable(t *testing.T) {
	ta := newTestApp(t)

	resp, err := ta.app.Test(httptest.NewRequest("GET", "/?sort=price-asc", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	body := string(b)

	for _, want := range []string{"Le pull", "T-shirt", "hopaal", `id="nbNew">2<`, `id="lastReleased">2021-01-22<`, `name="csrf"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	// cheapest first
	if strings.Index(body, "T-shirt") > strings.Index(body, "Le pull") {
		t.Error("price-asc order not applied")
	}
}

func TestTemplateAutoEscape(t *testing.T) {
	ta := newTestApp(t)
	resp, err := ta.app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	body := string(b)
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Fatal("product name rendered unescaped")
	}
	if !strings.Contains(body, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatal("escaped product name missing")
	}
}

func TestProductsAPI(t *testing.T) {
	ta := newTestApp(t)
	sid, _ := ta.visit(t)

	var view catalog.View
	if code := ta.getJSON(t, "/api/v1/products?sort=price-desc&brand=1", sid, &view); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	// brand 1 of [All loom hopaal adresse] on the page the visitor saw
	if view.SelectedBrand != "loom" || len(view.Products) != 1 || view.Products[0].UUID != pullID {
		t.Fatalf("brand filter wrong: %+v", view)
	}
	if view.Stats == nil || view.Stats.Count != 1 {
		t.Fatalf("stats missing: %+v", view.Stats)
	}

	view = catalog.View{}
	if code := ta.getJSON(t, "/api/v1/products?reasonable=on", sid, &view); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(view.Products) != 1 || view.Products[0].UUID != teeID {
		t.Fatalf("reasonable filter wrong: %+v", view.Products)
	}
}

func TestReportAndBrandsAPI(t *testing.T) {
	ta := newTestApp(t)
	sid, _ := ta.visit(t)

	var report catalog.Report
	if code := ta.getJSON(t, "/api/v1/report?contains=pull&min=30&max=100", sid, &report); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if report.Count != 3 || report.Cheapest == nil || report.Cheapest.UUID != pullID || len(report.InRange) != 2 {
		t.Fatalf("bad report: %+v", report)
	}

	var brands struct {
		Brands []catalog.BrandReport `json:"brands"`
	}
	if code := ta.getJSON(t, "/api/v1/brands", sid, &brands); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(brands.Brands) != 3 {
		t.Fatalf("want 3 brands, got %+v", brands.Brands)
	}

	var photos struct {
		Photos map[string]string `json:"photos"`
	}
	if code := ta.getJSON(t, "/api/v1/photos", sid, &photos); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if photos.Photos[pullID] != "/static/no-photo.svg" {
		t.Fatalf("missing photo falls back: %+v", photos.Photos)
	}
}

// malformed controls are rejected and logged
func TestValidationBadInputs(t *testing.T) {
	ta := newTestApp(t)

	cases := []struct {
		path  string
		field string
	}{
		{"/?page=abc", "page"},
		{"/?size=1000", "size"},
		{"/?sort=random", "sort"},
		{"/?brand=-1", "brand"},
		{"/api/v1/products?recent=maybe", "recent"},
		{"/api/v1/report?contains=%3Cscript%3E", "contains"},
		{"/api/v1/report?min=-5", "min"},
	}
	for _, tc := range cases {
		var status int
		entries := captureLogs(t, func() {
			resp, err := ta.app.Test(httptest.NewRequest("GET", tc.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			status = resp.StatusCode
		})
		if status != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.path, status)
		}
		e, ok := findAction(entries, "validation.fail")
		if !ok || e.Fields["field"] != tc.field || e.SID == "" {
			t.Errorf("%s: validation.fail for %q not logged: %+v", tc.path, tc.field, entries)
		}
	}
}

func TestInvalidSessionCookieReplaced(t *testing.T) {
	ta := newTestApp(t)
	req := httptest.NewRequest("GET", "/api/v1/favorites", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-uuid"})

	var resp *http.Response
	entries := captureLogs(t, func() {
		var err error
		if resp, err = ta.app.Test(req); err != nil {
			t.Fatal(err)
		}
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if sid := extractCookie(resp, "sid"); sid == "" || sid == "not-a-uuid" {
		t.Fatalf("session cookie not replaced: %q", sid)
	}
	if _, ok := findAction(entries, "session.invalid"); !ok {
		t.Fatal("session.invalid not logged")
	}
}

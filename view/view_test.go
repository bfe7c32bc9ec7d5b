package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/go-crm-panel/i18n"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRenderUsesLayoutAndRequestLanguage(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"layout.html":          `<html lang="{{lang}}">{{template "notice" .}}{{template "content" .}}</html>`,
		"partials/notice.html": `{{define "notice"}}{{with .Notice}}[{{.}}]{{end}}{{end}}`,
		"page.html":            `{{define "content"}}{{t "nav_clients"}}|{{na .Missing}}|{{na .Name}}{{end}}`,
	})
	ResetForTests()
	SetBaseDir(dir)
	t.Cleanup(ResetForTests)

	for _, tc := range []struct{ lang, want string }{
		{"en", `<html lang="en">[hi]Clients|N/A|Ana</html>`},
		{"fr", `<html lang="fr">[hi]Clients|N/D|Ana</html>`},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(i18n.WithLang(req.Context(), tc.lang))
		rec := httptest.NewRecorder()
		var missing *string
		if err := Render(rec, req, "page.html", map[string]any{"Notice": "hi", "Missing": missing, "Name": "Ana"}); err != nil {
			t.Fatalf("render: %v", err)
		}
		if got := rec.Body.String(); got != tc.want {
			t.Fatalf("lang %s: got %q want %q", tc.lang, got, tc.want)
		}
	}
}

func TestRenderStatusAndMissingTemplate(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"standalone.html": `<!doctype html><p>{{gmt .TZ}}</p>`,
	})
	ResetForTests()
	SetBaseDir(dir)
	t.Cleanup(ResetForTests)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := RenderStatus(rec, req, http.StatusUnprocessableEntity, "standalone.html", map[string]any{"TZ": "Invalid/Zone"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid timezone") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	if err := Render(httptest.NewRecorder(), req, "nope.html", nil); err == nil {
		t.Fatalf("expected an error for a missing template")
	}
}

func TestMarkdownIsSanitized(t *testing.T) {
	out := string(Markdown("**VIP** client <script>alert(1)</script> [site](https://acme.io)"))
	if !strings.Contains(out, "<strong>VIP</strong>") {
		t.Fatalf("expected bold markup, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script survived sanitizing: %q", out)
	}
	if !strings.Contains(out, `rel="nofollow`) {
		t.Fatalf("expected nofollow links, got %q", out)
	}
	if Markdown("") != "" {
		t.Fatalf("empty input should render nothing")
	}
}

func TestAssetAndThemeFromRequest(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "static"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "static", "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithTheme(req.Context(), "dark"))
	funcs := Funcs(req)

	asset := funcs["asset"].(func(string) string)
	if got := asset("app.css"); !strings.HasPrefix(got, "/static/app.css?v=") {
		t.Fatalf("expected versioned asset, got %q", got)
	}
	if got := asset("missing.js"); got != "/static/missing.js" {
		t.Fatalf("missing asset: got %q", got)
	}
	if got := funcs["theme"].(func() string)(); got != "dark" {
		t.Fatalf("theme: got %q", got)
	}
}

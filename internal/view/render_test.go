package view

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"crm/page.html": {Data: []byte(`<h1>{{ shout .Title }}</h1>{{ template "row" (dict "v" .Title) }}`)},
		"crm/row.html":  {Data: []byte(`{{ define "row" }}<p>{{ .v }}</p>{{ end }}`)},
		"crm/bad.html":  {Data: []byte(`{{ .Missing.Field }}`)},
	}
}

func newTestRenderer() *Renderer {
	return New(testFS(), template.FuncMap{"shout": strings.ToUpper})
}

func TestRender_WritesStatusAndBody(t *testing.T) {
	r := newTestRenderer()
	rr := httptest.NewRecorder()

	if err := r.Render(rr, http.StatusUnprocessableEntity, "crm/page", map[string]any{"Title": "north"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if got := rr.Body.String(); got != "<h1>NORTH</h1><p>north</p>" {
		t.Fatalf("body = %q", got)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type = %q", ct)
	}
}

func TestRender_FailureWritesNothing(t *testing.T) {
	r := newTestRenderer()
	rr := httptest.NewRecorder()

	if err := r.Render(rr, http.StatusOK, "crm/bad", map[string]any{}); err == nil {
		t.Fatal("expected execution error")
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("partial output written: %q", rr.Body.String())
	}
}

func TestRenderToString_Missing(t *testing.T) {
	r := newTestRenderer()
	if _, err := r.RenderToString("crm/nope", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRenderToString_Cached(t *testing.T) {
	r := newTestRenderer()
	for i := 0; i < 2; i++ {
		out, err := r.RenderToString("crm/page", map[string]any{"Title": "a"})
		if err != nil || out != "<h1>A</h1><p>a</p>" {
			t.Fatalf("render %d = %q, %v", i, out, err)
		}
	}
	if r.sets.Len() != 1 {
		t.Fatalf("cached sets = %d, want 1", r.sets.Len())
	}
}

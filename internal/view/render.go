// internal/view/render.go
//
// View engine: template lookup over an fs.FS, func-map injection, and an LRU
// of parsed *template.Template sets.
//
// Public helpers
// --------------
//   - Render         – buffer, then write rendered HTML with a status code.
//   - RenderToString – return template.HTML (fragments, e-mails).
//
// All templates in the same directory are parsed as one set so sub-templates
// ({{ template "row" . }}) work out-of-the-box.  execName() chooses what to
// run: "<name>.html" when the set has such a file, else the root template
// "<name>" defined via {{ define }}.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/yanizio/crm/internal/cache"
)

// Renderer parses and executes templates from one file system.  Safe for
// concurrent use.
type Renderer struct {
	fsys  fs.FS
	funcs template.FuncMap
	sets  *cache.LRU[string, *template.Template]
	// NoCache re-parses on every call; handy while editing templates.
	NoCache bool
}

// New returns a Renderer over fsys.  funcs are merged over the built-ins.
func New(fsys fs.FS, funcs template.FuncMap) *Renderer {
	fm := template.FuncMap{"dict": dict}
	for k, v := range funcs {
		fm[k] = v
	}
	return &Renderer{
		fsys:  fsys,
		funcs: fm,
		sets:  cache.New[string, *template.Template](64, 0),
	}
}

// Render executes name into a buffer and, on success, writes it to w with
// status.  Nothing reaches w when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.execute(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString executes name and returns the HTML.
func (r *Renderer) RenderToString(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.execute(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) execute(buf *bytes.Buffer, name string, data any) error {
	t, err := r.load(name)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(buf, execName(t, path.Base(name)), data)
}

// load finds (or parses) the set containing name, e.g. "crm/sector_edit".
func (r *Renderer) load(name string) (*template.Template, error) {
	if !r.NoCache {
		if t, ok := r.sets.Get(name); ok {
			return t, nil
		}
	}

	if _, err := fs.Stat(r.fsys, name+".html"); err != nil {
		return nil, err
	}
	pattern := path.Join(path.Dir(name), "*.html")
	t, err := template.New(path.Base(name)).Funcs(r.funcs).ParseFS(r.fsys, pattern)
	if err != nil {
		return nil, err
	}

	if !r.NoCache {
		r.sets.Add(name, t)
	}
	return t, nil
}

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

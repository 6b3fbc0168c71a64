// components/crm/crm.go
//
// CRM component: sector maintenance pages and API.
//
// Context
// -------
// Lists sectors at /sectors and mounts the sector edit dialog at /sectors/{id}/edit (HTML, server-rendered
// with CSRF-protected POST) and PATCH /api/sectors/{id} (JSON).  Both paths
// drive the same sector.Dialog through a per-request pageHost, so
// validation, patch building, and error swallowing behave identically.
//
// Notes
// -----
// • Templates and form definitions are embedded; no files ship beside the
//   binary.
// • Oxford commas, two spaces after periods.
package crm

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/crm/internal/component"
	"github.com/yanizio/crm/internal/form"
	"github.com/yanizio/crm/internal/sector"
	"github.com/yanizio/crm/internal/view"
)

// EditFormID names the YAML definition behind the dialog.
const EditFormID = "crm/sector_edit"

//go:embed forms/*.yaml
var formFS embed.FS

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
	_ sector.Host           = (*pageHost)(nil)
)

// Comp implements component.Component.  Init must run before Routes.
type Comp struct {
	h *handler
}

func (c *Comp) Name() string      { return "crm" }
func (c *Comp) Migrations() fs.FS { return sector.Migrations() }

// Init wires the repository, lookup cache, form definition, and renderer.
func (c *Comp) Init(deps component.Deps) error {
	if deps.DB == nil || deps.Tokens == nil || deps.Config == nil {
		return errors.New("crm: DB, Tokens, and Config are required")
	}
	if err := form.RegisterFS(formFS); err != nil {
		return err
	}
	def, ok := form.GetFormDef(EditFormID)
	if !ok {
		return errors.New("crm: form " + EditFormID + " not registered")
	}
	tpl, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return err
	}

	log := deps.Log
	if log == nil {
		log = zap.S()
	}
	repo := sector.NewRepository(deps.DB)
	c.h = &handler{
		repo:   repo,
		lookup: sector.NewLookup(repo, deps.Config.Lookup.CacheSize, deps.Config.Lookup.TTL),
		def:    def,
		tokens: deps.Tokens,
		views:  view.New(tpl, nil),
		log:    log.Named("crm"),
	}
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()

	// HTML pages
	r.Get("/sectors", c.h.listSectors)
	r.Get("/sectors/{id}/edit", c.h.getEdit)
	r.Post("/sectors/{id}/edit", c.h.postEdit)

	r.Method(http.MethodGet, "/static/*", http.FileServer(http.FS(staticFS)))

	// JSON endpoint
	r.Patch("/api/sectors/{id}", c.h.patchSector)

	return r
}

// Register component at package init.
func init() {
	component.Register(&Comp{})
}

package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/crm/internal/form"
	"github.com/yanizio/crm/internal/head"
	"github.com/yanizio/crm/internal/logger"
	"github.com/yanizio/crm/internal/sector"
	"github.com/yanizio/crm/internal/view"
)

// fieldDepartment is the department select.  It is not part of FormState.
const fieldDepartment = "department"

const (
	maxJSONBody = 64 << 10
	listLimit   = 500
)

type handler struct {
	repo   *sector.Repository
	lookup *sector.Lookup
	def    *form.FormDef
	tokens *form.Tokens
	views  *view.Renderer
	log    *zap.SugaredLogger
}

// session is one bound dialog and the host that owns it.
type session struct {
	dlg  *sector.Dialog
	host *pageHost
}

// editPage feeds templates/crm/sector_edit.html.
type editPage struct {
	Head   *head.Builder
	Form   *form.FormDef
	Sector *sector.Sector
	CSRF   string
	Fields map[string]template.HTML
	Busy   bool
}

/*──────────────────────────── HTML pages ──────────────────────────────────*/

// listSectors is where the dialog returns after save or cancel.
// ?updated={id} shows a confirmation line.
func (h *handler) listSectors(w http.ResponseWriter, r *http.Request) {
	ss, err := h.repo.Sectors(r.Context(), listLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	updated, _ := strconv.ParseInt(r.URL.Query().Get("updated"), 10, 64)

	data := map[string]any{"Head": newHead("Sectors"), "Sectors": ss, "Updated": updated}
	if err := h.views.Render(w, http.StatusOK, "crm/sectors", data); err != nil {
		logger.FromContext(r.Context()).Errorw("render sector list failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// getEdit opens the dialog on the stored sector.  ?department= overrides the
// department inferred from the sector's municipality; an empty value clears
// it.
func (h *handler) getEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.open(w, r, true)
	if !ok {
		return
	}

	dept, set := r.URL.Query()[fieldDepartment]
	var deptID string
	if set {
		deptID = dept[0]
	} else {
		deptID = h.departmentOf(ctx, sess.dlg.Sector())
	}
	h.selectDepartment(ctx, sess, deptID)

	h.render(w, r, http.StatusOK, sess)
}

// postEdit replays the posted fields into a freshly bound dialog and acts on
// the pressed button.
func (h *handler) postEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vals, err := form.ParsePost(r, h.tokens)
	if err != nil {
		if form.IsCSRFError(err) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess, ok := h.open(w, r, true)
	if !ok {
		return
	}
	dlg := sess.dlg

	dlg.SetField(sector.FieldName, vals.Get(sector.FieldName))
	dlg.SetField(sector.FieldDescription, vals.Get(sector.FieldDescription))
	h.selectDepartment(ctx, sess, vals.Get(fieldDepartment))
	if opt := sector.Selected(dlg.MunicipalityOptions(), vals.Get(sector.FieldMunicipality)); opt != nil {
		dlg.SelectMunicipality(opt)
	} else {
		dlg.SetField(sector.FieldMunicipality, "")
	}

	switch vals.Get("action") {
	case "cancel":
		dlg.Cancel()
		http.Redirect(w, r, "/sectors", http.StatusSeeOther)
		return
	case "department":
		h.render(w, r, http.StatusOK, sess)
		return
	}

	switch dlg.Submit(ctx) {
	case sector.OutcomeSaved:
		http.Redirect(w, r, fmt.Sprintf("/sectors?updated=%d", dlg.Sector().ID), http.StatusSeeOther)
	case sector.OutcomeInvalid:
		h.render(w, r, http.StatusUnprocessableEntity, sess)
	default:
		// Failed: the dialog stays open with the user's input intact.
		h.render(w, r, http.StatusOK, sess)
	}
}

/*──────────────────────────── JSON endpoint ───────────────────────────────*/

type patchRequest struct {
	Name           string      `json:"name"`
	Description    *string     `json:"description"`
	MunicipalityID json.Number `json:"municipalityId"`
}

func (h *handler) patchSector(w http.ResponseWriter, r *http.Request) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" {
		http.Error(w, http.StatusText(http.StatusUnsupportedMediaType), http.StatusUnsupportedMediaType)
		return
	}
	var req patchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	sess, ok := h.open(w, r, false)
	if !ok {
		return
	}
	dlg := sess.dlg
	dlg.SetField(sector.FieldName, req.Name)
	if req.Description != nil {
		dlg.SetField(sector.FieldDescription, *req.Description)
	} else {
		dlg.SetField(sector.FieldDescription, "")
	}
	dlg.SetField(sector.FieldMunicipality, req.MunicipalityID.String())

	switch dlg.Submit(r.Context()) {
	case sector.OutcomeSaved:
		writeJSON(w, http.StatusOK, sess.host.saved)
	case sector.OutcomeInvalid:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]sector.Errors{"errors": dlg.Errors()})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "sector update failed"})
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// open loads the sector named in the URL and binds it to a new dialog.  On
// failure it writes the response and returns false.
func (h *handler) open(w http.ResponseWriter, r *http.Request, lookups bool) (*session, bool) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return nil, false
	}

	s, err := h.repo.SectorByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}

	var ds []sector.Department
	if lookups {
		if ds, err = h.repo.Departments(ctx); err != nil {
			h.fail(w, r, err)
			return nil, false
		}
	}

	host := newPageHost(h.repo, h.lookup, ds)
	dlg := sector.NewDialog(host, log)
	host.dlg = dlg
	dlg.BindLookups(nil, ds)
	dlg.SetSector(s)
	return &session{dlg: dlg, host: host}, true
}

// selectDepartment routes a department pick through the dialog and then
// reconciles the municipality list.
func (h *handler) selectDepartment(ctx context.Context, sess *session, id string) {
	sess.dlg.SelectDepartment(sector.Selected(sess.dlg.DepartmentOptions(), id))
	sess.dlg.DepartmentChanged(ctx, sess.host.department)
}

// departmentOf infers the department of s from its municipality.
func (h *handler) departmentOf(ctx context.Context, s *sector.Sector) string {
	if s == nil || s.MunicipalityID == nil {
		return ""
	}
	m, err := h.repo.MunicipalityByID(ctx, *s.MunicipalityID)
	if err != nil {
		if !errors.Is(err, sector.ErrNotFound) {
			logger.FromContext(ctx).Warnw("municipality lookup failed", "municipality", *s.MunicipalityID, "err", err)
		}
		return ""
	}
	return strconv.FormatInt(m.DepartmentID, 10)
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, sess *session) {
	log := logger.FromContext(r.Context())

	fields, err := renderFields(h.def, sess.dlg)
	if err != nil {
		log.Errorw("render sector fields failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	tok, err := h.tokens.Generate()
	if err != nil {
		log.Errorw("csrf token generation failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := editPage{
		Head:   newHead(h.def.Title + " – " + sess.dlg.Sector().Name),
		Form:   h.def,
		Sector: sess.dlg.Sector(),
		CSRF:   tok,
		Fields: fields,
		Busy:   sess.dlg.Submitting(),
	}
	if err := h.views.Render(w, status, "crm/sector_edit", page); err != nil {
		log.Errorw("render sector dialog failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// fail maps repository errors to responses.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sector.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	logger.FromContext(r.Context()).Errorw("sector load failed", "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// renderFields renders every control of the dialog from its current state.
func renderFields(def *form.FormDef, d *sector.Dialog) (map[string]template.HTML, error) {
	st, errs, busy := d.State(), d.Errors(), d.Submitting()
	inputs := map[string]form.FieldInput{
		sector.FieldName: {
			Value: st.Name, Error: errs[sector.FieldName], Disabled: busy,
		},
		fieldDepartment: {
			Value: d.Department(), Options: formOptions(d.DepartmentOptions()), Disabled: busy,
		},
		sector.FieldMunicipality: {
			Value: st.MunicipalityID, Options: formOptions(d.MunicipalityOptions()),
			Error: errs[sector.FieldMunicipality], Disabled: busy,
		},
		sector.FieldDescription: {
			Value: st.Description, Error: errs[sector.FieldDescription], Disabled: busy,
		},
	}

	out := make(map[string]template.HTML, len(inputs))
	for name, in := range inputs {
		f := def.Field(name)
		if f == nil {
			return nil, fmt.Errorf("form %s: field %q missing", def.ID, name)
		}
		html, err := form.RenderField(f, in)
		if err != nil {
			return nil, err
		}
		out[name] = html
	}
	return out, nil
}

// newHead seeds the <head> shared by CRM pages.
func newHead(title string) *head.Builder {
	hd := head.New()
	hd.SetTitle(title)
	hd.Link(`<link rel="stylesheet" href="/static/crm.css">`)
	return hd
}

func formOptions(opts []sector.Option) []form.Option {
	out := make([]form.Option, len(opts))
	for i, o := range opts {
		out[i] = form.Option{Value: o.Value, Label: o.Label}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnw("json encode failed", "err", err)
	}
}

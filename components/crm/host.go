package crm

import (
	"context"
	"strconv"

	"github.com/yanizio/crm/internal/sector"
)

// sectorStore is the slice of *sector.Repository the host needs.
type sectorStore interface {
	UpdateSector(ctx context.Context, p sector.Patch) error
}

// municipalityLookup is satisfied by *sector.Lookup.
type municipalityLookup interface {
	Municipalities(ctx context.Context, departmentID int64) ([]sector.Municipality, error)
}

// pageHost binds one Dialog for the lifetime of a request.
//
// It owns what the dialog treats as external: the open flag, the lookup
// lists, the tracked department, and persistence.  The dialog pointer is
// set right after construction.
type pageHost struct {
	dlg         *sector.Dialog
	store       sectorStore
	lookup      municipalityLookup
	departments []sector.Department

	open       bool
	department string
	saved      *sector.Patch
}

func newPageHost(store sectorStore, lookup municipalityLookup, ds []sector.Department) *pageHost {
	return &pageHost{store: store, lookup: lookup, departments: ds, open: true}
}

func (h *pageHost) UpdateSector(ctx context.Context, p sector.Patch) error {
	if err := h.store.UpdateSector(ctx, p); err != nil {
		return err
	}
	h.saved = &p
	return nil
}

func (h *pageHost) SetOpen(open bool) { h.open = open }

// LoadMunicipalities fetches the list for the department the dialog tracks.
func (h *pageHost) LoadMunicipalities(ctx context.Context) error {
	id, err := strconv.ParseInt(h.dlg.Department(), 10, 64)
	if err != nil {
		h.SetMunicipalities(nil)
		return err
	}
	ms, err := h.lookup.Municipalities(ctx, id)
	if err != nil {
		return err
	}
	h.SetMunicipalities(ms)
	return nil
}

func (h *pageHost) SetMunicipalities(ms []sector.Municipality) {
	h.dlg.BindLookups(ms, h.departments)
}

// SetSelectedDepartment records the pick.  The handler reconciles it with
// Dialog.DepartmentChanged once the request context is at hand.
func (h *pageHost) SetSelectedDepartment(id string) { h.department = id }

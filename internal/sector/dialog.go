// internal/sector/dialog.go
//
// Sector edit dialog: the state machine behind the "Edit sector" modal.
//
/*
Context
--------
The dialog is bound to at most one Sector at a time.  It never reads or
writes storage itself; every outward effect goes through the Host supplied
by whoever embeds it (the CRM component in production, fakes in tests):

	UpdateSector          persist a Patch, may fail
	SetOpen               open or close the modal
	LoadMunicipalities    refresh the municipality list for the tracked department
	SetMunicipalities     replace the municipality list (nil empties it)
	SetSelectedDepartment track the department select ("" clears it)

Lookup lists and the tracked department flow the other way: the host pushes
them in with BindLookups and DepartmentChanged whenever they change.

Lifecycle
---------
 1. SetSector seeds FormState and clears Errors.
 2. SetField / SelectMunicipality / SelectDepartment mutate local state.
 3. Submit validates, builds a Patch, awaits the host, closes on success.
 4. Cancel closes without side effects.

A Dialog is owned by a single request or goroutine.  It is not safe for
concurrent use.
*/
package sector

import (
	"context"

	"go.uber.org/zap"

	"github.com/yanizio/crm/internal/metrics"
)

// Host is implemented by the code that embeds a Dialog.
type Host interface {
	UpdateSector(ctx context.Context, p Patch) error
	SetOpen(open bool)
	LoadMunicipalities(ctx context.Context) error
	SetMunicipalities(ms []Municipality)
	SetSelectedDepartment(id string)
}

// Outcome reports what Submit did.
type Outcome int

const (
	OutcomeInvalid Outcome = iota // validation failed, host not called
	OutcomeSkipped                // no sector bound
	OutcomeSaved                  // host accepted the patch, dialog closed
	OutcomeFailed                 // host or conversion error, dialog left open
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSaved:
		return "saved"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Dialog holds the local state of one edit session.
type Dialog struct {
	host Host
	log  *zap.SugaredLogger

	sector     *Sector
	state      FormState
	errs       Errors
	submitting bool

	municipalities []Municipality
	departments    []Department
	department     string
}

// NewDialog returns an unbound dialog.  A nil log falls back to zap.S().
func NewDialog(host Host, log *zap.SugaredLogger) *Dialog {
	if log == nil {
		log = zap.S()
	}
	return &Dialog{host: host, log: log, errs: Errors{}}
}

/*──────────────────────────── host → dialog ───────────────────────────────*/

// SetSector binds s.  A non-nil sector replaces FormState with its fields and
// clears every error.  Nil unbinds the dialog and keeps local state as is.
func (d *Dialog) SetSector(s *Sector) {
	d.sector = s
	if s == nil {
		return
	}
	d.state = StateFromSector(s)
	d.errs = Errors{}
}

// BindLookups replaces the lookup lists shown by the selects.
func (d *Dialog) BindLookups(ms []Municipality, ds []Department) {
	d.municipalities = ms
	d.departments = ds
}

// DepartmentChanged records the tracked department and asks the host to
// refresh municipalities, or to empty them when id is "".  Load failures are
// logged and otherwise ignored.
func (d *Dialog) DepartmentChanged(ctx context.Context, id string) {
	d.department = id
	if id == "" {
		d.host.SetMunicipalities(nil)
		return
	}
	if err := d.host.LoadMunicipalities(ctx); err != nil {
		d.log.Errorw("load municipalities failed", "department", id, "err", err)
	}
}

/*──────────────────────────── user → dialog ───────────────────────────────*/

// SetField writes one form field and clears that field's error.  Unknown
// fields are ignored and reported as false.
func (d *Dialog) SetField(field, value string) bool {
	if !d.state.set(field, value) {
		return false
	}
	delete(d.errs, field)
	return true
}

// SelectMunicipality stores the picked municipality.  Nil is ignored.
func (d *Dialog) SelectMunicipality(opt *Option) {
	if opt == nil {
		return
	}
	d.state.MunicipalityID = opt.Value
}

// SelectDepartment forwards the pick to the host.  FormState is untouched.
func (d *Dialog) SelectDepartment(opt *Option) {
	if opt == nil {
		d.host.SetSelectedDepartment("")
		return
	}
	d.host.SetSelectedDepartment(opt.Value)
}

// Submit validates and, when valid and bound, sends the patch to the host.
func (d *Dialog) Submit(ctx context.Context) Outcome {
	d.errs = Validate(d.state)
	if len(d.errs) > 0 {
		for field := range d.errs {
			metrics.SectorValidationErrorsTotal.WithLabelValues(field).Inc()
		}
		return observe(OutcomeInvalid)
	}
	if d.sector == nil {
		return observe(OutcomeSkipped)
	}

	d.submitting = true
	defer func() { d.submitting = false }()

	patch, err := d.state.Patch(d.sector.ID)
	if err != nil {
		d.log.Errorw("build sector patch failed", "sector", d.sector.ID, "err", err)
		return observe(OutcomeFailed)
	}

	if err := d.host.UpdateSector(ctx, patch); err != nil {
		d.log.Errorw("sector update failed", "sector", patch.ID, "err", err)
		return observe(OutcomeFailed)
	}
	d.host.SetOpen(false)
	return observe(OutcomeSaved)
}

// Cancel closes the dialog.  Local state is abandoned.
func (d *Dialog) Cancel() { d.host.SetOpen(false) }

/*──────────────────────────── read accessors ──────────────────────────────*/

// Visible reports whether a sector is bound.
func (d *Dialog) Visible() bool { return d.sector != nil }

func (d *Dialog) Sector() *Sector    { return d.sector }
func (d *Dialog) State() FormState   { return d.state }
func (d *Dialog) Errors() Errors     { return d.errs.Clone() }
func (d *Dialog) Submitting() bool   { return d.submitting }
func (d *Dialog) Department() string { return d.department }

func (d *Dialog) MunicipalityOptions() []Option { return MunicipalityOptions(d.municipalities) }
func (d *Dialog) DepartmentOptions() []Option   { return DepartmentOptions(d.departments) }

// SelectedMunicipality is the option shown by the municipality select.
func (d *Dialog) SelectedMunicipality() *Option {
	return Selected(d.MunicipalityOptions(), d.state.MunicipalityID)
}

// SelectedDepartment is the option shown by the department select.
func (d *Dialog) SelectedDepartment() *Option {
	return Selected(d.DepartmentOptions(), d.department)
}

func observe(o Outcome) Outcome {
	metrics.SectorSubmitTotal.WithLabelValues(o.String()).Inc()
	return o
}

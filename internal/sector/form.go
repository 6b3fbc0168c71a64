// internal/sector/form.go
//
// Edit form state and submit-time validation.
//
// Context
// -------
// FormState holds raw widget values as strings, exactly as the user typed or
// picked them.  Conversion to typed values happens once, when a Patch is
// built.  Validation runs only at submit time and produces an Errors map
// that templates use to mark fields inline.
//
// Rules
// -----
//   - name            required after trimming whitespace.
//   - municipalityId  required.
//   - description     optional, never validated.
package sector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field keys shared by FormState, Errors, and posted form values.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldMunicipality = "municipalityId"
)

// User-facing validation messages.
const (
	MsgNameRequired         = "name is required"
	MsgMunicipalityRequired = "must select a municipality"
)

// FormState is the dialog's local copy of the sector being edited.
type FormState struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	MunicipalityID string `json:"municipalityId"`
}

// StateFromSector seeds a FormState.  Nil fields become empty strings.
func StateFromSector(s *Sector) FormState {
	if s == nil {
		return FormState{}
	}
	st := FormState{Name: s.Name}
	if s.Description != nil {
		st.Description = *s.Description
	}
	if s.MunicipalityID != nil {
		st.MunicipalityID = formatID(*s.MunicipalityID)
	}
	return st
}

// set writes one field by key.  It reports false for unknown keys.
func (s *FormState) set(field, value string) bool {
	switch field {
	case FieldName:
		s.Name = value
	case FieldDescription:
		s.Description = value
	case FieldMunicipality:
		s.MunicipalityID = value
	default:
		return false
	}
	return true
}

// Get returns the raw value of one field, or "" for unknown keys.
func (s FormState) Get(field string) string {
	switch field {
	case FieldName:
		return s.Name
	case FieldDescription:
		return s.Description
	case FieldMunicipality:
		return s.MunicipalityID
	}
	return ""
}

// Patch converts the state into an update for sector id.  Name and
// description are trimmed; a blank description becomes nil.
func (s FormState) Patch(id int64) (Patch, error) {
	muni, err := strconv.ParseInt(strings.TrimSpace(s.MunicipalityID), 10, 64)
	if err != nil {
		return Patch{}, fmt.Errorf("parse municipality id %q: %w", s.MunicipalityID, err)
	}
	p := Patch{
		ID:             id,
		Name:           strings.TrimSpace(s.Name),
		MunicipalityID: muni,
	}
	if d := strings.TrimSpace(s.Description); d != "" {
		p.Description = &d
	}
	return p, nil
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// Errors maps field keys to user-facing messages.
type Errors map[string]string

// Has reports whether field currently carries an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Clone returns an independent copy.  A nil receiver yields an empty map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

var v = validator.New()

// submission is the validated projection of FormState.
type submission struct {
	Name           string `validate:"required"`
	MunicipalityID string `validate:"required"`
}

var ruleFor = map[string]struct{ key, msg string }{
	"Name":           {FieldName, MsgNameRequired},
	"MunicipalityID": {FieldMunicipality, MsgMunicipalityRequired},
}

// Validate returns a fresh Errors map for s.  An empty map means s may be
// submitted.
func Validate(s FormState) Errors {
	errs := Errors{}
	err := v.Struct(submission{
		Name:           strings.TrimSpace(s.Name),
		MunicipalityID: s.MunicipalityID,
	})

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		for _, fe := range ves {
			if r, ok := ruleFor[fe.StructField()]; ok {
				errs[r.key] = r.msg
			}
		}
	}
	return errs
}

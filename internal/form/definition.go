// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each HTML form is declared in a YAML file that carries the presentation
//   metadata templates need (labels, placeholders, hints, button captions)
//   so markup and copy stay out of Go code.  Components embed their
//   “forms/*.yaml” files and register them at Init.  Validation rules do not
//   live here; the owning component decides what is valid.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef.
//   •  ParseFormDef parses one document and validates structural rules.
//   •  RegisterFS walks an fs.FS, loads every “*.yaml”, and adds it to the
//      registry.  Later registrations override earlier ones by ID.
//   •  GetFormDef offers safe, read-only access to a parsed form by ID.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// The ID should be namespaced by component, e.g. “crm/sector_edit”.
type FormDef struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Fields      []FieldDef `yaml:"fields"`
	SubmitLabel string     `yaml:"submit_label"`
	BusyLabel   string     `yaml:"busy_label"` // shown while a submit is pending
	CancelLabel string     `yaml:"cancel_label"`
}

// FieldDef describes a single input control on the form.
type FieldDef struct {
	Name        string `yaml:"name"`        // Submission key.  Required.
	Label       string `yaml:"label"`       // Human-readable label.  Required.
	Type        string `yaml:"type"`        // text, textarea, select.
	Placeholder string `yaml:"placeholder"` // Optional placeholder text.
	Hint        string `yaml:"hint"`        // Optional muted text after the label.
	Required    bool   `yaml:"required"`    // Marks the label; enforcement is server side.
	MaxLength   int    `yaml:"maxlength"`   // ≥ 0, 0 means unset.
	Rows        int    `yaml:"rows"`        // textarea only.
	Clearable   bool   `yaml:"clearable"`   // select only: empty option stays selectable.
}

// Field returns the named field definition or nil.
func (fd *FormDef) Field(name string) *FieldDef {
	for i := range fd.Fields {
		if fd.Fields[i].Name == name {
			return &fd.Fields[i]
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by ID.  The boolean is false when the
// ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef parses one YAML document, validates its structure, and
// returns a populated FormDef.  It NEVER mutates the global registry.
func ParseFormDef(raw []byte, origin string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", origin, err)
	}
	if err := validateFormDef(&fd, origin); err != nil {
		return nil, err
	}
	return &fd, nil
}

// RegisterFS loads every “*.yaml” under fsys and registers it.  It fails
// fast on the first broken file so issues surface at boot.
func RegisterFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
			return nil
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read form file %s: %w", path, err)
		}
		fd, err := ParseFormDef(raw, path)
		if err != nil {
			return err
		}
		register(fd)
		return nil
	})
}

func register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var knownTypes = map[string]bool{"text": true, "textarea": true, "select": true}

// validateFormDef enforces structural rules that cannot be expressed via YAML
// tags alone.
func validateFormDef(fd *FormDef, origin string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", origin)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", origin)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("form %s: field missing 'name'", origin)
		}
		if f.Label == "" {
			return fmt.Errorf("form %s: field '%s' missing 'label'", origin, f.Name)
		}
		if !knownTypes[f.Type] {
			return fmt.Errorf("form %s: field '%s' has unsupported type %q", origin, f.Name, f.Type)
		}
		if f.MaxLength < 0 || f.Rows < 0 {
			return fmt.Errorf("form %s: field '%s' maxlength/rows cannot be negative", origin, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", origin, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

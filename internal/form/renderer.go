// internal/form/renderer.go
//
// Forms subsystem: HTML field renderer.
//
// Context
//   Templates own the page layout; this file owns the markup of one field so
//   every form gets the same accessible structure:
//
//     <div class="form-field [has-error]">
//       <label for="fld-{name}">Label *</label>
//       <input|textarea|select id="fld-{name}" name="{name}" …>
//       <p id="fld-{name}-error" class="error">message</p>
//     </div>
//
//   Invalid controls get aria-invalid and aria-describedby pointing at the
//   error paragraph.  Select values missing from the option list still render
//   as a selected option with a blank label so stale data never breaks the
//   page.
//
// Style
//   Output HTML is deliberately plain, no framework classes, so themes can
//   style via element selectors or the class hooks above.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
)

// Option is one select entry.
type Option struct {
	Value string
	Label string
}

// FieldInput carries the runtime state of one field.
type FieldInput struct {
	Value    string
	Options  []Option // select only
	Error    string   // empty when valid
	Disabled bool
}

// RenderField returns the markup for f populated from in.
func RenderField(f *FieldDef, in FieldInput) (template.HTML, error) {
	if f == nil {
		return "", fmt.Errorf("RenderField: nil field definition")
	}

	var buf bytes.Buffer
	id := "fld-" + html.EscapeString(f.Name)
	errID := id + "-error"

	if in.Error != "" {
		buf.WriteString(`<div class="form-field has-error">` + "\n")
	} else {
		buf.WriteString(`<div class="form-field">` + "\n")
	}
	writeLabel(&buf, f, id)

	// Attributes shared by every control.
	attrs := `id="` + id + `" name="` + html.EscapeString(f.Name) + `"`
	if in.Error != "" {
		attrs += ` aria-invalid="true" aria-describedby="` + errID + `"`
	}
	if in.Disabled {
		attrs += ` disabled`
	}

	switch f.Type {
	case "text":
		buf.WriteString(`<input ` + attrs + ` type="text"`)
		writePlaceholder(&buf, f)
		if f.MaxLength > 0 {
			buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
		}
		buf.WriteString(` value="` + html.EscapeString(in.Value) + `">` + "\n")

	case "textarea":
		buf.WriteString(`<textarea ` + attrs)
		if f.Rows > 0 {
			buf.WriteString(` rows="` + strconv.Itoa(f.Rows) + `"`)
		}
		if f.MaxLength > 0 {
			buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
		}
		writePlaceholder(&buf, f)
		buf.WriteString(`>` + html.EscapeString(in.Value) + `</textarea>` + "\n")

	case "select":
		buf.WriteString(`<select ` + attrs + `>` + "\n")
		writeOptions(&buf, f, in)
		buf.WriteString(`</select>` + "\n")

	default:
		return "", fmt.Errorf("RenderField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	if in.Error != "" {
		buf.WriteString(`<p id="` + errID + `" class="error" role="alert">` + html.EscapeString(in.Error) + `</p>` + "\n")
	}
	buf.WriteString(`</div>` + "\n")
	return template.HTML(buf.String()), nil
}

func writeLabel(buf *bytes.Buffer, f *FieldDef, id string) {
	buf.WriteString(`<label for="` + id + `">` + html.EscapeString(f.Label))
	if f.Required {
		buf.WriteString(` <span class="required">*</span>`)
	}
	if f.Hint != "" {
		buf.WriteString(` <span class="hint">` + html.EscapeString(f.Hint) + `</span>`)
	}
	buf.WriteString(`</label>` + "\n")
}

func writePlaceholder(buf *bytes.Buffer, f *FieldDef) {
	if f.Placeholder != "" {
		buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
	}
}

// writeOptions emits the placeholder entry, every option, and a blank
// selected entry when the value is not among the options.
func writeOptions(buf *bytes.Buffer, f *FieldDef, in FieldInput) {
	// The empty entry doubles as the placeholder.  Non-clearable selects
	// only offer it while nothing is chosen.
	if f.Clearable || in.Value == "" {
		sel := ""
		if in.Value == "" {
			sel = ` selected`
		}
		buf.WriteString(`<option value=""` + sel + `>` + html.EscapeString(f.Placeholder) + `</option>` + "\n")
	}

	found := in.Value == ""
	for _, o := range in.Options {
		sel := ""
		if o.Value == in.Value {
			sel = ` selected`
			found = true
		}
		buf.WriteString(`<option value="` + html.EscapeString(o.Value) + `"` + sel + `>` + html.EscapeString(o.Label) + `</option>` + "\n")
	}
	if !found {
		buf.WriteString(`<option value="` + html.EscapeString(in.Value) + `" selected></option>` + "\n")
	}
}

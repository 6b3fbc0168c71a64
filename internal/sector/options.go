// internal/sector/options.go
//
// Selection adapters.  The select widgets only understand (value, label)
// pairs, so lookup rows are projected into Option values keyed by the
// decimal id.

package sector

import "strconv"

// Option is one entry in a select widget.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MunicipalityOptions projects municipalities into select options, keeping
// input order.
func MunicipalityOptions(ms []Municipality) []Option {
	out := make([]Option, 0, len(ms))
	for _, m := range ms {
		out = append(out, Option{Value: formatID(m.ID), Label: m.Name})
	}
	return out
}

// DepartmentOptions projects departments into select options, keeping input
// order.
func DepartmentOptions(ds []Department) []Option {
	out := make([]Option, 0, len(ds))
	for _, d := range ds {
		out = append(out, Option{Value: formatID(d.ID), Label: d.Name})
	}
	return out
}

// Selected returns the option the widget should display for value.  An empty
// value yields nil.  A value missing from opts still yields an option, with
// an empty label, so a stale selection renders blank instead of failing.
func Selected(opts []Option, value string) *Option {
	if value == "" {
		return nil
	}
	for _, o := range opts {
		if o.Value == value {
			return &Option{Value: o.Value, Label: o.Label}
		}
	}
	return &Option{Value: value}
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

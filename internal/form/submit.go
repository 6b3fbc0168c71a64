// internal/form/submit.go
//
// Forms subsystem: POST parsing helper.
//
// Context
//   Every form handler starts the same way: parse the body and reject
//   anything that does not carry a valid CSRF token.  ParsePost does both so
//   component code stays terse.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/http"
	"net/url"
)

// ErrCSRF marks a POST whose security token is missing, forged, or expired.
var ErrCSRF = errors.New("form: security token invalid")

// ParsePost parses r and verifies its CSRF token.  On success it returns the
// posted values.
func ParsePost(r *http.Request, tokens *Tokens) (url.Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	if !tokens.Verify(r.PostForm.Get(TokenField)) {
		return nil, ErrCSRF
	}
	return r.PostForm, nil
}

// IsCSRFError reports whether err came from a failed token check.
func IsCSRFError(err error) bool { return errors.Is(err, ErrCSRF) }

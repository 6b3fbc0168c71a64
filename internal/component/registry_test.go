package component

import (
	"io/fs"
	"testing"

	"github.com/go-chi/chi/v5"
)

type stub struct{ name string }

func (s stub) Name() string       { return s.name }
func (s stub) Routes() chi.Router { return chi.NewRouter() }
func (s stub) Migrations() fs.FS  { return nil }
func (s stub) Init(Deps) error    { return nil }

func TestRegisterAll_Sorted(t *testing.T) {
	Register(stub{"zeta"})
	Register(stub{"alpha"})
	Register(stub{"alpha"})

	var names []string
	for _, c := range All() {
		if c.Name() == "alpha" || c.Name() == "zeta" {
			names = append(names, c.Name())
		}
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("names = %v", names)
	}
}

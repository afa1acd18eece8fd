package parser

import (
	"maps"
	"slices"
)

// Model is the compiled API surface handed to the renderer. It is not
// modified after Build returns it.
type Model struct {
	Functions []Func
	Callbacks []Func
	Consts    []ClassifiedConstant
	Enums     []*Type
	Types     map[string]*Type

	// Unmatched holds scanned constants that no enum rule claimed.
	Unmatched []ScannedConstant
}

// EnumConsts returns the constants classified under t.
func (m *Model) EnumConsts(t *Type) []ClassifiedConstant {
	var out []ClassifiedConstant
	for _, c := range m.Consts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// DeclaredTypes returns the types introduced by type declarations that
// are not marked builtin, sorted by name.
func (m *Model) DeclaredTypes() []*Type {
	var out []*Type
	for _, name := range slices.Sorted(maps.Keys(m.Types)) {
		if t := m.Types[name]; !t.Builtin && !slices.Contains(m.Enums, t) {
			out = append(out, t)
		}
	}
	return out
}

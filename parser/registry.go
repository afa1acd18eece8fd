package parser

import (
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
)

// PointerMarker prefixes a type name to denote a pointer to that type.
const PointerMarker = "*"

var structSpecRe = regexp.MustCompile(`^struct\[(\d+)(?:,(\d+))?\]$`)

var scalarSizes = map[string]struct {
	kind  MachineKind
	size  int
	align int
}{
	"void":    {KindVoid, 0, 0},
	"int32":   {KindInt32, 4, 4},
	"int64":   {KindInt64, 8, 8},
	"float32": {KindFloat32, 4, 4},
	"float64": {KindFloat64, 8, 8},
}

var builtinTypes = []struct {
	name string
	kind string
}{
	{"", "void"},
	{"void", "void"},
	{"bool", "int32"},
	{"int8", "int32"},
	{"uint8", "int32"},
	{"byte", "int32"},
	{"int16", "int32"},
	{"uint16", "int32"},
	{"int32", "int32"},
	{"uint32", "int32"},
	{"uintptr", "int32"},
	{"int64", "int64"},
	{"uint64", "int64"},
	{"float32", "float32"},
	{"float64", "float64"},
}

// Registry resolves type names to their machine representation.
type Registry struct {
	types    map[string]*Type
	pointers map[string]*Type
	void     *Type
}

func NewRegistry() *Registry {
	r := &Registry{
		types:    make(map[string]*Type),
		pointers: make(map[string]*Type),
	}
	r.defineBuiltin()
	return r
}

func (r *Registry) defineBuiltin() {
	for _, b := range builtinTypes {
		if b.kind == "void" {
			if r.void == nil {
				r.void = &Type{Name: "void", Kind: KindVoid, Builtin: true}
			}
			r.types[b.name] = r.void
			continue
		}

		s := scalarSizes[b.kind]
		r.types[b.name] = &Type{Name: b.name, Kind: s.kind, Size: s.size, Align: s.align, Builtin: true}
	}
}

// Void returns the builtin void type. It is not affected by later
// definitions named void.
func (r *Registry) Void() *Type {
	return r.void
}

// Lookup returns the type registered under name, without synthesizing
// pointers.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// DefineEnum registers name as an enumeration type represented as int32.
func (r *Registry) DefineEnum(name string) *Type {
	t := &Type{Name: name, Kind: KindInt32, Size: 4, Align: 4}
	r.types[name] = t
	return t
}

// DefineAlias registers name with the machine representation described by
// spec.
func (r *Registry) DefineAlias(name, spec string, builtin bool) (*Type, error) {
	kind, size, align, err := ParseMachineSpec(spec)
	if err != nil {
		return nil, err
	}

	t := &Type{Name: name, Kind: kind, Size: size, Align: align, Builtin: builtin}
	r.types[name] = t
	return t, nil
}

// Resolve returns the type registered under name. Names starting with
// PointerMarker resolve to a pointer to the named base type.
func (r *Registry) Resolve(name string) (*Type, error) {
	if strings.HasPrefix(name, PointerMarker) {
		elem, err := r.Resolve(strings.TrimPrefix(name, PointerMarker))
		if err != nil {
			return nil, err
		}
		return r.PointerTo(elem), nil
	}

	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedType, name)
	}
	return t, nil
}

// PointerTo returns the pointer type for elem. Repeated calls return the
// same value.
func (r *Registry) PointerTo(elem *Type) *Type {
	name := PointerMarker + elem.Name
	if p, ok := r.pointers[name]; ok && p.Elem == elem {
		return p
	}

	p := &Type{Name: name, Kind: KindPointer, Size: 4, Align: 4, Elem: elem}
	r.pointers[name] = p
	return p
}

// Snapshot returns a copy of the name to type table.
func (r *Registry) Snapshot() map[string]*Type {
	return maps.Clone(r.types)
}

// ParseMachineSpec parses a machine representation: a scalar keyword, a
// pointer (any spec starting with PointerMarker), or struct[size] and
// struct[size,align].
func ParseMachineSpec(spec string) (kind MachineKind, size, align int, err error) {
	switch {
	case strings.HasPrefix(spec, PointerMarker):
		return KindPointer, 4, 4, nil

	case strings.HasPrefix(spec, "struct"):
		m := structSpecRe.FindStringSubmatch(spec)
		if m == nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedTypeSpec, spec)
		}

		size, err = strconv.Atoi(m[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q: %v", ErrMalformedTypeSpec, spec, err)
		}

		align = 4
		if m[2] != "" {
			align, err = strconv.Atoi(m[2])
			if err != nil {
				return 0, 0, 0, fmt.Errorf("%w: %q: %v", ErrMalformedTypeSpec, spec, err)
			}
			if !isPowerOfTwo(align) {
				return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidAlignment, spec)
			}
		}
		return KindStruct, size, align, nil
	}

	s, ok := scalarSizes[spec]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedTypeSpec, spec)
	}
	return s.kind, s.size, s.align, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

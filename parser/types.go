package parser

import (
	"fmt"
	"regexp"
)

// MachineKind is the ABI-level category of a type.
type MachineKind int

const (
	KindVoid MachineKind = iota
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindPointer
	KindStruct
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindPointer: "*",
	KindStruct:  "struct",
}

func (k MachineKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("MachineKind(%d)", int(k))
	}
	return kindNames[k]
}

// Type is a named type with its machine representation. Size and Align are
// in bytes.
type Type struct {
	Name    string
	Kind    MachineKind
	Size    int
	Align   int
	Builtin bool

	// Elem is the pointee of a synthesized pointer type.
	Elem *Type
}

func (t *Type) IsVoid() bool    { return t.Kind == KindVoid }
func (t *Type) IsPointer() bool { return t.Kind == KindPointer }
func (t *Type) IsStruct() bool  { return t.Kind == KindStruct }

func (t *Type) String() string {
	return t.Name
}

type Arg struct {
	Name string
	Type *Type
}

// Func is a call across the foreign boundary. Functions call out through
// Interface[Index]; callbacks have no interface binding.
type Func struct {
	Name           string
	Args           []Arg
	Result         *Type
	RenderedResult *Type
	Interface      string
	Index          int
	StructReturn   bool
}

func (f Func) IsCallback() bool {
	return f.Interface == ""
}

// EnumRule binds constants whose names match Pattern to the enumeration
// type Type.
type EnumRule struct {
	Pattern string
	Type    *Type

	re *regexp.Regexp
}

func (r EnumRule) Match(name string) bool {
	return r.re.MatchString(name)
}

type ScannedConstant struct {
	Name  string
	Value string
}

type ClassifiedConstant struct {
	Name  string
	Type  *Type
	Value string
}

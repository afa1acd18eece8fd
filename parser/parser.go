package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Builder accumulates declarations from one or more sources and compiles
// them into a Model. Enum and type declarations take effect as soon as
// they are read; function and callback signatures are resolved by Build,
// after every source has been added, so a signature may refer to a type
// declared further down or in a later source.
type Builder struct {
	marker  string
	reg     *Registry
	rules   []EnumRule
	enums   []*Type
	pending []pendingDecl
}

type pendingDecl struct {
	file string
	line int
	text string
	decl Decl
}

func NewBuilder(marker string) *Builder {
	return &Builder{
		marker: marker,
		reg:    NewRegistry(),
	}
}

func (b *Builder) Registry() *Registry {
	return b.reg
}

// AddSource reads declarations from r, one per line. name identifies the
// source in errors.
func (b *Builder) AddSource(name string, r io.Reader) error {
	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	br := bufio.NewReader(transform.NewReader(r, tr))

	for lineno := 1; ; lineno++ {
		line, err := br.ReadString('\n')
		if line != "" {
			if err := b.AddLine(name, lineno, line); err != nil {
				return err
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
	}
}

func (b *Builder) AddLine(file string, lineno int, line string) error {
	line = strings.TrimRight(line, "\r\n")

	d, err := ParseLine(b.marker, line)
	if err != nil {
		return &DeclError{File: file, Line: lineno, Text: line, Err: err}
	}

	switch d := d.(type) {
	case EnumDecl:
		t, err := b.enumType(d.Type)
		if err != nil {
			return &DeclError{File: file, Line: lineno, Text: line, Err: err}
		}
		b.rules = append(b.rules, EnumRule{Pattern: d.Pattern, Type: t, re: d.re})
	case TypeDecl:
		if b.isEnum(d.Name) {
			return &DeclError{File: file, Line: lineno, Text: line, Err: fmt.Errorf("%w: %q is an enumeration", ErrMalformedTypeDecl, d.Name)}
		}
		if _, err := b.reg.DefineAlias(d.Name, d.Spec, d.Builtin); err != nil {
			return &DeclError{File: file, Line: lineno, Text: line, Err: err}
		}
	case FuncDecl, CallbackDecl:
		b.pending = append(b.pending, pendingDecl{file: file, line: lineno, text: line, decl: d})
	case Inert:
	}

	return nil
}

// enumType returns the enumeration named name, defining it on first use.
// A name already taken by another type is an error.
func (b *Builder) enumType(name string) (*Type, error) {
	if i := slices.IndexFunc(b.enums, func(t *Type) bool { return t.Name == name }); i >= 0 {
		return b.enums[i], nil
	}
	if _, ok := b.reg.Lookup(name); ok {
		return nil, fmt.Errorf("%w: %q is already a type", ErrMalformedEnumDecl, name)
	}

	t := b.reg.DefineEnum(name)
	b.enums = append(b.enums, t)
	return t, nil
}

func (b *Builder) isEnum(name string) bool {
	return slices.ContainsFunc(b.enums, func(t *Type) bool { return t.Name == name })
}

// Build resolves the queued signatures, applies the struct return
// convention to functions and classifies consts against the enum rules.
func (b *Builder) Build(consts []ScannedConstant) (*Model, error) {
	m := &Model{
		Enums: append([]*Type(nil), b.enums...),
	}

	for _, p := range b.pending {
		switch d := p.decl.(type) {
		case FuncDecl:
			fn, err := b.signature(d.Name, d.Args, d.Result)
			if err != nil {
				return nil, &DeclError{File: p.file, Line: p.line, Text: p.text, Err: err}
			}
			fn.Interface = d.Interface
			fn.Index = d.Index
			m.Functions = append(m.Functions, RewriteStructReturn(b.reg, fn))
		case CallbackDecl:
			fn, err := b.signature(d.Name, d.Args, d.Result)
			if err != nil {
				return nil, &DeclError{File: p.file, Line: p.line, Text: p.text, Err: err}
			}
			m.Callbacks = append(m.Callbacks, fn)
		}
	}

	m.Consts, m.Unmatched = Classify(b.rules, consts)
	m.Types = b.reg.Snapshot()

	return m, nil
}

func (b *Builder) signature(name string, args []ArgDecl, result string) (Func, error) {
	fn := Func{Name: name}

	for _, a := range args {
		t, err := b.reg.Resolve(a.Type)
		if err != nil {
			return Func{}, err
		}
		fn.Args = append(fn.Args, Arg{Name: a.Name, Type: t})
	}

	t, err := b.reg.Resolve(result)
	if err != nil {
		return Func{}, err
	}
	fn.Result = t
	fn.RenderedResult = t

	return fn, nil
}

// Parse compiles the declarations in content, using DefaultMarker.
func Parse(content string, consts []ScannedConstant) (*Model, error) {
	b := NewBuilder(DefaultMarker)
	if err := b.AddSource("", strings.NewReader(content)); err != nil {
		return nil, err
	}
	return b.Build(consts)
}

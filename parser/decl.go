package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMarker introduces a directive line in a template file.
const DefaultMarker = "//"

var identRe = regexp.MustCompile(`^\w+$`)
var typeSpecRe = regexp.MustCompile(`^[\][,\w*]+$`)
var funcRe = regexp.MustCompile(`^func\s+(\w+)\(([\w\s,*]*)\)\s*([\w*]*)\s*=\s*(\w+)\s*\[\s*(\d+)\s*\]\s*$`)
var callbackRe = regexp.MustCompile(`^callback\s+(\w+)\(([\w\s,*]*)\)\s*([\w*]*)\s*$`)

// Decl is the result of parsing one line: EnumDecl, TypeDecl, FuncDecl,
// CallbackDecl or Inert.
type Decl interface {
	decl()
}

type EnumDecl struct {
	Type    string
	Pattern string

	re *regexp.Regexp
}

type TypeDecl struct {
	Name    string
	Spec    string
	Builtin bool
}

type ArgDecl struct {
	Name string
	Type string
}

type FuncDecl struct {
	Name      string
	Args      []ArgDecl
	Result    string
	Interface string
	Index     int
}

type CallbackDecl struct {
	Name   string
	Args   []ArgDecl
	Result string
}

// Inert is template text that declares nothing.
type Inert struct {
	Text string
}

func (EnumDecl) decl()     {}
func (TypeDecl) decl()     {}
func (FuncDecl) decl()     {}
func (CallbackDecl) decl() {}
func (Inert) decl()        {}

// ParseLine parses a single line. Lines that do not start with marker
// followed by one of the keywords enum, type, func or callback are Inert.
func ParseLine(marker, line string) (Decl, error) {
	line = strings.TrimRight(line, "\r\n")

	rest, ok := strings.CutPrefix(line, marker)
	if !ok {
		return Inert{Text: line}, nil
	}

	switch keyword(rest) {
	case "enum":
		return parseEnum(rest)
	case "type":
		return parseType(rest)
	case "func":
		return parseFunc(rest)
	case "callback":
		return parseCallback(rest)
	}
	return Inert{Text: line}, nil
}

func keyword(s string) string {
	for _, kw := range []string{"enum", "type", "func", "callback"} {
		after, ok := strings.CutPrefix(s, kw)
		if ok && (after == "" || after[0] == ' ' || after[0] == '\t') {
			return kw
		}
	}
	return ""
}

func parseEnum(s string) (Decl, error) {
	fields := strings.Fields(strings.TrimPrefix(s, "enum"))
	if len(fields) != 2 || !identRe.MatchString(fields[0]) {
		return nil, ErrMalformedEnumDecl
	}

	re, err := regexp.Compile(`^(?:` + fields[1] + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnumDecl, err)
	}

	return EnumDecl{Type: fields[0], Pattern: fields[1], re: re}, nil
}

func parseType(s string) (Decl, error) {
	fields := strings.Fields(strings.TrimPrefix(s, "type"))
	if len(fields) < 2 || len(fields) > 3 {
		return nil, ErrMalformedTypeDecl
	}
	if !identRe.MatchString(fields[0]) || !typeSpecRe.MatchString(fields[1]) {
		return nil, ErrMalformedTypeDecl
	}
	if len(fields) == 3 && !identRe.MatchString(fields[2]) {
		return nil, ErrMalformedTypeDecl
	}

	return TypeDecl{Name: fields[0], Spec: fields[1], Builtin: len(fields) == 3}, nil
}

func parseFunc(s string) (Decl, error) {
	m := funcRe.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrMalformedFuncDecl
	}

	args, err := parseArgs(m[2])
	if err != nil {
		return nil, err
	}

	index, err := strconv.Atoi(m[5])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFuncDecl, err)
	}

	return FuncDecl{Name: m[1], Args: args, Result: m[3], Interface: m[4], Index: index}, nil
}

func parseCallback(s string) (Decl, error) {
	m := callbackRe.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrMalformedFuncDecl
	}

	args, err := parseArgs(m[2])
	if err != nil {
		return nil, err
	}

	return CallbackDecl{Name: m[1], Args: args, Result: m[3]}, nil
}

func parseArgs(s string) ([]ArgDecl, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var args []ArgDecl
	for _, part := range strings.Split(s, ",") {
		tokens := strings.Fields(part)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedArgDecl, strings.TrimSpace(part))
		}
		args = append(args, ArgDecl{Name: tokens[0], Type: tokens[1]})
	}
	return args, nil
}

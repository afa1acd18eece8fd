package generator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode"

	"github.com/Masterminds/sprig/v3"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ardanlabs/mkzfile/parser"
)

// Template is a template file. Its directive lines have already been fed
// to a parser.Builder; here it is only expanded.
type Template struct {
	Name string
	Text string
}

// ReadTemplate reads a template file as UTF-8, or as UTF-16 when it starts
// with a UTF-16 byte order mark. The mark is dropped and line endings are
// normalized.
func ReadTemplate(path string) (Template, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}

	bts, _, err = transform.Bytes(xunicode.BOMOverride(xunicode.UTF8.NewDecoder()), bts)
	if err != nil {
		return Template{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	text := strings.ReplaceAll(string(bts), "\r\n", "\n")
	return Template{Name: path, Text: text}, nil
}

type Generator struct {
	command string
	model   *parser.Model
}

// New returns a Generator expanding templates against model. command is
// recorded at the top of the output.
func New(command string, model *parser.Model) *Generator {
	return &Generator{
		command: command,
		model:   model,
	}
}

// Generate writes the output header followed by each expanded template.
func (g *Generator) Generate(w io.Writer, templates ...Template) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "// %s\n", g.command)
	fmt.Fprintf(bw, "// MACHINE GENERATED BY THE COMMAND ABOVE; DO NOT EDIT\n\n")

	for _, t := range templates {
		if err := g.Render(bw, t); err != nil {
			return err
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func (g *Generator) Render(w io.Writer, t Template) error {
	tmpl, err := template.New(t.Name).Funcs(Funcs()).Parse(t.Text)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	if err := tmpl.Execute(w, g.model); err != nil {
		return fmt.Errorf("expanding template: %w", err)
	}
	return nil
}

// Funcs returns the functions available to templates: the sprig text
// functions plus the layout helpers and identifier conversions.
func Funcs() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["framesize"] = parser.FrameSize
	fm["offsets"] = parser.Offsets
	fm["align"] = parser.Align
	fm["max"] = maxInt
	fm["goname"] = toGoName
	fm["lowerCamel"] = toLowerCamel
	return fm
}

func maxInt(a int, rest ...int) int {
	for _, b := range rest {
		a = max(a, b)
	}
	return a
}

var acronyms = map[string]bool{
	"id": true, "url": true, "api": true, "http": true, "json": true, "xml": true,
	"sql": true, "io": true, "ip": true, "tcp": true, "udp": true, "utf8": true,
}

func toGoName(name string) string {
	var result strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '_' }) {
		if acronyms[strings.ToLower(part)] {
			result.WriteString(strings.ToUpper(part))
			continue
		}
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func toLowerCamel(name string) string {
	goName := toGoName(name)
	if goName == "" {
		return ""
	}
	runes := []rune(goName)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// Package scanner extracts enumeration constants from C header files.
package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/gobwas/glob"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ardanlabs/mkzfile/parser"
)

const (
	DefaultPrefix = "PP"
	DefaultGlob   = "*.h"
)

// Scanner matches lines of the form NAME = value, where NAME starts with
// a fixed prefix.
type Scanner struct {
	re *regexp.Regexp

	index  map[string]int
	consts []parser.ScannedConstant
}

func New(prefix string) (*Scanner, error) {
	re, err := regexp.Compile(`(` + regexp.QuoteMeta(prefix) + `\w*)\s*=\s*([^,\n\r]+),?\s*$`)
	if err != nil {
		return nil, err
	}

	return &Scanner{re: re, index: make(map[string]int)}, nil
}

// Scan adds the constants found in r. A constant seen again keeps its
// first position and takes the new value.
func (s *Scanner) Scan(r io.Reader) error {
	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	br := bufio.NewReader(transform.NewReader(r, tr))

	for {
		line, err := br.ReadString('\n')
		if m := s.re.FindStringSubmatch(line); m != nil {
			s.add(m[1], m[2])
		}

		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func (s *Scanner) add(name, value string) {
	if i, ok := s.index[name]; ok {
		s.consts[i].Value = value
		return
	}

	s.index[name] = len(s.consts)
	s.consts = append(s.consts, parser.ScannedConstant{Name: name, Value: value})
}

func (s *Scanner) ScanFiles(paths ...string) error {
	for _, path := range paths {
		if err := s.scanFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) scanFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.Scan(f); err != nil {
		return fmt.Errorf("scanning %s: %w", path, err)
	}
	return nil
}

// Constants returns the constants scanned so far, in the order they were
// first seen.
func (s *Scanner) Constants() []parser.ScannedConstant {
	return slices.Clone(s.consts)
}

// Discover returns the regular files in dirs whose base name matches
// pattern, sorted by name within each directory.
func Discover(dirs []string, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("header pattern %q: %w", pattern, err)
	}

	var paths []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if e.Type().IsRegular() && g.Match(e.Name()) {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}
	return paths, nil
}

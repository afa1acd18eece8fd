// Package config loads generator settings from an optional YAML file and
// MKZFILE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ardanlabs/mkzfile/parser"
	"github.com/ardanlabs/mkzfile/scanner"
)

type Config struct {
	// Include lists the directories scanned for header files.
	Include []string `yaml:"include"`
	// HeaderGlob selects header files by base name.
	HeaderGlob string `yaml:"header_glob"`
	// Prefix is the namespace prefix of scanned constants.
	Prefix string `yaml:"prefix"`
	// Marker introduces directive lines in templates. It may be empty.
	Marker string `yaml:"marker"`
	// Output is the generated file; empty means standard output.
	Output    string   `yaml:"output"`
	Templates []string `yaml:"templates"`
	Debug     bool     `yaml:"debug"`
}

func Default() Config {
	return Config{
		HeaderGlob: scanner.DefaultGlob,
		Prefix:     scanner.DefaultPrefix,
		Marker:     parser.DefaultMarker,
	}
}

// Load returns the defaults overridden by the file at path, if path is not
// empty, and then by the environment. Relative include, template and
// output paths in the file are taken relative to the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, p := range c.Include {
		c.Include[i] = resolve(dir, p)
	}
	for i, p := range c.Templates {
		c.Templates[i] = resolve(dir, p)
	}
	if c.Output != "" {
		c.Output = resolve(dir, c.Output)
	}

	return nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func (c *Config) applyEnv() {
	if debug := clean("MKZFILE_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			c.Debug = d
		} else {
			c.Debug = true
		}
	}

	if include := clean("MKZFILE_INCLUDE"); include != "" {
		c.Include = append(c.Include, filepath.SplitList(include)...)
	}

	if prefix := clean("MKZFILE_PREFIX"); prefix != "" {
		c.Prefix = prefix
	}

	if glob := clean("MKZFILE_HEADER_GLOB"); glob != "" {
		c.HeaderGlob = glob
	}
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("include", c.Include),
		slog.String("header_glob", c.HeaderGlob),
		slog.String("prefix", c.Prefix),
		slog.String("marker", c.Marker),
		slog.String("output", c.Output),
		slog.Any("templates", c.Templates),
	)
}

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ardanlabs/mkzfile/config"
	"github.com/ardanlabs/mkzfile/generator"
	"github.com/ardanlabs/mkzfile/logutil"
	"github.com/ardanlabs/mkzfile/parser"
	"github.com/ardanlabs/mkzfile/scanner"
)

var errStale = errors.New("generated file is out of date")

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mkzfile [flags] template...",
		Short: "Generate PPAPI bindings from annotated templates",
		Long: `mkzfile reads //enum, //type, //func and //callback directives from the
template files, classifies the constants found in the header files of the
include directories, and expands the templates against the result.`,
		Example: "  mkzfile -I $NACL_SDK/pepper_34/include/ppapi/c -o zconsts.go consts.got",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
		RunE: RunHandler,
	}

	rootCmd.Flags().String("config", "", "YAML configuration file")
	rootCmd.Flags().StringArrayP("include", "I", nil, "Directory of header files to scan for constants (repeatable)")
	rootCmd.Flags().String("header-glob", scanner.DefaultGlob, "Pattern selecting header files by name")
	rootCmd.Flags().String("prefix", scanner.DefaultPrefix, "Name prefix of the constants to scan")
	rootCmd.Flags().String("marker", parser.DefaultMarker, "Text introducing directive lines in templates")
	rootCmd.Flags().StringP("output", "o", "", "Write the generated code to this file instead of standard output")
	rootCmd.Flags().Bool("check", false, "Fail if --output is not up to date instead of writing it")
	rootCmd.Flags().Bool("watch", false, "Regenerate whenever a template or header changes")
	rootCmd.Flags().Bool("debug", false, "Show debug logging")
	rootCmd.Flags().Bool("trace", false, "Show trace logging")

	rootCmd.MarkFlagsMutuallyExclusive("check", "watch")

	return rootCmd
}

type options struct {
	config.Config

	check   bool
	command string
	stdout  io.Writer
}

func RunHandler(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}

	trace, _ := cmd.Flags().GetBool("trace")
	slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), logutil.Level(opts.Debug, trace)))
	slog.Debug("configuration", "config", opts.Config)

	if len(opts.Templates) == 0 {
		return errors.New("no template files")
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return Watch(cmd.Context(), opts)
	}

	return generate(opts)
}

func loadOptions(cmd *cobra.Command, args []string) (options, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return options{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("include") {
		include, _ := flags.GetStringArray("include")
		cfg.Include = append(cfg.Include, include...)
	}
	if flags.Changed("header-glob") {
		cfg.HeaderGlob, _ = flags.GetString("header-glob")
	}
	if flags.Changed("prefix") {
		cfg.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("marker") {
		cfg.Marker, _ = flags.GetString("marker")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Debug = true
	}
	cfg.Templates = append(cfg.Templates, args...)

	opts := options{
		Config:  cfg,
		command: commandLine(),
		stdout:  cmd.OutOrStdout(),
	}
	opts.check, _ = flags.GetBool("check")

	if opts.check && opts.Output == "" {
		return options{}, errors.New("--check requires --output")
	}

	return opts, nil
}

// commandLine is recorded at the top of the generated file.
func commandLine() string {
	args := append([]string{filepath.Base(os.Args[0])}, os.Args[1:]...)
	return strings.Join(args, " ")
}

// compile scans the headers and builds the model from the templates.
func compile(opts options) (*parser.Model, []generator.Template, error) {
	headers, err := scanner.Discover(opts.Include, opts.HeaderGlob)
	if err != nil {
		return nil, nil, err
	}

	s, err := scanner.New(opts.Prefix)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ScanFiles(headers...); err != nil {
		return nil, nil, err
	}
	consts := s.Constants()
	slog.Debug("scanned headers", "files", len(headers), "constants", len(consts))

	b := parser.NewBuilder(opts.Marker)

	var templates []generator.Template
	for _, path := range opts.Templates {
		t, err := generator.ReadTemplate(path)
		if err != nil {
			return nil, nil, err
		}
		if err := b.AddSource(path, strings.NewReader(t.Text)); err != nil {
			return nil, nil, err
		}
		templates = append(templates, t)
	}

	m, err := b.Build(consts)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("compiled model",
		"functions", len(m.Functions),
		"callbacks", len(m.Callbacks),
		"enums", len(m.Enums),
		"constants", len(m.Consts),
		"unmatched", len(m.Unmatched))
	for _, c := range m.Unmatched {
		logutil.Trace("unmatched constant", "name", c.Name)
	}

	return m, templates, nil
}

func generate(opts options) error {
	m, templates, err := compile(opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := generator.New(opts.command, m).Generate(&buf, templates...); err != nil {
		return err
	}

	switch {
	case opts.check:
		return check(opts.Output, buf.String())
	case opts.Output == "":
		_, err := opts.stdout.Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	slog.Info("generated", "output", opts.Output)
	return nil
}

// check compares the generated code against the file at path. The
// command line on the first line is not compared.
func check(path, generated string) error {
	bts, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if diff := generator.Diff(withoutCommand(string(bts)), withoutCommand(generated)); diff != "" {
		return fmt.Errorf("%w: %s\n%s", errStale, path, diff)
	}
	return nil
}

func withoutCommand(s string) string {
	_, rest, _ := strings.Cut(s, "\n")
	return rest
}

// Watch regenerates the output until ctx is done. Failed runs are logged
// and do not stop the watch.
func Watch(ctx context.Context, opts options) error {
	w, err := newWatcher(opts)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := generate(opts); err != nil {
		slog.Error("generate failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			slog.Warn("watch error", "error", err)
		case path := <-w.Changes():
			slog.Info("changed, regenerating", "path", path)
			if err := generate(opts); err != nil {
				slog.Error("generate failed", "error", err)
			}
		}
	}
}

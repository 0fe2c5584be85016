// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program jdomfmt reads lenient JSON text and writes it back in a
// normalized form, either pretty-printed or compact.
//
// Usage:
//
//	jdomfmt [flags] [file...]
//
// With no files, or with the file name "-", input is read from stdin.
// Output is pretty-printed when stdout is a terminal and compact otherwise,
// unless --pretty or --compact is given.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/dom"
	"github.com/creachadair/jdom/pretty"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// config holds the settings of the program. It can be loaded from a YAML
// file; flags given on the command line take precedence.
type config struct {
	Output      string `yaml:"output"`
	Columns     int    `yaml:"columns"`
	WrapNumeric bool   `yaml:"wrap-numeric"`
	Compact     bool   `yaml:"compact"`
	Pretty      bool   `yaml:"pretty"`
	Select      string `yaml:"select"`
	Verbose     bool   `yaml:"verbose"`
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("jdomfmt", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jdomfmt [flags] [file...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var cfg config
	var configPath string
	var check bool
	fs.StringVarP(&cfg.Output, "output", "o", "json", "output style: json, javascript, or minimal")
	fs.IntVarP(&cfg.Columns, "columns", "w", pretty.DefaultColumns, "maximum width of single-line containers")
	fs.BoolVar(&cfg.WrapNumeric, "wrap-numeric", false, "wrap arrays of numbers across lines")
	fs.BoolVarP(&cfg.Compact, "compact", "c", false, "write compact output")
	fs.BoolVarP(&cfg.Pretty, "pretty", "p", false, "write pretty-printed output")
	fs.StringVarP(&cfg.Select, "select", "s", "", "write only the value at this trace (e.g. .items[0].name)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log debug events")
	fs.BoolVar(&check, "check", false, "validate input without writing output")
	fs.StringVar(&configPath, "config", "", "read settings from this YAML file")
	if err := fs.Parse(args); errors.Is(err, pflag.ErrHelp) {
		return 0
	} else if err != nil {
		return 2
	}

	if configPath != "" {
		if err := loadConfig(configPath, fs, &cfg); err != nil {
			fmt.Fprintf(stderr, "jdomfmt: %v\n", err)
			return 2
		}
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(stderr))
	if cfg.Verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	ot, err := jdom.ParseOutputType(cfg.Output)
	if err != nil {
		level.Error(logger).Log("msg", "invalid flag", "flag", "output", "err", err)
		return 2
	} else if cfg.Compact && cfg.Pretty {
		level.Error(logger).Log("msg", "--compact and --pretty are mutually exclusive")
		return 2
	}
	usePretty := cfg.Pretty || (!cfg.Compact && isTerminal(stdout))
	ps := pretty.Settings{
		OutputType:        ot,
		SingleLineColumns: cfg.Columns,
		WrapNumericArrays: cfg.WrapNumeric,
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}
	status := 0
	for _, path := range files {
		root, err := readInput(path, stdin)
		if err != nil {
			level.Error(logger).Log("msg", "invalid input", "file", path, "err", err)
			status = 1
			continue
		}
		level.Debug(logger).Log("msg", "parsed input", "file", path, "kind", root.Kind(), "len", root.Len())
		if check {
			continue
		}
		if cfg.Select != "" {
			root, err = dom.Find(root, cfg.Select)
			if err != nil {
				level.Error(logger).Log("msg", "select failed", "file", path, "trace", cfg.Select, "err", err)
				status = 1
				continue
			}
		}

		if usePretty {
			err = pretty.Format(stdout, root, ps)
		} else {
			err = root.WriteText(stdout, ot)
		}
		if err == nil {
			_, err = io.WriteString(stdout, "\n")
		}
		if err != nil {
			level.Error(logger).Log("msg", "write failed", "err", err)
			return 1
		}
	}
	return status
}

// loadConfig reads YAML settings from path into cfg. Settings whose flags
// were set on the command line are not changed.
func loadConfig(path string, fs *pflag.FlagSet, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config %q: %w", path, err)
	}
	if !fs.Changed("output") && file.Output != "" {
		cfg.Output = file.Output
	}
	if !fs.Changed("columns") && file.Columns > 0 {
		cfg.Columns = file.Columns
	}
	if !fs.Changed("select") && file.Select != "" {
		cfg.Select = file.Select
	}
	setBool := func(name string, dst *bool, val bool) {
		if !fs.Changed(name) && val {
			*dst = true
		}
	}
	setBool("wrap-numeric", &cfg.WrapNumeric, file.WrapNumeric)
	setBool("compact", &cfg.Compact, file.Compact)
	setBool("pretty", &cfg.Pretty, file.Pretty)
	setBool("verbose", &cfg.Verbose, file.Verbose)
	return nil
}

// readInput parses the contents of path, or of stdin if path is "-".
func readInput(path string, stdin io.Reader) (*dom.Value, error) {
	if path == "-" {
		return dom.Parse(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Package cli parses the command line of the rendervariations command.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Config is the parsed command line.
type Config struct {
	FieldPaths    []string
	Replace       bool
	IgnoreMissing bool
	// Workers is 0 when the flag was not given.
	Workers    int
	NoProgress bool
	LogFormat  string
	LogLevel   string
}

// Parse processes command-line arguments. Flags may appear before, between
// or after the field paths. It returns the Config, a boolean indicating if
// the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("rendervariations", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
rendervariations - Renders all variations of image fields.

Usage:
  rendervariations [options] <app.model.field app.model.field>

Options:
`)
		flagSet.PrintDefaults()
	}

	cfg := &Config{}
	flagSet.BoolVar(&cfg.Replace, "replace", false, "Replace existing files.")
	flagSet.BoolVar(&cfg.IgnoreMissing, "ignore-missing", false, "Ignore missing source file error and skip render for that file.")
	flagSet.BoolVar(&cfg.IgnoreMissing, "i", false, "Ignore missing source files (shorthand).")
	flagSet.IntVar(&cfg.Workers, "workers", 0, "Number of concurrent render workers. 0 uses RENDER_WORKERS or the number of CPUs.")
	flagSet.BoolVar(&cfg.NoProgress, "no-progress", false, "Do not draw a progress bar.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	rest := args
	for {
		if err := flagSet.Parse(rest); err != nil {
			if err == flag.ErrHelp {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if flagSet.NArg() == 0 {
			break
		}
		// Everything after "--" is a path, even if it looks like a flag.
		if consumed := len(rest) - flagSet.NArg(); consumed > 0 && rest[consumed-1] == "--" {
			cfg.FieldPaths = append(cfg.FieldPaths, flagSet.Args()...)
			break
		}
		cfg.FieldPaths = append(cfg.FieldPaths, flagSet.Arg(0))
		rest = flagSet.Args()[1:]
	}
	slog.Debug("Arguments parsed successfully.", "field_paths", cfg.FieldPaths)

	if len(cfg.FieldPaths) == 0 {
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "at least one field path is required"}
	}
	if cfg.Workers < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must not be negative"}
	}

	cfg.LogFormat = strings.ToLower(*logFormatFlag)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(*logLevelFlag)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/formulamap/internal/app"
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

func usageError(msg string) *ExitError {
	return &ExitError{Code: 2, Message: msg}
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Parse processes command-line arguments on top of the environment defaults
// in env. It returns a populated Config, a boolean indicating if the program
// should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer, env app.Env) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("formulamap", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
formulamap - Evaluate named formulas with automatic dependency tracking.

Usage:
  formulamap [options] [SHEET_PATH...]

Arguments:
  SHEET_PATH
    Path to a .hcl or .toml sheet, or a directory containing sheets.

Options:
`)
		flagSet.PrintDefaults()
	}

	var sheets, sets, unsets stringList
	flagSet.Var(&sheets, "sheet", "Path to a sheet file or directory. Repeatable.")
	flagSet.Var(&sheets, "s", "Path to a sheet file or directory (shorthand).")
	flagSet.Var(&sets, "set", "Define a variable as NAME=EXPR after loading sheets. Repeatable.")
	flagSet.Var(&unsets, "unset", "Remove a variable after applying assignments. Repeatable.")
	httpPortFlag := flagSet.Int("http-port", env.HTTPPort, "Port for the HTTP server (/health, /vars, /metrics). 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", env.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError(err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	paths := append([]string(nil), sheets...)
	paths = append(paths, flagSet.Args()...)

	if len(paths) == 0 && len(sets) == 0 && len(unsets) == 0 && *httpPortFlag == 0 {
		slog.Debug("Nothing to do, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	assignments := make([]app.Assignment, 0, len(sets))
	for _, s := range sets {
		a, err := app.ParseAssignment(s)
		if err != nil {
			return nil, false, usageError(err.Error())
		}
		assignments = append(assignments, a)
	}

	removals := make([]string, 0, len(unsets))
	for _, name := range unsets {
		removals = append(removals, strings.TrimSpace(name))
	}

	config, err := app.NewConfig(app.Config{
		SheetPaths:      paths,
		Assignments:     assignments,
		Removals:        removals,
		HealthcheckPort: *httpPortFlag,
		LogFormat:       strings.ToLower(*logFormatFlag),
		LogLevel:        strings.ToLower(*logLevelFlag),
	})
	if err != nil {
		return nil, false, usageError(err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "sheets", len(config.SheetPaths), "assignments", len(config.Assignments), "removals", len(config.Removals))
	return config, false, nil
}

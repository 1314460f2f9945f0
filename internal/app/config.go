package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SheetPaths  []string     // .hcl and .toml files or directories
	Assignments []Assignment // applied after the sheets
	Removals    []string     // applied after the assignments

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// Assignment is a single NAME=EXPR given on the command line.
type Assignment struct {
	Name       string
	Expression string
}

// Env holds the defaults read from the process environment. Flags override
// them.
type Env struct {
	LogLevel  string `env:"FORMULAMAP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FORMULAMAP_LOG_FORMAT" envDefault:"text"`
	HTTPPort  int    `env:"FORMULAMAP_HTTP_PORT" envDefault:"0"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// ParseAssignment splits "NAME=EXPR" at the first '='.
func ParseAssignment(s string) (Assignment, error) {
	name, expression, found := strings.Cut(s, "=")
	if !found {
		return Assignment{}, fmt.Errorf("invalid assignment %q: want NAME=EXPR", s)
	}
	a := Assignment{Name: strings.TrimSpace(name), Expression: strings.TrimSpace(expression)}
	if err := validateName(a.Name); err != nil {
		return Assignment{}, err
	}
	if a.Expression == "" {
		return Assignment{}, fmt.Errorf("invalid assignment %q: empty expression", s)
	}
	return a, nil
}

func validateName(name string) error {
	if !hclsyntax.ValidIdentifier(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}
	return nil
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.SheetPaths) == 0 && len(cfg.Assignments) == 0 && len(cfg.Removals) == 0 && cfg.HealthcheckPort == 0 {
		return nil, errors.New("nothing to do: give at least one sheet path, assignment, removal or an HTTP port")
	}

	for _, a := range cfg.Assignments {
		if err := validateName(a.Name); err != nil {
			return nil, err
		}
	}
	for _, name := range cfg.Removals {
		if err := validateName(name); err != nil {
			return nil, err
		}
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/formulamap/internal/app"
)

var defaultEnv = app.Env{LogLevel: "info", LogFormat: "text"}

func TestParse_FullCommandLine(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{
		"-sheet", "a.hcl",
		"-s", "dir",
		"-set", "A=1",
		"-set", "B = A * 2",
		"-unset", "C",
		"-http-port", "9100",
		"-log-level", "DEBUG",
		"-log-format", "json",
		"more.toml",
	}, out, defaultEnv)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, &app.Config{
		SheetPaths:      []string{"a.hcl", "dir", "more.toml"},
		Assignments:     []app.Assignment{{Name: "A", Expression: "1"}, {Name: "B", Expression: "A * 2"}},
		Removals:        []string{"C"},
		HealthcheckPort: 9100,
		LogFormat:       "json",
		LogLevel:        "debug",
	}, cfg)
	assert.Empty(t, out.String())
}

func TestParse_EnvironmentDefaults(t *testing.T) {
	env := app.Env{LogLevel: "warn", LogFormat: "json", HTTPPort: 8081}

	cfg, _, err := Parse([]string{"sheet.hcl"}, &bytes.Buffer{}, env)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 8081, cfg.HealthcheckPort)

	cfg, _, err = Parse([]string{"-log-level", "error", "-http-port", "0", "sheet.hcl"}, &bytes.Buffer{}, env)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 0, cfg.HealthcheckPort)
}

func TestParse_UsageWhenNothingToDo(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out, defaultEnv)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{"-h"}, out, defaultEnv)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "-set")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined: -nope"},
		{name: "bad assignment", args: []string{"-set", "A"}, wantErr: "want NAME=EXPR"},
		{name: "bad removal", args: []string{"-unset", "1x"}, wantErr: "invalid variable name"},
		{name: "bad log format", args: []string{"-log-format", "xml", "s.hcl"}, wantErr: "invalid log format"},
		{name: "bad log level", args: []string{"-log-level", "loud", "s.hcl"}, wantErr: "invalid log level"},
		{name: "bad port", args: []string{"-http-port", "-1"}, wantErr: "invalid HTTP port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{}, defaultEnv)
			require.False(t, shouldExit)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Error(), tc.wantErr)
		})
	}
}

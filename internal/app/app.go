package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/formulamap/internal/expr"
	"github.com/vk/formulamap/internal/formula"
	"github.com/vk/formulamap/internal/metrics"
	"github.com/vk/formulamap/internal/sheet"
)

// Loader reads variable definitions from sheet paths.
type Loader interface {
	Load(ctx context.Context, paths ...string) ([]sheet.Definition, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   Loader
	registry *prometheus.Registry
	formulas *formula.Map
}

// NewApp is the constructor for the main application. The report is written
// to outW and logs to logW. Each App has its own logger, metrics registry and
// formula map.
func NewApp(outW, logW io.Writer, cfg *Config, loader Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(reg)

	formulas := formula.New(expr.NewHCL(),
		formula.WithLogger(logger),
		formula.WithObserver(collector),
	)
	logger.Debug("Formula map created.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
		formulas: formulas,
	}
}

// Formulas returns the application's formula map. This is primarily for testing.
func (a *App) Formulas() *formula.Map {
	return a.formulas
}

package app

import (
	"context"
	"fmt"
	"net"

	"github.com/vk/formulamap/internal/ctxlog"
)

// Run executes the main application logic: apply sheets, assignments and
// removals, print the report and, when an HTTP port is configured, serve
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if len(a.config.SheetPaths) > 0 {
		defs, err := a.loader.Load(ctx, a.config.SheetPaths...)
		if err != nil {
			return fmt.Errorf("failed to load sheets: %w", err)
		}
		for _, def := range defs {
			a.logger.Debug("Applying definition.", "name", def.Name, "source", def.Source)
			a.formulas.Put(def.Name, def.Expression)
		}
		a.logger.Info("Sheets applied.", "definitions", len(defs))
	}

	for _, as := range a.config.Assignments {
		a.formulas.Put(as.Name, as.Expression)
	}
	for _, name := range a.config.Removals {
		a.formulas.Remove(name)
	}

	if err := writeReport(a.outW, a.formulas.Snapshot()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if a.config.HealthcheckPort > 0 {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.HealthcheckPort))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", a.config.HealthcheckPort, err)
		}
		if err := a.serve(ctx, ln); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

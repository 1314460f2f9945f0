package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/formulamap/internal/app"
	"github.com/vk/formulamap/internal/cli"
	"github.com/vk/formulamap/internal/sheet"
)

// main is the entrypoint for the formulamap application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	env, err := app.LoadEnv()
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}

	appConfig, shouldExit, err := cli.Parse(args, outW, env)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	formulamapApp := app.NewApp(outW, errW, appConfig, sheet.NewLoader())
	return formulamapApp.Run(ctx)
}

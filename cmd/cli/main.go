package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vk/scenegridgo/internal/app"
	"github.com/vk/scenegridgo/internal/cli"
	"github.com/vk/scenegridgo/internal/config"
	"github.com/vk/scenegridgo/internal/hcl"
	"github.com/vk/scenegridgo/internal/toml"
)

// main is the entrypoint for the scenegrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	sceneApp, err := newApp(outW, appConfig)
	if err != nil {
		return err
	}
	return sceneApp.Run(ctx)
}

// newApp builds the application, returning the panics app.NewApp raises on
// critical config errors as errors.
func newApp(outW io.Writer, appConfig *app.Config) (sceneApp *app.App, err error) {
	defer func() {
		if r := recover(); r != nil {
			sceneApp = nil
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	loader := config.ByExtension{
		".hcl":  hcl.NewLoader(),
		".toml": toml.NewLoader(),
	}
	return app.NewApp(outW, appConfig, loader), nil
}

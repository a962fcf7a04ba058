package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-fps/inference"
	_ "github.com/nvr-ai/go-fps/inference/engines/gorgonia"
	_ "github.com/nvr-ai/go-fps/inference/engines/onnxruntime"
	_ "github.com/nvr-ai/go-fps/inference/engines/tensorflowlite"
	"github.com/nvr-ai/go-fps/inference/providers"
	"github.com/nvr-ai/go-fps/logging"
)

var (
	logLevel        string
	ortLib          string
	profileInterval time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure model inference FPS across back-ends",
	Long: `benchmark runs an image model over a list of images and reports the
average frames per second of the inference call alone. Image decoding and
tensor layout conversion are excluded from the timing.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(fmt.Sprintf("benchmark %s (commit: %s, built: %s)\n", version, commit, date))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, quiet)")
	rootCmd.PersistentFlags().StringVar(&ortLib, "ort-lib", "",
		fmt.Sprintf("path to the ONNX Runtime shared library (default $%s or the platform path)", providers.LibraryPathEnv))
	rootCmd.PersistentFlags().DurationVar(&profileInterval, "profile-interval", 0,
		"log runtime statistics at this interval while benchmarking (0 disables)")
}

func newLogger() logging.Logger {
	return logging.NewWriterConsole(logging.ParseLevel(logLevel), os.Stderr)
}

// newEngine fills in the --ort-lib flag for scenarios that do not name a
// library of their own.
func newEngine(backend inference.Backend, opts inference.Options) (inference.Engine, error) {
	if opts.LibraryPath == "" {
		opts.LibraryPath = ortLib
	}
	return inference.NewEngine(backend, opts)
}

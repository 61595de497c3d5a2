package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/config"
	"github.com/JonMunkholm/insightboard/internal/core"
	"github.com/JonMunkholm/insightboard/internal/logging"
)

// cliSession is the single session the CLI loads files into.
const cliSession = "cli"

// app holds state shared by the subcommands.
type app struct {
	envFile string
	verbose bool
	cfg     *config.Config
	svc     *core.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "insight",
		Short:         "Inspect, chart, analyze and export CSV files",
		Long:          "insight runs the same ingest pipeline as the web dashboard on a local CSV file (optionally .gz, .bz2, .xz or .zst compressed).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env", "", "load settings from this .env file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log pipeline details to stderr")

	root.AddCommand(
		newInspectCmd(a),
		newChartCmd(a),
		newAnalyzeCmd(a),
		newExportCmd(a),
		newTemplatesCmd(),
	)
	return root
}

func (a *app) init() error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	logging.SetupWriter(os.Stderr, level, "text")

	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.svc = core.NewService(core.Options{
		MaxFileSize:         cfg.Upload.MaxFileSize,
		Timeout:             cfg.Upload.Timeout,
		ShortHeaderFallback: cfg.Upload.ShortHeaderFallback,
		Chart:               chart.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
	})
	return nil
}

// load ingests path into the CLI session.
func (a *app) load(ctx context.Context, path string) (*core.IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	res, err := a.svc.Ingest(ctx, cliSession, filepath.Base(path), f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w\n%s", err, core.FormatUserError(err))
	}

	slog.Debug("loaded file", "path", path, "rows", res.Rows, "skipped_lines", len(res.Skipped))
	return res, nil
}

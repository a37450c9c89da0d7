// Package main provides the rdftab binary: it converts delimited text and
// spreadsheet files into RDF named graphs, keeps the resulting runs in a
// run store, and serves or watches for new input.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-tabular/config"
	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/engine"
	"github.com/geoknoesis/rdf-tabular/runstore"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "rdftab"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert tabular files into RDF named graphs",
		Long: `rdftab turns CSV, TSV and spreadsheet files into RDF datasets.

Each conversion is a run: every row becomes a subject, every column a
predicate, and all quads land in one named graph per file. Runs are kept
in the configured run store and can be listed, rendered and deleted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(convertCmd(g))
	cmd.AddCommand(runsCmd(g))
	cmd.AddCommand(serveCmd(g))
	cmd.AddCommand(watchCmd(g))
	cmd.AddCommand(initConfigCmd(g))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func initConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the default user config if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(newLogger(g.logLevel, cmd.ErrOrStderr())).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	defaults dataset.FileOptions
	logger   *slog.Logger
	store    runstore.Store
	engine   *engine.Engine
	registry *prometheus.Registry
}

func setup(ctx context.Context, cmd *cobra.Command, g *globalFlags) (*app, error) {
	logger := newLogger(g.logLevel, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).LoadWithFile(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	ecfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := runstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := engine.New(ecfg, store, nil,
		engine.WithLogger(logger),
		engine.WithMetrics(engine.NewMetrics(registry)),
	)
	logger.Debug("rdftab ready", "version", Version, "store", cfg.Store.Driver)

	return &app{
		cfg:      cfg,
		defaults: ecfg.Defaults,
		logger:   logger,
		store:    store,
		engine:   e,
		registry: registry,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close run store", "error", err)
	}
}

// logResult reports a finished run the same way for every subcommand.
func logResult(logger *slog.Logger, filename string, res *engine.Result, err error) {
	if res == nil {
		logger.Error("Conversion failed", "filename", filename, "code", engine.Code(err), "error", err)
		return
	}
	attrs := []any{
		"filename", filename,
		"graph", res.Run.GraphIRI,
		"rows", res.Stats.Rows,
		"quads", res.Stats.Quads,
		"skipped", res.Stats.Skipped,
		"degraded", res.Stats.Degraded,
		"replaced", res.Replaced,
	}
	if err != nil {
		logger.Error("Run stored without outputs", append(attrs, "codecCode", engine.CodecCode(err), "error", err)...)
		return
	}
	logger.Info("Converted", attrs...)
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/geoknoesis/rdf-tabular/engine"
	"github.com/geoknoesis/rdf-tabular/watch"
)

type watchFlags struct {
	dir      string
	patterns []string
	debounce time.Duration
	existing bool
	serve    bool
}

func watchCmd(g *globalFlags) *cobra.Command {
	f := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert files as they appear or change in a directory",
		Long: `Watch converts every matching file once it has stopped changing for the
debounce period. Runs are queued and executed one at a time.

With --serve the HTTP API runs in the same process, which is the only way to
reach runs kept by the memory store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			wcfg := f.config(a.cfg.Watch.Dir, a.cfg.Watch.Patterns, a.cfg.Watch.Debounce)
			w, err := watch.New(wcfg, a.logger)
			if err != nil {
				return err
			}
			defer w.Stop()

			q := engine.NewQueue(a.engine, 0)
			q.OnResult = func(job engine.Job, res *engine.Result, err error) {
				logResult(a.logger, job.Filename, res, err)
			}

			grp, gctx := errgroup.WithContext(ctx)
			grp.Go(func() error { return q.Start(gctx) })

			if f.existing {
				paths, err := w.Existing()
				if err != nil {
					return err
				}
				for _, rel := range paths {
					job := engine.FileJob(filepath.Join(wcfg.Dir, filepath.FromSlash(rel)), nil)
					if err := q.Submit(gctx, job); err != nil {
						return fmt.Errorf("queue %s: %w", rel, err)
					}
				}
				a.logger.Info("Queued existing files", "count", len(paths))
			}

			if err := w.Start(gctx); err != nil {
				return err
			}
			grp.Go(func() error { return watch.Pump(gctx, w.Events(), q, nil) })

			if f.serve {
				grp.Go(func() error { return serveHTTP(gctx, a, a.cfg.Server.Listen) })
			}

			err = grp.Wait()
			if n := w.DroppedEvents(); n > 0 {
				a.logger.Warn("Watch events were dropped", "count", n)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.dir, "dir", "", "Directory to watch (overrides watch.dir)")
	flags.StringArrayVar(&f.patterns, "pattern", nil, "Doublestar pattern relative to the directory (repeatable, overrides watch.patterns)")
	flags.DurationVar(&f.debounce, "debounce", 0, "Quiet period before a changed file is converted (overrides watch.debounce)")
	flags.BoolVar(&f.existing, "existing", false, "Convert matching files already present at startup")
	flags.BoolVar(&f.serve, "serve", false, "Also serve the HTTP API")

	return cmd
}

// config applies the flags on top of the configured watch settings.
func (f *watchFlags) config(dir string, patterns []string, debounce time.Duration) watch.Config {
	cfg := watch.Config{Dir: dir, Patterns: patterns, Debounce: debounce}
	if f.dir != "" {
		cfg.Dir = f.dir
	}
	if len(f.patterns) > 0 {
		cfg.Patterns = f.patterns
	}
	if f.debounce > 0 {
		cfg.Debounce = f.debounce
	}
	return cfg
}

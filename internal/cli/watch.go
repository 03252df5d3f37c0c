package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/triplecheck/internal/logging"
	"github.com/ppiankov/triplecheck/internal/metrics"
	"github.com/ppiankov/triplecheck/internal/productions"
	"github.com/ppiankov/triplecheck/internal/report"
	"github.com/ppiankov/triplecheck/internal/watch"
	"github.com/ppiankov/triplecheck/internal/worker"
)

var (
	watchDebounce    time.Duration
	watchMetricsAddr string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate triple files as they change",
	Long: `Watch validates the productions directory once, then revalidates each
triple file whenever its content changes. New verse directories are picked
up automatically.

With metrics.enabled or --metrics-addr, Prometheus metrics are served on
/metrics for the lifetime of the watch.

Example:
  triplecheck watch
  triplecheck watch --metrics-addr :9464`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a change is validated")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.NewRecorder()
	v, err := buildValidator(ctx, cfg, log, rec)
	if err != nil {
		return err
	}

	addr := watchMetricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		srv := serveMetrics(addr, rec, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	layout := productions.NewLayout(cfg.Productions.Dir)
	pattern := cfg.Productions.Pattern
	w, err := watch.New(layout.Dir, watch.Config{
		Debounce:    watchDebounce,
		ExcludeDirs: []string{filepath.Base(cfg.Cache.Dir)},
		Filter:      func(path string) bool { return layout.Match(pattern, path) },
	}, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	console := report.NewConsole(out, report.Options{ShowWarnings: cfg.Output.ShowWarnings})

	paths, err := discover(cfg)
	if err != nil {
		return err
	}
	started := time.Now()
	results := worker.NewBatchProcessor(v, cfg.Concurrency.Workers).ProcessPaths(ctx, paths)
	console.Batch(report.New(cfg.Schema.Path, v.Table().Fingerprint(), started, results))
	for _, p := range paths {
		if err := w.Seed(p); err != nil {
			log.Debugw("cannot seed document hash", logging.FieldDocument, p, logging.FieldError, err)
		}
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	pterm.Fprintln(out, pterm.Gray("\nWatching "+layout.Dir+" for changes (Ctrl+C to stop)"))

	for ev := range w.Events() {
		if ev.Op == watch.OpDelete {
			log.Infow("document removed", logging.FieldDocument, ev.Path)
			continue
		}
		dr := v.ValidateFile(ctx, ev.Path)
		console.Line(dr)
		log.Debugw("document revalidated",
			logging.FieldDocument, ev.Path,
			logging.FieldValid, dr.Result.Valid,
			logging.FieldCached, dr.Cached,
			logging.FieldDurationMS, dr.Duration.Milliseconds())
	}

	if dropped := w.Dropped(); dropped > 0 {
		log.Warnw("change events were dropped", logging.FieldCount, dropped)
	}
	return nil
}

func serveMetrics(addr string, rec *metrics.Recorder, log *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infow("serving metrics", logging.FieldAddress, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", logging.FieldAddress, addr, logging.FieldError, err)
		}
	}()
	return srv
}

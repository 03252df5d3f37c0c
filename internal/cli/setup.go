package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/triplecheck/internal/cache"
	"github.com/ppiankov/triplecheck/internal/heuristics"
	"github.com/ppiankov/triplecheck/internal/logging"
	"github.com/ppiankov/triplecheck/internal/metrics"
	"github.com/ppiankov/triplecheck/internal/model"
	"github.com/ppiankov/triplecheck/internal/productions"
	"github.com/ppiankov/triplecheck/internal/report"
	"github.com/ppiankov/triplecheck/internal/schema"
	"github.com/ppiankov/triplecheck/internal/validate"
)

// memoryTTL bounds how long a result stays in process memory; the disk
// layer keeps it for the configured TTL
const memoryTTL = 10 * time.Minute

func fetcherConfig(cfg *model.Config) schema.FetcherConfig {
	fc := schema.DefaultFetcherConfig()
	if cfg.HTTP.Timeout > 0 {
		fc.Timeout = cfg.HTTP.Timeout
	}
	if cfg.HTTP.UserAgent != "" {
		fc.UserAgent = cfg.HTTP.UserAgent
	}
	if cfg.HTTP.MaxBodyBytes > 0 {
		fc.MaxBytes = cfg.HTTP.MaxBodyBytes
	}
	fc.HTTPProxy = cfg.HTTP.HTTPProxy
	fc.HTTPSProxy = cfg.HTTP.HTTPSProxy
	fc.NoProxy = cfg.HTTP.NoProxy
	return fc
}

func loadSchema(ctx context.Context, cfg *model.Config, log *zap.SugaredLogger) (*schema.ConstraintTable, error) {
	table, err := schema.LoadSource(ctx, cfg.Schema.Path, schema.NewFetcher(fetcherConfig(cfg)))
	if err != nil {
		return nil, err
	}
	log.Debugw("schema loaded",
		logging.FieldSchema, cfg.Schema.Path,
		"relations", len(table.Relations()),
		"classes", len(table.Classes()))
	return table, nil
}

// buildValidator loads the schema and wires the validator with the cache
// and metrics recorder the config asks for. rec may be nil.
func buildValidator(ctx context.Context, cfg *model.Config, log *zap.SugaredLogger, rec *metrics.Recorder) (*validate.Validator, error) {
	table, err := loadSchema(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []validate.Option{
		validate.WithLogger(log),
		validate.WithWorkers(cfg.Concurrency.Workers),
	}
	if cfg.Cache.Enabled {
		layered := cache.NewLayeredCache(memoryTTL, cfg.Cache.Dir, cfg.Cache.TTL)
		opts = append(opts, validate.WithCache(cache.NewResultCache(layered, cfg.Cache.TTL)))
	}
	if rec != nil {
		opts = append(opts, validate.WithMetrics(rec))
	}

	engine := heuristics.NewEngine(cfg.Vocabulary)
	return validate.NewValidator(table, engine, opts...), nil
}

// discover lists the triple documents of the productions tree
func discover(cfg *model.Config) ([]string, error) {
	paths, err := productions.NewLayout(cfg.Productions.Dir).Discover(cfg.Productions.Pattern)
	if err != nil {
		return nil, errors.WithHint(err, "set productions.dir or pass --productions-dir")
	}
	return paths, nil
}

// openOutput returns stdout or the named file
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, errors.Wrap(err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create output file")
	}
	return f, f.Close, nil
}

// emit renders the report and converts invalid results into ErrInvalid
func emit(stdout io.Writer, cfg *model.Config, outPath string, r model.BatchReport) error {
	w, closeFn, err := openOutput(stdout, outPath)
	if err != nil {
		return err
	}

	opts := report.Options{ShowWarnings: cfg.Output.ShowWarnings}
	if len(r.Results) == 1 && cfg.Output.Format == report.FormatConsole {
		report.NewConsole(w, opts).Document(r.Results[0])
	} else if err := report.Render(w, cfg.Output.Format, r, opts); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return errors.Wrap(err, "close output file")
	}

	if !r.Summary.AllValid() {
		return ErrInvalid
	}
	return nil
}

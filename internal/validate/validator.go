// Package validate runs the syntax, constraint and heuristic passes over
// fact graph documents.
package validate

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/triplecheck/internal/cache"
	"github.com/ppiankov/triplecheck/internal/check"
	"github.com/ppiankov/triplecheck/internal/heuristics"
	"github.com/ppiankov/triplecheck/internal/logging"
	"github.com/ppiankov/triplecheck/internal/metrics"
	"github.com/ppiankov/triplecheck/internal/model"
	"github.com/ppiankov/triplecheck/internal/rdf"
	"github.com/ppiankov/triplecheck/internal/schema"
	"github.com/ppiankov/triplecheck/internal/worker"
)

const (
	msgTableNotLoaded = "Constraint table not loaded"
	defaultWorkers    = 8
)

// Validator validates documents against a shared constraint table. The
// table and engine are read-only after construction, so one Validator may
// serve concurrent calls.
type Validator struct {
	table   *schema.ConstraintTable
	engine  *heuristics.Engine
	cache   *cache.ResultCache
	metrics *metrics.Recorder
	log     *zap.SugaredLogger
	workers int
}

// Option configures a Validator
type Option func(*Validator)

// WithCache enables result caching
func WithCache(c *cache.ResultCache) Option {
	return func(v *Validator) { v.cache = c }
}

// WithMetrics records outcomes on r
func WithMetrics(r *metrics.Recorder) Option {
	return func(v *Validator) { v.metrics = r }
}

// WithLogger sets the logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(v *Validator) { v.log = logging.OrNop(l) }
}

// WithWorkers sets the concurrency used by ValidateMany
func WithWorkers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// NewValidator creates a validator. A nil engine runs the heuristics with the
// default vocabulary. A nil table is accepted and makes every document fail.
func NewValidator(table *schema.ConstraintTable, engine *heuristics.Engine, opts ...Option) *Validator {
	if engine == nil {
		engine = heuristics.NewEngine(model.VocabularyConfig{})
	}
	v := &Validator{
		table:   table,
		engine:  engine,
		log:     logging.Nop(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateOne parses doc and runs the constraint and heuristic passes
func (v *Validator) ValidateOne(doc Document) model.Result {
	res, _ := v.validate(doc)
	return res
}

func (v *Validator) validate(doc Document) (model.Result, bool) {
	start := time.Now()
	if doc.Format == "" {
		doc.Format = rdf.FormatTurtle
	}

	var key string
	if v.cache != nil && v.table != nil {
		key = cache.ResultKey(v.table.Fingerprint(), v.engine.Fingerprint(), string(doc.Format), doc.Base, doc.Content)
		if res, ok := v.cache.Get(key); ok {
			v.log.Debugw("cache hit", logging.FieldDocument, doc.ID)
			v.record(res, nil, true, 0)
			return res, true
		}
	}

	res, constraintErrs := v.run(doc)
	elapsed := time.Since(start)

	if key != "" {
		if err := v.cache.Put(key, res); err != nil {
			v.log.Warnw("cache write failed", logging.FieldDocument, doc.ID, logging.FieldError, err)
		}
	}

	v.log.Debugw("document validated",
		logging.FieldDocument, doc.ID,
		logging.FieldValid, res.Valid,
		logging.FieldErrors, len(res.Errors),
		logging.FieldWarnings, len(res.Warnings),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	v.record(res, constraintErrs, false, elapsed)
	return res, false
}

func (v *Validator) run(doc Document) (model.Result, []check.ConstraintError) {
	g, err := rdf.Parse(doc.Content, doc.Format, doc.Base)
	if err != nil {
		return model.Failed(fmt.Sprintf("Syntax error: %v", err)), nil
	}
	if v.table == nil {
		return model.Failed(msgTableNotLoaded), nil
	}

	constraintErrs := check.Check(g, v.table)
	errs := make([]string, len(constraintErrs))
	for i, e := range constraintErrs {
		errs[i] = e.Error()
	}

	warnings := heuristics.Messages(v.engine.Run(g))
	return model.NewResult(errs, warnings), constraintErrs
}

func (v *Validator) record(res model.Result, constraintErrs []check.ConstraintError, cached bool, d time.Duration) {
	if v.metrics == nil {
		return
	}
	v.metrics.RecordDocument(res.Valid, cached, d)
	if cached {
		return
	}
	var domain, rng int
	for _, e := range constraintErrs {
		if e.Kind == check.KindDomain {
			domain++
		} else {
			rng++
		}
	}
	v.metrics.RecordErrors(string(check.KindDomain), domain)
	v.metrics.RecordErrors(string(check.KindRange), rng)
	v.metrics.RecordErrors("document", len(res.Errors)-domain-rng)
	v.metrics.RecordWarnings(len(res.Warnings))
}

// ValidateFile reads and validates the document at path. A missing file
// yields an invalid result rather than an error.
func (v *Validator) ValidateFile(ctx context.Context, path string) model.DocumentResult {
	start := time.Now()
	out := model.DocumentResult{Document: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			out.Result = model.Failed(fmt.Sprintf("File not found: %s", path))
		} else {
			out.Result = model.Failed(fmt.Sprintf("Read error: %v", err))
		}
		v.log.Warnw("cannot read document", logging.FieldDocument, path, logging.FieldError, err)
		v.record(out.Result, nil, false, time.Since(start))
		out.Duration = time.Since(start)
		return out
	}

	out.Result, out.Cached = v.validate(Document{
		ID:      path,
		Content: data,
		Format:  rdf.FormatFromPath(path),
		Base:    fileBase(path),
	})
	out.Duration = time.Since(start)
	return out
}

// documentJob validates one document on the pool
type documentJob struct {
	v   *Validator
	doc Document
}

type documentResult struct {
	id  string
	res model.Result
}

func (r *documentResult) GetError() error {
	return nil
}

func (j *documentJob) Execute(ctx context.Context) worker.Result {
	return &documentResult{id: j.doc.ID, res: j.v.ValidateOne(j.doc)}
}

// ValidateMany validates docs concurrently, keyed by document ID. Only the
// first document with a given ID is validated; later ones are logged and
// skipped. Cancelling ctx stops scheduling; documents not yet started are
// absent from the map.
func (v *Validator) ValidateMany(ctx context.Context, docs []Document) map[string]model.Result {
	out := make(map[string]model.Result, len(docs))
	if len(docs) == 0 {
		return out
	}

	unique := make([]Document, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if seen[doc.ID] {
			v.log.Warnw("duplicate document ID, skipping", logging.FieldDocument, doc.ID)
			continue
		}
		seen[doc.ID] = true
		unique = append(unique, doc)
	}

	workers := v.workers
	if workers > len(unique) {
		workers = len(unique)
	}

	pool := worker.NewPool(ctx, workers)
	pool.Start()

	submitted := 0
	for _, doc := range unique {
		if !pool.Submit(&documentJob{v: v, doc: doc}) {
			v.log.Debugw("scheduling stopped", logging.FieldDocument, doc.ID)
			break
		}
		submitted++
	}

	var results []worker.Result
	if submitted == len(unique) {
		results = pool.Wait()
	} else {
		results = pool.Shutdown()
	}

	for _, r := range results {
		dr := r.(*documentResult)
		out[dr.id] = dr.res
	}
	return out
}

// Table returns the constraint table in use
func (v *Validator) Table() *schema.ConstraintTable {
	return v.table
}

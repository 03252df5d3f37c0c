// Package pipeline turns verse-range texts into fact graphs with an LLM and
// optionally validates what it wrote.
package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/triplecheck/internal/llm"
	"github.com/ppiankov/triplecheck/internal/logging"
	"github.com/ppiankov/triplecheck/internal/model"
	"github.com/ppiankov/triplecheck/internal/productions"
	"github.com/ppiankov/triplecheck/internal/validate"
	"github.com/ppiankov/triplecheck/internal/worker"
)

// ErrEmptyResponse is returned when the model produced no triples
var ErrEmptyResponse = errors.New("empty response from model")

// Config controls a generation run
type Config struct {
	Model        string
	Temperature  float32
	MaxTokens    int
	SkipExisting bool
	Workers      int
	// RatePerMinute bounds requests per model; zero disables limiting
	RatePerMinute int
}

// ConfigFromModel converts the application config
func ConfigFromModel(cfg model.LLMConfig, workers int) Config {
	return Config{
		Model:         cfg.Model,
		Temperature:   cfg.Temperature,
		MaxTokens:     cfg.MaxTokens,
		SkipExisting:  cfg.SkipExisting,
		Workers:       workers,
		RatePerMinute: cfg.RatePerMinute,
	}
}

// Outcome is the result of processing one verse range
type Outcome struct {
	Range      productions.VerseRange
	Path       string
	Skipped    bool
	TokensUsed int
	Duration   time.Duration
	// Validation is set when the generator validates its output
	Validation *model.Result
	Err        error
}

// GetError implements worker.Result
func (o *Outcome) GetError() error {
	return o.Err
}

// Summary counts outcomes of a run
type Summary struct {
	Generated int
	Skipped   int
	Failed    int
	Invalid   int
	Tokens    int
}

// Summarize counts outcomes
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Skipped:
			s.Skipped++
		default:
			s.Generated++
			if o.Validation != nil && !o.Validation.Valid {
				s.Invalid++
			}
		}
		s.Tokens += o.TokensUsed
	}
	return s
}

// Generator produces triples for verse ranges
type Generator struct {
	provider  llm.Provider
	layout    *productions.Layout
	template  string
	cfg       Config
	limiter   *worker.Limiter
	validator *validate.Validator
	log       *zap.SugaredLogger
}

// Option configures a Generator
type Option func(*Generator)

// WithValidator validates every written file
func WithValidator(v *validate.Validator) Option {
	return func(g *Generator) { g.validator = v }
}

// WithLogger sets the logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Generator) { g.log = logging.OrNop(l) }
}

// NewGenerator creates a generator. The template must contain
// llm.PassagePlaceholder.
func NewGenerator(provider llm.Provider, layout *productions.Layout, template string, cfg Config, opts ...Option) (*Generator, error) {
	if provider == nil {
		return nil, errors.WithHint(errors.New("no LLM provider configured"), "set llm.provider in the config file")
	}
	if !strings.Contains(template, llm.PassagePlaceholder) {
		return nil, errors.Newf("prompt template has no %s placeholder", llm.PassagePlaceholder)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	g := &Generator{
		provider: provider,
		layout:   layout,
		template: template,
		cfg:      cfg,
		limiter:  worker.PerMinute(cfg.RatePerMinute),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// LoadTemplate reads a prompt template file
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.WithHint(errors.Wrapf(err, "prompt template"), "set llm.prompt_template or pass --prompt")
		}
		return "", errors.Wrap(err, "prompt template")
	}
	return string(data), nil
}

// GenerateRange processes a single verse range. Failures are reported in
// the outcome rather than returned.
func (g *Generator) GenerateRange(ctx context.Context, r productions.VerseRange) Outcome {
	start := time.Now()
	out := Outcome{Range: r, Path: g.layout.TriplesPath(r)}
	log := g.log.With(logging.FieldRange, r.Name)

	if g.cfg.SkipExisting {
		if _, err := os.Stat(out.Path); err == nil {
			log.Infow("skipping, output exists", logging.FieldPath, out.Path)
			out.Skipped = true
			return out
		}
	}

	greek, english, err := g.layout.ReadTexts(r)
	if err != nil {
		out.Err = err
		log.Errorw("cannot read verse texts", logging.FieldError, err)
		return out
	}

	modelName := g.cfg.Model
	if err := g.limiter.Wait(ctx, modelName); err != nil {
		out.Err = errors.Wrap(err, "rate limit")
		return out
	}

	log.Infow("generating", logging.FieldModel, modelName)
	resp, err := g.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:      llm.BuildPrompt(g.template, greek, english),
		Model:       modelName,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		out.Err = err
		log.Errorw("generation failed", logging.FieldError, err)
		return out
	}
	out.TokensUsed = resp.TokensUsed

	triples := llm.ExtractTriples(resp.Text)
	if triples == "" {
		out.Err = ErrEmptyResponse
		log.Errorw("generation failed", logging.FieldError, out.Err)
		return out
	}

	if _, err := g.layout.WriteTriples(r, triples+"\n"); err != nil {
		out.Err = err
		log.Errorw("cannot save triples", logging.FieldError, err)
		return out
	}

	if g.validator != nil {
		res := g.validator.ValidateFile(ctx, out.Path).Result
		out.Validation = &res
		if !res.Valid {
			log.Warnw("generated triples are invalid", logging.FieldErrors, len(res.Errors))
		}
	}

	out.Duration = time.Since(start)
	log.Infow("saved triples",
		logging.FieldPath, out.Path,
		"tokens", out.TokensUsed,
		logging.FieldDurationMS, out.Duration.Milliseconds())
	return out
}

type rangeJob struct {
	g     *Generator
	index int
	r     productions.VerseRange
}

type rangeResult struct {
	index int
	out   Outcome
}

func (r *rangeResult) GetError() error {
	return r.out.Err
}

func (j *rangeJob) Execute(ctx context.Context) worker.Result {
	return &rangeResult{index: j.index, out: j.g.GenerateRange(ctx, j.r)}
}

// GenerateAll processes ranges on a worker pool and returns the outcomes in
// input order. Ranges not started before ctx is cancelled are omitted.
func (g *Generator) GenerateAll(ctx context.Context, ranges []productions.VerseRange) []Outcome {
	if len(ranges) == 0 {
		return nil
	}

	pool := worker.NewPool(ctx, g.cfg.Workers)
	pool.Start()
	submitted := 0
	for i, r := range ranges {
		if !pool.Submit(&rangeJob{g: g, index: i, r: r}) {
			g.log.Warnw("generation interrupted",
				logging.FieldRange, r.Name,
				logging.FieldCount, len(ranges)-i)
			break
		}
		submitted++
	}

	var results []worker.Result
	if submitted == len(ranges) {
		results = pool.Wait()
	} else {
		results = pool.Shutdown()
	}
	if errs := pool.Errors(); len(errs) > 0 {
		g.log.Warnw("some verse ranges failed",
			logging.FieldCount, len(errs),
			logging.FieldError, errs[0])
	}

	slots := make([]*Outcome, len(ranges))
	for _, res := range results {
		rr := res.(*rangeResult)
		o := rr.out
		slots[rr.index] = &o
	}

	out := make([]Outcome, 0, len(ranges))
	for _, o := range slots {
		if o != nil {
			out = append(out, *o)
		}
	}
	return out
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/triplecheck/internal/llm"
	"github.com/ppiankov/triplecheck/internal/logging"
	"github.com/ppiankov/triplecheck/internal/pipeline"
	"github.com/ppiankov/triplecheck/internal/productions"
)

var (
	genModel       string
	genTemperature float32
	genMaxTokens   int
	genOverwrite   bool
	genNoValidate  bool
	genPrompt      string
	genRate        int
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [ranges...]",
	Short: "Generate triples for verse ranges with an LLM",
	Long: `Generate sends the Ancient Greek text and English translation of each verse
range to the configured model, extracts the Turtle block from the reply and
writes it to the range directory. Written files are validated unless
--no-validate is given.

Ranges are named by directory (verse_773_to_805) or by span (773-805).
Without arguments every range of the productions directory is processed.
Ranges that already have a triples file are skipped unless --overwrite.

Example:
  triplecheck generate
  triplecheck generate 773-805 verse_806_to_838 --model gpt-5.2
  triplecheck generate --overwrite --rate 10`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	f := generateCmd.Flags()
	f.StringVar(&genModel, "model", "", "model name (overrides llm.model)")
	f.Float32Var(&genTemperature, "temperature", 0, "sampling temperature (overrides llm.temperature)")
	f.IntVar(&genMaxTokens, "max-tokens", 0, "completion token limit (overrides llm.max_tokens)")
	f.BoolVar(&genOverwrite, "overwrite", false, "regenerate ranges that already have triples")
	f.BoolVar(&genNoValidate, "no-validate", false, "do not validate generated files")
	f.StringVar(&genPrompt, "prompt", "", "prompt template file (overrides llm.prompt_template)")
	f.IntVar(&genRate, "rate", -1, "requests per minute, 0 for unlimited (overrides llm.rate_per_minute)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.LLM.Model = genModel
	}
	if flags.Changed("temperature") {
		cfg.LLM.Temperature = genTemperature
	}
	if flags.Changed("max-tokens") {
		cfg.LLM.MaxTokens = genMaxTokens
	}
	if flags.Changed("prompt") {
		cfg.LLM.PromptTemplate = genPrompt
	}
	if genRate >= 0 {
		cfg.LLM.RatePerMinute = genRate
	}
	if genOverwrite {
		cfg.LLM.SkipExisting = false
	}
	if genNoValidate {
		cfg.LLM.Validate = false
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	layout := productions.NewLayout(cfg.Productions.Dir)
	all, err := layout.Ranges()
	if err != nil {
		return errors.WithHint(err, "set productions.dir or pass --productions-dir")
	}
	ranges, err := selectRanges(all, args)
	if err != nil {
		return err
	}
	if len(ranges) == 0 {
		pterm.Fprintln(cmd.OutOrStdout(), "No verse ranges found.")
		return nil
	}

	template, err := pipeline.LoadTemplate(cfg.LLM.PromptTemplate)
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(log)}
	if cfg.LLM.Validate {
		v, err := buildValidator(ctx, cfg, log, nil)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithValidator(v))
	}

	gen, err := pipeline.NewGenerator(provider, layout, template,
		pipeline.ConfigFromModel(cfg.LLM, cfg.Concurrency.Workers), opts...)
	if err != nil {
		return err
	}

	log.Infow("starting generation", logging.FieldCount, len(ranges), logging.FieldModel, cfg.LLM.Model)
	outcomes := gen.GenerateAll(ctx, ranges)
	printOutcomes(cmd, outcomes)

	s := pipeline.Summarize(outcomes)
	if s.Failed > 0 {
		return errors.Newf("%d of %d verse range(s) failed", s.Failed, len(ranges))
	}
	if s.Invalid > 0 {
		return ErrInvalid
	}
	return nil
}

// selectRanges picks the requested ranges by directory name or span.
// No selectors means all ranges.
func selectRanges(all []productions.VerseRange, selectors []string) ([]productions.VerseRange, error) {
	if len(selectors) == 0 {
		return all, nil
	}
	var out []productions.VerseRange
	seen := make(map[string]bool)
	for _, sel := range selectors {
		found := false
		for _, r := range all {
			if r.Name == sel || r.String() == sel {
				found = true
				if !seen[r.Name] {
					seen[r.Name] = true
					out = append(out, r)
				}
				break
			}
		}
		if !found {
			return nil, errors.WithHint(
				errors.Wrapf(productions.ErrInvalidRange, "no verse range %q", sel),
				"use a directory name like verse_1_to_99 or a span like 1-99")
		}
	}
	return out, nil
}

func printOutcomes(cmd *cobra.Command, outcomes []pipeline.Outcome) {
	out := cmd.OutOrStdout()
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			pterm.Fprintln(out, fmt.Sprintf("%s %s: %v", pterm.Red("[FAIL]"), o.Range.Name, o.Err))
		case o.Skipped:
			pterm.Fprintln(out, fmt.Sprintf("%s %s: output exists", pterm.Gray("[SKIP]"), o.Range.Name))
		case o.Validation != nil && !o.Validation.Valid:
			pterm.Fprintln(out, fmt.Sprintf("%s %s: saved, %d constraint violation(s)", pterm.Yellow("[WARN]"), o.Range.Name, len(o.Validation.Errors)))
		default:
			pterm.Fprintln(out, fmt.Sprintf("%s %s: saved to %s", pterm.Green("[OK]"), o.Range.Name, o.Path))
		}
	}

	s := pipeline.Summarize(outcomes)
	pterm.Fprintln(out, fmt.Sprintf("\nGenerated: %d  Skipped: %d  Failed: %d  Invalid: %d  Tokens: %d",
		s.Generated, s.Skipped, s.Failed, s.Invalid, s.Tokens))
}

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/triplecheck/internal/logging"
	"github.com/ppiankov/triplecheck/internal/report"
	"github.com/ppiankov/triplecheck/internal/worker"
)

var validateOutput string

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate triple files against the ontology",
	Long: `Validate parses each triple file, checks every statement against the
ontology's domain and range constraints and runs the semantic heuristics.

Without arguments, every document of the productions directory matching
productions.pattern is validated.

Exit status is 1 when any document is invalid.

Example:
  triplecheck validate
  triplecheck validate "[PRODUCTIONS]/verse_1_to_99/triples_1_to_99.ttl"
  triplecheck validate --format json -o report.json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "write the report to a file instead of stdout")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths := args
	if len(paths) == 0 {
		if paths, err = discover(cfg); err != nil {
			return err
		}
		log.Debugw("discovered documents", logging.FieldPath, cfg.Productions.Dir, logging.FieldCount, len(paths))
	}

	v, err := buildValidator(ctx, cfg, log, nil)
	if err != nil {
		return err
	}

	started := time.Now()
	results := worker.NewBatchProcessor(v, cfg.Concurrency.Workers).ProcessPaths(ctx, paths)
	r := report.New(cfg.Schema.Path, v.Table().Fingerprint(), started, results)

	log.Debugw("validation finished",
		logging.FieldRunID, r.RunID,
		logging.FieldCount, r.Summary.Documents,
		logging.FieldErrors, r.Summary.Errors,
		logging.FieldWarnings, r.Summary.Warnings,
		logging.FieldDurationMS, r.Duration.Milliseconds())

	return emit(cmd.OutOrStdout(), cfg, validateOutput, r)
}

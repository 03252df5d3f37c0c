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

var (
	batchOutput  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Validate the triple files listed in a file",
	Long: `Batch reads document paths from a list file (one per line, '#' comments
and blank lines ignored, duplicates dropped) and validates them in parallel.
Relative paths are resolved against the list file's directory.

Example:
  triplecheck batch documents.txt
  triplecheck batch documents.txt --workers 16 --format markdown -o report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write the report to a file instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
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
	ctx, cancel := context.WithTimeout(parent, batchTimeout)
	defer cancel()

	v, err := buildValidator(ctx, cfg, log, nil)
	if err != nil {
		return err
	}

	started := time.Now()
	results, err := worker.NewBatchProcessor(v, cfg.Concurrency.Workers).ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}
	r := report.New(cfg.Schema.Path, v.Table().Fingerprint(), started, results)

	if ctx.Err() != nil {
		log.Warnw("batch stopped before all documents were validated",
			logging.FieldRunID, r.RunID,
			logging.FieldCount, len(results),
			logging.FieldError, ctx.Err())
	}

	return emit(cmd.OutOrStdout(), cfg, batchOutput, r)
}

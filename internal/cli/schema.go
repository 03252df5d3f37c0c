package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/triplecheck/internal/rdf"
	"github.com/ppiankov/triplecheck/internal/schema"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the constraint table extracted from the ontology",
	Long: `Schema loads the ontology (file or URL) and prints every object relation
with its declared domain and range. Unions are shown as "A | B".`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
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
	table, err := loadSchema(ctx, cfg, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	data := pterm.TableData{{"Relation", "Domain", "Range"}}
	for _, rel := range table.Relations() {
		data = append(data, []string{
			rdf.LocalName(rel),
			describeTargets(table.DomainTargets(rel.Value)),
			describeTargets(table.RangeTargets(rel.Value)),
		})
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}

	pterm.Fprintln(out, "Schema:      "+cfg.Schema.Path)
	pterm.Fprintln(out, "Fingerprint: "+table.Fingerprint())
	pterm.Fprintln(out, "Relations:   "+strconv.Itoa(len(table.Relations())))
	pterm.Fprintln(out, "Classes:     "+strconv.Itoa(len(table.Classes())))
	pterm.Fprintln(out)
	pterm.Fprintln(out, strings.TrimRight(rendered, "\n"))
	return nil
}

func describeTargets(targets []schema.Target) string {
	if len(targets) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		names := make([]string, 0, len(t.Classes()))
		for _, c := range t.Classes() {
			names = append(names, rdf.LocalName(c))
		}
		if t.IsUnion() {
			parts = append(parts, "("+strings.Join(names, " | ")+")")
		} else {
			parts = append(parts, strings.Join(names, ""))
		}
	}
	return strings.Join(parts, ", ")
}

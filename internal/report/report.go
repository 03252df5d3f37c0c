// Package report renders validation results as JSON, Markdown or console
// output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/ppiankov/triplecheck/internal/model"
)

// Output formats
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is returned for unsupported output formats
var ErrUnknownFormat = errors.New("unknown output format")

// New assembles a batch report with a fresh run ID
func New(schemaSource, schemaSHA string, started time.Time, results []model.DocumentResult) model.BatchReport {
	return model.BatchReport{
		RunID:     uuid.NewString(),
		Schema:    schemaSource,
		SchemaSHA: schemaSHA,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Results:   results,
		Summary:   model.Summarize(results),
	}
}

// Options tune rendering
type Options struct {
	ShowWarnings bool
}

// Render writes r in the given format
func Render(w io.Writer, format string, r model.BatchReport, opts Options) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatMarkdown, "md":
		return WriteMarkdown(w, r, opts)
	case FormatConsole, "":
		NewConsole(w, opts).Batch(r)
		return nil
	default:
		return errors.WithHint(errors.Wrapf(ErrUnknownFormat, "%q", format), "use console, json or markdown")
	}
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, r model.BatchReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encode report")
	}
	return nil
}

// WriteMarkdown writes a Markdown summary followed by per-document details
func WriteMarkdown(w io.Writer, r model.BatchReport, opts Options) error {
	var b strings.Builder

	b.WriteString("# Triple Validation Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Schema: `%s`\n", r.Schema)
	if r.SchemaSHA != "" {
		fmt.Fprintf(&b, "- Schema SHA-256: `%s`\n", shortSHA(r.SchemaSHA))
	}
	fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n\n", r.Duration.Round(time.Millisecond))

	s := r.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Documents | Valid | Invalid | Errors | Warnings |\n")
	b.WriteString("|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n", s.Documents, s.Valid, s.Invalid, s.Errors, s.Warnings)

	b.WriteString("## Documents\n\n")
	for _, d := range r.Results {
		status := "VALID"
		if !d.Result.Valid {
			status = "INVALID"
		}
		fmt.Fprintf(&b, "### %s: %s\n\n", filepath.Base(d.Document), status)
		if d.Document != filepath.Base(d.Document) {
			fmt.Fprintf(&b, "`%s`\n\n", d.Document)
		}
		for _, e := range d.Result.Errors {
			fmt.Fprintf(&b, "- **ERROR**: %s\n", escapeMarkdown(e))
		}
		if opts.ShowWarnings {
			for _, warn := range d.Result.Warnings {
				fmt.Fprintf(&b, "- WARNING: %s\n", escapeMarkdown(warn))
			}
		}
		if len(d.Result.Errors) > 0 || (opts.ShowWarnings && len(d.Result.Warnings) > 0) {
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ppiankov/triplecheck/internal/model"
)

const rule = "======================================================================"

// Console prints results the way a terminal user reads them
type Console struct {
	w    io.Writer
	opts Options
}

// NewConsole creates a console renderer; a nil writer means stdout
func NewConsole(w io.Writer, opts Options) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w, opts: opts}
}

func (c *Console) println(a ...interface{}) {
	pterm.Fprintln(c.w, a...)
}

func (c *Console) printf(format string, a ...interface{}) {
	pterm.Fprint(c.w, fmt.Sprintf(format, a...))
}

// Document prints the detailed view of a single document
func (c *Console) Document(d model.DocumentResult) {
	res := d.Result
	c.printf("\nValidating: %s\n", d.Document)
	c.println(rule)

	if res.Valid {
		if len(res.Warnings) > 0 {
			c.println(pterm.Green("[OK] VALID - No constraint violations"))
			c.printWarnings(res.Warnings, "  ")
		} else {
			c.println(pterm.Green("[OK] VALID - No errors or warnings found"))
		}
		return
	}

	c.println(pterm.Red("[ERROR] INVALID - Constraint violations found:"))
	for _, e := range res.Errors {
		c.printf("  ERROR: %s\n", e)
	}
	if len(res.Warnings) > 0 {
		c.printWarnings(res.Warnings, "  ")
	}
}

func (c *Console) printWarnings(warnings []string, indent string) {
	c.println("\nSemantic warnings:")
	for _, w := range warnings {
		c.printf("%s%s %s\n", indent, pterm.Yellow("WARNING:"), w)
	}
}

// Line prints the one-line status of a document, with its errors and,
// if enabled, its warnings
func (c *Console) Line(d model.DocumentResult) {
	name := filepath.Base(d.Document)
	res := d.Result

	switch {
	case !res.Valid:
		c.printf("%s %s: INVALID\n", pterm.Red("[ERROR]"), name)
		for _, e := range res.Errors {
			c.printf("    ERROR: %s\n", e)
		}
	case len(res.Warnings) > 0:
		c.printf("%s %s: VALID (but has %d warning(s))\n", pterm.Green("[OK]"), name, len(res.Warnings))
	default:
		c.printf("%s %s: VALID\n", pterm.Green("[OK]"), name)
	}

	if c.opts.ShowWarnings {
		for _, w := range res.Warnings {
			c.printf("    %s %s\n", pterm.Yellow("WARNING:"), w)
		}
	}
}

// Batch prints every document followed by an overall verdict
func (c *Console) Batch(r model.BatchReport) {
	if len(r.Results) == 0 {
		c.println("No triple files found to validate.")
		return
	}

	c.printf("\nValidating %d triple file(s)...\n", len(r.Results))
	c.println(rule)
	for _, d := range r.Results {
		c.Line(d)
	}

	c.println("\n" + rule)
	s := r.Summary
	if s.AllValid() {
		if s.Warnings > 0 {
			c.println(pterm.Green(fmt.Sprintf("[OK] All files are syntactically valid, but %d semantic warning(s) found.", s.Warnings)))
		} else {
			c.println(pterm.Green("[OK] All files are valid!"))
		}
	} else {
		c.println(pterm.Red("[ERROR] Some files have constraint violations. Please fix them."))
		if s.Warnings > 0 {
			c.printf("Also found %d semantic warning(s).\n", s.Warnings)
		}
	}
	c.Table(s)
}

// Table prints the summary counts as a table
func (c *Console) Table(s model.Summary) {
	data := pterm.TableData{
		{"Documents", "Valid", "Invalid", "Errors", "Warnings"},
		{itoa(s.Documents), itoa(s.Valid), itoa(s.Invalid), itoa(s.Errors), itoa(s.Warnings)},
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return
	}
	c.println()
	c.println(strings.TrimRight(out, "\n"))
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

package model

import "time"

// Result is the outcome of validating one fact graph document
type Result struct {
	Valid    bool     `json:"valid"`    // True iff Errors is empty
	Errors   []string `json:"errors"`   // Syntax and constraint violations
	Warnings []string `json:"warnings"` // Heuristic findings, never affect Valid
}

// NewResult builds a result whose validity follows from its errors.
// Nil slices are normalized so JSON output always carries arrays.
func NewResult(errs, warnings []string) Result {
	if errs == nil {
		errs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// Failed builds an invalid result carrying a single error
func Failed(msg string) Result {
	return NewResult([]string{msg}, nil)
}

// DocumentResult pairs a result with the document it belongs to
type DocumentResult struct {
	Document string        `json:"document"`
	Result   Result        `json:"result"`
	Cached   bool          `json:"cached,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
}

// BatchReport is the aggregated output of a validation run
type BatchReport struct {
	RunID     string           `json:"run_id"`
	Schema    string           `json:"schema"`     // Ontology source
	SchemaSHA string           `json:"schema_sha"` // Ontology content fingerprint
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration_ns"`
	Results   []DocumentResult `json:"results"`
	Summary   Summary          `json:"summary"`
}

// Summary counts outcomes across a batch
type Summary struct {
	Documents int `json:"documents"`
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
}

// AllValid reports whether every document in the batch passed
func (s Summary) AllValid() bool {
	return s.Invalid == 0
}

// Summarize computes the summary for a set of document results
func Summarize(results []DocumentResult) Summary {
	s := Summary{Documents: len(results)}
	for _, r := range results {
		if r.Result.Valid {
			s.Valid++
		} else {
			s.Invalid++
		}
		s.Errors += len(r.Result.Errors)
		s.Warnings += len(r.Result.Warnings)
	}
	return s
}

// Package check evaluates fact graph statements against schema domain and
// range constraints.
package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/triplecheck/internal/rdf"
	"github.com/ppiankov/triplecheck/internal/schema"
)

// Kind distinguishes the two constraint sides
type Kind string

const (
	KindDomain Kind = "domain"
	KindRange  Kind = "range"
)

// ConstraintError is a single domain or range violation
type ConstraintError struct {
	Kind      Kind
	Predicate rdf.Term
	// Focus is the subject for domain violations and the object for range violations
	Focus    rdf.Term
	Required []rdf.Term
	Actual   []rdf.Term
	message  string
}

func (e ConstraintError) Error() string {
	return e.message
}

// Check returns the violations in g, in statement order with the domain
// violation of a statement before its range violation.
func Check(g *rdf.Graph, table *schema.ConstraintTable) []ConstraintError {
	var errs []ConstraintError
	for _, st := range g.Statements() {
		if st.Predicate == rdf.RDFType || !st.Object.IsIRI() {
			continue
		}
		if allowed, ok := table.Domain(st.Predicate.Value); ok {
			if e, bad := checkSide(g, KindDomain, st.Predicate, st.Subject, allowed); bad {
				errs = append(errs, e)
			}
		}
		if allowed, ok := table.Range(st.Predicate.Value); ok {
			if e, bad := checkSide(g, KindRange, st.Predicate, st.Object, allowed); bad {
				errs = append(errs, e)
			}
		}
	}
	return errs
}

func checkSide(g *rdf.Graph, kind Kind, pred, focus rdf.Term, allowed []rdf.Term) (ConstraintError, bool) {
	types := g.Types(focus)
	// untyped individuals are reported by the heuristics, not here
	if len(types) == 0 || satisfies(types, allowed) {
		return ConstraintError{}, false
	}

	actual := make([]rdf.Term, len(types))
	copy(actual, types)
	sort.Slice(actual, func(i, j int) bool { return actual[i].Value < actual[j].Value })

	role := "subject"
	if kind == KindRange {
		role = "object"
	}
	title := strings.ToUpper(string(kind[:1])) + string(kind[1:])
	msg := fmt.Sprintf("%s violation: %s requires %s %s, but %s %s has types %s",
		title, g.N3(pred), kind, rdf.QuoteList(values(allowed)), role, g.N3(focus), rdf.QuoteList(values(actual)))

	return ConstraintError{
		Kind:      kind,
		Predicate: pred,
		Focus:     focus,
		Required:  allowed,
		Actual:    actual,
		message:   msg,
	}, true
}

// satisfies applies the owl:Thing wildcard in both directions
func satisfies(types, allowed []rdf.Term) bool {
	for _, t := range types {
		if t == rdf.OWLThing {
			return true
		}
	}
	for _, a := range allowed {
		if a == rdf.OWLThing {
			return true
		}
		for _, t := range types {
			if t == a {
				return true
			}
		}
	}
	return false
}

func values(terms []rdf.Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Value
	}
	return out
}

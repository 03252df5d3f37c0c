// Package schema extracts domain and range constraints from an OWL ontology.
package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/triplecheck/internal/rdf"
)

var (
	// ErrSchemaNotFound is returned when the ontology source does not exist
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrSchemaParse is returned when the ontology document is malformed
	ErrSchemaParse = errors.New("schema parse error")
)

// Target is either a single class or a union of classes
type Target struct {
	class   rdf.Term
	members []rdf.Term
	union   bool
}

// Single returns a target naming one class
func Single(class rdf.Term) Target {
	return Target{class: class}
}

// Union returns a target naming any of the member classes
func Union(members []rdf.Term) Target {
	return Target{members: members, union: true}
}

// IsUnion reports whether the target is an owl:unionOf expression
func (t Target) IsUnion() bool {
	return t.union
}

// Classes flattens the target into its allowed classes
func (t Target) Classes() []rdf.Term {
	if t.union {
		return t.members
	}
	return []rdf.Term{t.class}
}

// ConstraintTable maps object relations to their allowed domain and range
// classes. It is immutable once built and safe for concurrent readers.
type ConstraintTable struct {
	domains     map[string][]rdf.Term
	ranges      map[string][]rdf.Term
	domainDecl  map[string][]Target
	rangeDecl   map[string][]Target
	relations   []rdf.Term
	classes     []rdf.Term
	fingerprint string
}

// Domain returns the allowed subject classes for a relation; ok is false
// when the relation declares no domain.
func (t *ConstraintTable) Domain(relation string) ([]rdf.Term, bool) {
	classes, ok := t.domains[relation]
	return classes, ok
}

// Range returns the allowed object classes for a relation
func (t *ConstraintTable) Range(relation string) ([]rdf.Term, bool) {
	classes, ok := t.ranges[relation]
	return classes, ok
}

// DomainTargets returns the declared domain expressions before flattening
func (t *ConstraintTable) DomainTargets(relation string) []Target {
	return t.domainDecl[relation]
}

// RangeTargets returns the declared range expressions before flattening
func (t *ConstraintTable) RangeTargets(relation string) []Target {
	return t.rangeDecl[relation]
}

// Relations returns the declared object relations in document order
func (t *ConstraintTable) Relations() []rdf.Term {
	return t.relations
}

// Classes returns the declared named classes in document order
func (t *ConstraintTable) Classes() []rdf.Term {
	return t.classes
}

// Fingerprint is a content hash of the ontology the table was built from
func (t *ConstraintTable) Fingerprint() string {
	return t.fingerprint
}

// Load builds a constraint table from a serialized ontology
func Load(data []byte, format rdf.Format) (*ConstraintTable, error) {
	g, err := rdf.Parse(data, format, "")
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse ontology"), ErrSchemaParse)
	}

	sum := sha256.Sum256(data)
	table := build(g)
	table.fingerprint = hex.EncodeToString(sum[:])
	return table, nil
}

// LoadFile reads and loads an ontology file
func LoadFile(path string) (*ConstraintTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Mark(errors.Newf("ontology file not found: %s", path), ErrSchemaNotFound),
				"set schema.path in the config file or pass --schema",
			)
		}
		return nil, errors.Wrapf(err, "read ontology %s", path)
	}

	table, err := Load(data, rdf.FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return table, nil
}

// LoadSource loads an ontology from a file path or an http(s) URL
func LoadSource(ctx context.Context, source string, fetcher *Fetcher) (*ConstraintTable, error) {
	if !isURL(source) {
		return LoadFile(source)
	}
	if fetcher == nil {
		fetcher = NewFetcher(DefaultFetcherConfig())
	}

	data, err := fetcher.FetchWithRetry(ctx, source)
	if err != nil {
		return nil, err
	}
	table, err := Load(data, rdf.FormatFromPath(source))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", source)
	}
	return table, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func build(g *rdf.Graph) *ConstraintTable {
	table := &ConstraintTable{
		domains:    make(map[string][]rdf.Term),
		ranges:     make(map[string][]rdf.Term),
		domainDecl: make(map[string][]Target),
		rangeDecl:  make(map[string][]Target),
	}

	for _, prop := range g.SubjectsOf(rdf.RDFType, rdf.OWLObjectProperty) {
		table.relations = append(table.relations, prop)
		key := prop.Value

		if decl := g.Objects(prop, rdf.RDFSDomain); len(decl) > 0 {
			targets := resolveTargets(g, decl)
			table.domainDecl[key] = targets
			table.domains[key] = flatten(targets)
		}
		if decl := g.Objects(prop, rdf.RDFSRange); len(decl) > 0 {
			targets := resolveTargets(g, decl)
			table.rangeDecl[key] = targets
			table.ranges[key] = flatten(targets)
		}
	}

	for _, class := range g.SubjectsOf(rdf.RDFType, rdf.OWLClass) {
		if class.IsIRI() {
			table.classes = append(table.classes, class)
		}
	}
	return table
}

// resolveTargets expands owl:unionOf one level. Only the first union list
// of a class expression is used.
func resolveTargets(g *rdf.Graph, decl []rdf.Term) []Target {
	targets := make([]Target, 0, len(decl))
	for _, d := range decl {
		if unions := g.Objects(d, rdf.OWLUnionOf); len(unions) > 0 {
			targets = append(targets, Union(g.List(unions[0])))
			continue
		}
		targets = append(targets, Single(d))
	}
	return targets
}

func flatten(targets []Target) []rdf.Term {
	classes := make([]rdf.Term, 0, len(targets))
	for _, t := range targets {
		classes = append(classes, t.Classes()...)
	}
	return classes
}

// Package heuristics flags suspicious patterns in fact graphs that the
// ontology cannot express: naming drift, isolated characters and
// under-specified conflicts. Findings are always warnings.
package heuristics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ppiankov/triplecheck/internal/model"
	"github.com/ppiankov/triplecheck/internal/rdf"
)

// Check names, in run order
const (
	CheckUntyped       = "untyped-individual"
	CheckNaming        = "naming-consistency"
	CheckCapitalize    = "capitalization-consistency"
	CheckConflict      = "conflict-participants"
	CheckCompleteness  = "character-completeness"
	CheckDuplicateRole = "duplicate-role"
)

// Warning is a single heuristic finding
type Warning struct {
	Check   string
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Check is an independent pass over an immutable graph
type Check struct {
	Name string
	Run  func(g *rdf.Graph) []Warning
}

// Engine runs the heuristic checks in a fixed order
type Engine struct {
	checks      []Check
	fingerprint string
}

// NewEngine builds an engine for the given vocabulary. Empty fields fall
// back to model.DefaultVocabulary.
func NewEngine(cfg model.VocabularyConfig) *Engine {
	cfg = withDefaults(cfg)
	v := newVocabulary(cfg)

	raw, _ := json.Marshal(cfg)
	sum := sha256.Sum256(raw)

	return &Engine{
		checks: []Check{
			{Name: CheckUntyped, Run: v.untypedIndividuals},
			{Name: CheckNaming, Run: v.namingConsistency},
			{Name: CheckCapitalize, Run: v.capitalizationConsistency},
			{Name: CheckConflict, Run: v.conflictParticipants},
			{Name: CheckCompleteness, Run: v.characterCompleteness},
			{Name: CheckDuplicateRole, Run: v.duplicateRoles},
		},
		fingerprint: hex.EncodeToString(sum[:]),
	}
}

// Checks returns the registered checks in run order
func (e *Engine) Checks() []Check {
	return e.checks
}

// Run applies every check to g and concatenates their findings
func (e *Engine) Run(g *rdf.Graph) []Warning {
	var out []Warning
	for _, c := range e.checks {
		out = append(out, c.Run(g)...)
	}
	return out
}

// Fingerprint identifies the vocabulary; results computed with a different
// vocabulary are not interchangeable.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

// Messages flattens warnings to their text
func Messages(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Message
	}
	return out
}

func withDefaults(cfg model.VocabularyConfig) model.VocabularyConfig {
	def := model.DefaultVocabulary()
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if cfg.CharacterClass == "" {
		cfg.CharacterClass = def.CharacterClass
	}
	if cfg.ConflictPredicate == "" {
		cfg.ConflictPredicate = def.ConflictPredicate
	}
	if cfg.DescriptionProperty == "" {
		cfg.DescriptionProperty = def.DescriptionProperty
	}
	if cfg.RoleProperty == "" {
		cfg.RoleProperty = def.RoleProperty
	}
	if cfg.RelationalPredicates == nil {
		cfg.RelationalPredicates = def.RelationalPredicates
	}
	if cfg.ExpectedClasses == nil {
		cfg.ExpectedClasses = def.ExpectedClasses
	}
	if cfg.KnownCharacters == nil {
		cfg.KnownCharacters = def.KnownCharacters
	}
	if cfg.KnownEntities == nil {
		cfg.KnownEntities = def.KnownEntities
	}
	return cfg
}

// vocabulary is the resolved form of model.VocabularyConfig
type vocabulary struct {
	characterToken string
	character      rdf.Term
	conflict       rdf.Term
	description    rdf.Term
	role           rdf.Term
	relational     map[rdf.Term]bool
	expected       map[rdf.Term]bool
	knownChars     map[string]bool
	knownEntities  []string
}

func newVocabulary(cfg model.VocabularyConfig) *vocabulary {
	term := func(local string) rdf.Term { return rdf.IRI(cfg.Namespace + local) }

	v := &vocabulary{
		characterToken: cfg.CharacterClass,
		character:      term(cfg.CharacterClass),
		conflict:       term(cfg.ConflictPredicate),
		description:    term(cfg.DescriptionProperty),
		role:           term(cfg.RoleProperty),
		relational:     make(map[rdf.Term]bool),
		expected:       make(map[rdf.Term]bool),
		knownChars:     make(map[string]bool),
	}
	for _, p := range cfg.RelationalPredicates {
		v.relational[term(p)] = true
	}
	for _, c := range cfg.ExpectedClasses {
		v.expected[term(c)] = true
	}
	for _, n := range cfg.KnownCharacters {
		v.knownChars[strings.ToLower(n)] = true
	}
	for _, e := range cfg.KnownEntities {
		v.knownEntities = append(v.knownEntities, strings.ToLower(e))
	}
	return v
}

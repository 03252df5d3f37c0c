package heuristics

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/triplecheck/internal/rdf"
)

func warn(check, format string, args ...interface{}) Warning {
	return Warning{Check: check, Message: fmt.Sprintf(format, args...)}
}

// characters returns the typed individuals that are instances of the
// character class, in first-seen order
func (v *vocabulary) characters(g *rdf.Graph) []rdf.Term {
	var out []rdf.Term
	for _, s := range g.TypedSubjects() {
		if g.HasType(s, v.character) {
			out = append(out, s)
		}
	}
	return out
}

func (v *vocabulary) untypedIndividuals(g *rdf.Graph) []Warning {
	var out []Warning
	for _, s := range g.TypedSubjects() {
		types := g.Types(s)
		if len(types) == 0 {
			out = append(out, warn(CheckUntyped, "Individual %s has no explicit type", g.N3(s)))
			continue
		}
		if v.hasExpectedType(types) {
			continue
		}
		out = append(out, warn(CheckUntyped, "Individual %s may need explicit ontology type", g.N3(s)))
	}
	return out
}

func (v *vocabulary) hasExpectedType(types []rdf.Term) bool {
	for _, t := range types {
		if v.expected[t] || t == rdf.OWLNamedIndividual || t == rdf.OWLThing {
			return true
		}
	}
	return false
}

// namingConsistency catches identifiers like Antigone_Character_Chorus whose
// suffix names a different known character than the prefix.
func (v *vocabulary) namingConsistency(g *rdf.Graph) []Warning {
	var out []Warning
	for _, s := range v.characters(g) {
		parts := rdf.Segments(s)
		if len(parts) < 3 || parts[1] != v.characterToken {
			continue
		}
		first, last := parts[0], parts[len(parts)-1]
		if first == last || !v.knownChars[strings.ToLower(last)] || strings.EqualFold(first, last) {
			continue
		}
		out = append(out, warn(CheckNaming,
			"Potential naming inconsistency: %s has character name '%s' but identifier suggests '%s'",
			g.N3(s), first, last))
	}
	return out
}

func (v *vocabulary) capitalizationConsistency(g *rdf.Graph) []Warning {
	var keys []string
	groups := make(map[string][]string)
	for _, s := range g.TypedSubjects() {
		parts := rdf.Segments(s)
		if len(parts) < 2 {
			continue
		}
		key := strings.Join(parts[:len(parts)-1], "_")
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], parts[len(parts)-1])
	}

	var out []Warning
	for _, key := range keys {
		names := groups[key]
		if len(names) < 2 {
			continue
		}
		capitalized := 0
		for _, name := range names {
			if r, _ := utf8.DecodeRuneInString(name); name != "" && unicode.IsUpper(r) {
				capitalized++
			}
		}
		if capitalized > 0 && capitalized < len(names) {
			out = append(out, warn(CheckCapitalize,
				"Inconsistent capitalization in naming pattern '%s': some entities use capitalized names, others don't", key))
		}
	}
	return out
}

func (v *vocabulary) conflictParticipants(g *rdf.Graph) []Warning {
	var conflicts []rdf.Term
	participants := make(map[rdf.Term][]rdf.Term)
	for _, st := range g.Statements() {
		if st.Predicate != v.conflict {
			continue
		}
		if _, ok := participants[st.Subject]; !ok {
			conflicts = append(conflicts, st.Subject)
		}
		participants[st.Subject] = append(participants[st.Subject], st.Object)
	}

	var out []Warning
	for _, c := range conflicts {
		parts := participants[c]
		if len(parts) < 2 {
			out = append(out, warn(CheckConflict,
				"Conflict %s has only %d participant(s). Conflicts typically involve at least two opposing entities.",
				g.N3(c), len(parts)))
		}

		descriptions := g.Objects(c, v.description)
		if len(descriptions) == 0 {
			continue
		}
		missing := v.missingEntities(descriptions[len(descriptions)-1].Value, parts)
		if len(missing) > 0 && len(parts) < 2 {
			out = append(out, warn(CheckConflict,
				"Conflict %s description mentions '%s' but these entities are not listed as participants. "+
					"Consider adding them if they represent opposing forces.",
				g.N3(c), strings.Join(missing, ", ")))
		}
	}
	return out
}

// missingEntities returns the known entities mentioned in text that overlap
// no participant name in either direction
func (v *vocabulary) missingEntities(text string, participants []rdf.Term) []string {
	lower := strings.ToLower(text)

	var names []string
	for _, p := range participants {
		if parts := rdf.Segments(p); len(parts) >= 2 {
			names = append(names, strings.ToLower(parts[len(parts)-1]))
		}
	}

	var missing []string
	for _, entity := range v.knownEntities {
		if !strings.Contains(lower, entity) {
			continue
		}
		found := false
		for _, name := range names {
			if strings.Contains(name, entity) || strings.Contains(entity, name) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, entity)
		}
	}
	return missing
}

func (v *vocabulary) characterCompleteness(g *rdf.Graph) []Warning {
	var out []Warning
	for _, s := range v.characters(g) {
		if v.isolated(g.Outgoing(s)) {
			out = append(out, warn(CheckCompleteness,
				"Character %s has no motivations, decisions, emotions, or advocacy relationships. "+
					"Consider adding relevant relationships.", g.N3(s)))
		}
	}
	return out
}

func (v *vocabulary) isolated(outgoing []rdf.Statement) bool {
	for _, st := range outgoing {
		if v.relational[st.Predicate] {
			return false
		}
	}
	for _, st := range outgoing {
		if st.Predicate != rdf.RDFType && st.Predicate != v.description {
			return false
		}
	}
	return true
}

func (v *vocabulary) duplicateRoles(g *rdf.Graph) []Warning {
	var roles []string
	byRole := make(map[string][]rdf.Term)
	for _, s := range v.characters(g) {
		values := g.Objects(s, v.role)
		if len(values) == 0 {
			continue
		}
		role := values[0].Value
		if _, ok := byRole[role]; !ok {
			roles = append(roles, role)
		}
		byRole[role] = append(byRole[role], s)
	}

	var out []Warning
	for _, role := range roles {
		chars := byRole[role]
		if len(chars) < 2 || !namesDiffer(chars) {
			continue
		}
		rendered := make([]string, len(chars))
		for i, c := range chars {
			rendered[i] = g.N3(c)
		}
		out = append(out, warn(CheckDuplicateRole,
			"Multiple characters with role '%s' but different names: %s", role, rdf.QuoteList(rendered)))
	}
	return out
}

func namesDiffer(chars []rdf.Term) bool {
	first := rdf.Segments(chars[0])[0]
	for _, c := range chars[1:] {
		if rdf.Segments(c)[0] != first {
			return true
		}
	}
	return false
}

package rdf

import (
	"sort"
	"strings"
	"unicode"
)

// defaultPrefixes are bound for display in every graph
var defaultPrefixes = map[string]string{
	"rdf":  NamespaceRDF,
	"rdfs": NamespaceRDFS,
	"owl":  NamespaceOWL,
	"xsd":  NamespaceXSD,
	"xml":  NamespaceXML,
}

// Graph is a deduplicated statement set with per-subject indices.
// It is built once by the parser and never mutated afterwards.
type Graph struct {
	statements []Statement
	seen       map[Statement]struct{}

	outgoing   map[Term][]int
	types      map[Term][]Term
	typedOrder []Term

	prefixes map[string]string
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		seen:     make(map[Statement]struct{}),
		outgoing: make(map[Term][]int),
		types:    make(map[Term][]Term),
		prefixes: make(map[string]string),
	}
}

// add appends a statement unless it is already present
func (g *Graph) add(st Statement) {
	if _, dup := g.seen[st]; dup {
		return
	}
	g.seen[st] = struct{}{}

	idx := len(g.statements)
	g.statements = append(g.statements, st)
	g.outgoing[st.Subject] = append(g.outgoing[st.Subject], idx)

	if st.Predicate == RDFType {
		if _, typed := g.types[st.Subject]; !typed {
			g.typedOrder = append(g.typedOrder, st.Subject)
		}
		g.types[st.Subject] = append(g.types[st.Subject], st.Object)
	}
}

// bind records a prefix declaration for display purposes
func (g *Graph) bind(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// Len returns the number of distinct statements
func (g *Graph) Len() int {
	return len(g.statements)
}

// Statements returns all statements in first-seen document order
func (g *Graph) Statements() []Statement {
	return g.statements
}

// Outgoing returns the statements whose subject is s, in document order
func (g *Graph) Outgoing(s Term) []Statement {
	idx := g.outgoing[s]
	out := make([]Statement, len(idx))
	for i, n := range idx {
		out[i] = g.statements[n]
	}
	return out
}

// Objects returns the objects of statements (s, p, *) in document order
func (g *Graph) Objects(s, p Term) []Term {
	var out []Term
	for _, n := range g.outgoing[s] {
		if st := g.statements[n]; st.Predicate == p {
			out = append(out, st.Object)
		}
	}
	return out
}

// Types returns the type set of an individual. It is empty for individuals
// without rdf:type statements.
func (g *Graph) Types(t Term) []Term {
	return g.types[t]
}

// HasType reports whether t is asserted to be an instance of class
func (g *Graph) HasType(t, class Term) bool {
	for _, c := range g.types[t] {
		if c == class {
			return true
		}
	}
	return false
}

// TypedSubjects returns every subject of at least one rdf:type statement,
// in order of its first type assertion.
func (g *Graph) TypedSubjects() []Term {
	return g.typedOrder
}

// SubjectsOf returns the subjects of (*, p, o) statements in document order
func (g *Graph) SubjectsOf(p, o Term) []Term {
	var out []Term
	for _, st := range g.statements {
		if st.Predicate == p && st.Object == o {
			out = append(out, st.Subject)
		}
	}
	return out
}

// List walks an RDF collection starting at head and returns its members.
// Walking stops at rdf:nil, at a malformed node or when a cycle is detected.
func (g *Graph) List(head Term) []Term {
	var members []Term
	visited := make(map[Term]bool)
	for node := head; node != RDFNil; {
		if visited[node] {
			break
		}
		visited[node] = true

		first := g.Objects(node, RDFFirst)
		if len(first) == 0 {
			break
		}
		members = append(members, first[0])

		rest := g.Objects(node, RDFRest)
		if len(rest) == 0 {
			break
		}
		node = rest[0]
	}
	return members
}

// N3 renders a term for messages: IRIs as prefix:local when a bound namespace
// matches, otherwise <iri>.
func (g *Graph) N3(t Term) string {
	switch t.Kind {
	case KindIRI:
		if qname, ok := g.qname(t.Value); ok {
			return qname
		}
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		lit := `"` + escapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return lit + "@" + t.Lang
		}
		if t.Datatype != "" {
			if qname, ok := g.qname(t.Datatype); ok {
				return lit + "^^" + qname
			}
			return lit + "^^<" + t.Datatype + ">"
		}
		return lit
	}
}

// qname picks the longest bound namespace that yields a valid local name.
// Document prefixes win over the defaults; ties resolve alphabetically.
func (g *Graph) qname(iri string) (string, bool) {
	type binding struct{ prefix, ns string }
	var candidates []binding
	for p, ns := range defaultPrefixes {
		if _, shadowed := g.prefixes[p]; !shadowed {
			candidates = append(candidates, binding{p, ns})
		}
	}
	for p, ns := range g.prefixes {
		candidates = append(candidates, binding{p, ns})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].ns) != len(candidates[j].ns) {
			return len(candidates[i].ns) > len(candidates[j].ns)
		}
		return candidates[i].prefix < candidates[j].prefix
	})

	for _, c := range candidates {
		if c.ns == "" || !strings.HasPrefix(iri, c.ns) {
			continue
		}
		local := iri[len(c.ns):]
		if validLocalName(local) {
			return c.prefix + ":" + local, true
		}
	}
	return "", false
}

func validLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
		case unicode.IsDigit(r), r == '-':
			if i == 0 && r == '-' {
				return false
			}
		case r == '.':
			if i == 0 || i == len(s)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

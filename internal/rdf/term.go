// Package rdf parses triple documents into an indexed, read-only statement graph.
package rdf

import (
	"strings"
)

// Well-known namespaces.
const (
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceOWL  = "http://www.w3.org/2002/07/owl#"
	NamespaceXSD  = "http://www.w3.org/2001/XMLSchema#"
	NamespaceXML  = "http://www.w3.org/XML/1998/namespace"
)

// Vocabulary terms the validator relies on.
var (
	RDFType  = IRI(NamespaceRDF + "type")
	RDFFirst = IRI(NamespaceRDF + "first")
	RDFRest  = IRI(NamespaceRDF + "rest")
	RDFNil   = IRI(NamespaceRDF + "nil")

	RDFSDomain = IRI(NamespaceRDFS + "domain")
	RDFSRange  = IRI(NamespaceRDFS + "range")

	OWLClass           = IRI(NamespaceOWL + "Class")
	OWLObjectProperty  = IRI(NamespaceOWL + "ObjectProperty")
	OWLUnionOf         = IRI(NamespaceOWL + "unionOf")
	OWLThing           = IRI(NamespaceOWL + "Thing")
	OWLNamedIndividual = IRI(NamespaceOWL + "NamedIndividual")

	XSDString  = IRI(NamespaceXSD + "string")
	XSDBoolean = IRI(NamespaceXSD + "boolean")
	XSDInteger = IRI(NamespaceXSD + "integer")
	XSDDecimal = IRI(NamespaceXSD + "decimal")
	XSDDouble  = IRI(NamespaceXSD + "double")
)

// TermKind distinguishes entity references from literal values
type TermKind int

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a node of a statement. It is comparable and may be used as a map key.
type Term struct {
	Kind     TermKind
	Value    string // IRI, blank node label or literal lexical form
	Datatype string // literals only
	Lang     string // literals only
}

// IRI returns a named entity reference
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank returns a blank node reference
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal returns a plain literal
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// TypedLiteral returns a literal with a datatype IRI
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: strings.ToLower(lang)}
}

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// String returns the plain string form: the IRI, the blank node label or the
// literal's lexical value.
func (t Term) String() string {
	return t.Value
}

// LocalName returns the fragment after the last '#', else after the last '/',
// else the whole string form.
func LocalName(t Term) string {
	s := t.Value
	if i := strings.LastIndex(s, "#"); i >= 0 {
		return s[i+1:]
	}
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Segments splits a term's local name on underscores.
func Segments(t Term) []string {
	return strings.Split(LocalName(t), "_")
}

// Statement is an ordered (subject, predicate, object) triple
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
}

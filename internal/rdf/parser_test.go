package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://example.org/antigone#"

func mustParse(t *testing.T, doc string) *Graph {
	t.Helper()
	g, err := ParseTurtle(doc, "")
	require.NoError(t, err)
	return g
}

func TestParseTurtle_PrefixesAndLists(t *testing.T) {
	g := mustParse(t, `
@prefix : <http://example.org/antigone#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>

# characters
:Antigone_Character_Antigone a :Character, owl:NamedIndividual ;
    :role "Daughter of Oedipus"@en ;
    :advocatesFor :DivineLaw_EthicalPrinciple ;
    .
`)

	subj := IRI(ex + "Antigone_Character_Antigone")
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []Term{IRI(ex + "Character"), OWLNamedIndividual}, g.Types(subj))
	assert.Equal(t, []Term{LangLiteral("Daughter of Oedipus", "en")}, g.Objects(subj, IRI(ex+"role")))
	assert.Equal(t, []Term{subj}, g.TypedSubjects())
}

func TestParseTurtle_Literals(t *testing.T) {
	g := mustParse(t, `
@prefix ex: <http://example.org/antigone#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
ex:s ex:int 42 ;
     ex:neg -7 ;
     ex:dec 3.14 ;
     ex:dbl 1.0e3 ;
     ex:bool true ;
     ex:typed "5"^^xsd:integer ;
     ex:single 'single' ;
     ex:long """line one
line "two" """ ;
     ex:escaped "tab\there é" .
`)

	s := IRI(ex + "s")
	obj := func(p string) Term {
		objs := g.Objects(s, IRI(ex+p))
		require.Len(t, objs, 1, p)
		return objs[0]
	}

	assert.Equal(t, TypedLiteral("42", XSDInteger.Value), obj("int"))
	assert.Equal(t, TypedLiteral("-7", XSDInteger.Value), obj("neg"))
	assert.Equal(t, TypedLiteral("3.14", XSDDecimal.Value), obj("dec"))
	assert.Equal(t, TypedLiteral("1.0e3", XSDDouble.Value), obj("dbl"))
	assert.Equal(t, TypedLiteral("true", XSDBoolean.Value), obj("bool"))
	assert.Equal(t, TypedLiteral("5", XSDInteger.Value), obj("typed"))
	assert.Equal(t, Literal("single"), obj("single"))
	assert.Equal(t, "line one\nline \"two\" ", obj("long").Value)
	assert.Equal(t, "tab\there é", obj("escaped").Value)
}

func TestParseTurtle_ShortStringWithEscapedQuote(t *testing.T) {
	g := mustParse(t, `<http://x/s> <http://x/p> 'it\'s' .`)
	assert.Equal(t, []Term{Literal("it's")}, g.Objects(IRI("http://x/s"), IRI("http://x/p")))
}

func TestParseTurtle_BlankNodesAndCollections(t *testing.T) {
	g := mustParse(t, `
@prefix ex: <http://example.org/antigone#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
ex:conflictBetween rdfs:domain ex:Conflict ;
    rdfs:range [ a owl:Class ; owl:unionOf ( ex:Character ex:Theme ) ] .
_:x ex:p [] .
`)

	ranges := g.Objects(IRI(ex+"conflictBetween"), RDFSRange)
	require.Len(t, ranges, 1)
	assert.True(t, ranges[0].IsBlank())

	unions := g.Objects(ranges[0], OWLUnionOf)
	require.Len(t, unions, 1)
	assert.Equal(t, []Term{IRI(ex + "Character"), IRI(ex + "Theme")}, g.List(unions[0]))

	objs := g.Objects(Blank("x"), IRI(ex+"p"))
	require.Len(t, objs, 1)
	assert.True(t, objs[0].IsBlank())
}

func TestParseTurtle_DocumentLabelsStayApartFromAnonymousNodes(t *testing.T) {
	g := mustParse(t, `
@prefix ex: <http://example.org/antigone#> .
_:genid1 a ex:Emotion .
_:genid2 a ex:Theme .
[] a ex:Character .
[ a ex:Motivation ] ex:p ( ex:a ) .
`)

	assert.Equal(t, []Term{IRI(ex + "Emotion")}, g.Types(Blank("genid1")))
	assert.Equal(t, []Term{IRI(ex + "Theme")}, g.Types(Blank("genid2")))

	var anonymous int
	for _, s := range g.TypedSubjects() {
		if s != Blank("genid1") && s != Blank("genid2") {
			anonymous++
			assert.True(t, s.IsBlank())
			assert.Len(t, g.Types(s), 1)
		}
	}
	assert.Equal(t, 2, anonymous)
}

func TestParseTurtle_BlankLabelStopsAtColon(t *testing.T) {
	_, err := ParseTurtle(`_:a:b <http://x/p> <http://x/o> .`, "")
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParseTurtle_InvalidUTF8(t *testing.T) {
	_, err := ParseTurtle("<http://x/s> <http://x/p> \"bad\xff\" .", "")
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 1, synErr.Line)
	assert.Equal(t, 31, synErr.Column)
	assert.Contains(t, synErr.Msg, "invalid UTF-8")

	_, err = ParseTurtle("<http://x/s> <http://x/p> \"ok\" .\n# caf\xe9\n", "")
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 2, synErr.Line)
}

func TestParseTurtle_ReplacementCharacterIsValid(t *testing.T) {
	g := mustParse(t, "<http://x/s> <http://x/p> \"a\uFFFDb\" .")
	assert.Equal(t, []Term{Literal("a\uFFFDb")}, g.Objects(IRI("http://x/s"), IRI("http://x/p")))
}

func TestParseTurtle_EmptyCollectionIsNil(t *testing.T) {
	g := mustParse(t, `<http://x/s> <http://x/p> () .`)
	assert.Equal(t, []Term{RDFNil}, g.Objects(IRI("http://x/s"), IRI("http://x/p")))
}

func TestParseTurtle_BaseResolution(t *testing.T) {
	g := mustParse(t, `
@base <http://example.org/antigone> .
<#Creon> a <#Character> .
`)
	assert.True(t, g.HasType(IRI(ex+"Creon"), IRI(ex+"Character")))
}

func TestParseTurtle_LocalNameWithDots(t *testing.T) {
	g := mustParse(t, `
@prefix ex: <http://example.org/antigone#> .
ex:v1.2 ex:p ex:o.
`)
	assert.Equal(t, []Term{IRI(ex + "o")}, g.Objects(IRI(ex+"v1.2"), IRI(ex+"p")))
}

func TestParseTurtle_DeduplicatesStatements(t *testing.T) {
	g := mustParse(t, `
<http://x/s> <http://x/p> <http://x/o> .
<http://x/s> <http://x/p> <http://x/o> .
`)
	assert.Equal(t, 1, g.Len())
}

func TestParseTurtle_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"unterminated statement", "@prefix ex: <http://x/> .\nex:a ex:b ex:c", "expected '.' to end statement"},
		{"undefined prefix", "foo:a foo:b foo:c .", `undefined prefix "foo"`},
		{"unterminated string", `<http://x/s> <http://x/p> "open .`, "unterminated string literal"},
		{"unterminated IRI", `<http://x/s <http://x/p> <http://x/o> .`, "invalid character"},
		{"missing object", `<http://x/s> <http://x/p> .`, "expected object"},
		{"unclosed blank node", `<http://x/s> <http://x/p> [ <http://x/q> <http://x/o> .`, "']' to close blank node"},
		{"literal subject", `"s" <http://x/p> <http://x/o> .`, "expected subject"},
		{"bare word", `<http://x/s> <http://x/p> maybe .`, "unexpected bare word"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseTurtle(tt.doc, "")
			require.Error(t, err)
			assert.Nil(t, g)

			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Contains(t, synErr.Msg, tt.msg)
			assert.Greater(t, synErr.Line, 0)
		})
	}
}

func TestParseTurtle_ErrorPosition(t *testing.T) {
	_, err := ParseTurtle("<http://x/s> <http://x/p> <http://x/o> .\n<http://x/s> <http://x/p>", "")
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 2, synErr.Line)
}

func TestParse_NTriples(t *testing.T) {
	doc := `<http://example.org/antigone#Creon> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/antigone#Character> .
<http://example.org/antigone#Creon> <http://example.org/antigone#role> "King of Thebes"@en .
_:b1 <http://example.org/antigone#p> "7"^^<http://www.w3.org/2001/XMLSchema#integer> .
`
	g, err := Parse([]byte(doc), FormatNTriples, "")
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	creon := IRI(ex + "Creon")
	assert.True(t, g.HasType(creon, IRI(ex+"Character")))
	assert.Equal(t, []Term{LangLiteral("King of Thebes", "en")}, g.Objects(creon, IRI(ex+"role")))
}

func TestParse_NTriplesSyntaxError(t *testing.T) {
	_, err := Parse([]byte("<http://x/s> <http://x/p>\n"), FormatNTriples, "")
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParse_NTriplesInvalidUTF8(t *testing.T) {
	_, err := Parse([]byte("<http://x/s> <http://x/p> \"bad\xff\" .\n"), FormatNTriples, "")
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 1, synErr.Line)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatTurtle, FormatFromPath("verse_1_to_99/triples_1_to_99.ttl"))
	assert.Equal(t, FormatNTriples, FormatFromPath("dump.NT"))
	assert.Equal(t, FormatTurtle, FormatFromPath("noext"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("ttl")
	require.NoError(t, err)
	assert.Equal(t, FormatTurtle, f)

	f, err = ParseFormat("nt")
	require.NoError(t, err)
	assert.Equal(t, FormatNTriples, f)

	_, err = ParseFormat("rdfxml")
	assert.Error(t, err)
}

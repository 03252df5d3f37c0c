package rdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// parseNTriples decodes N-Triples/N-Quads documents. Graph labels are ignored.
func parseNTriples(data []byte) (*Graph, error) {
	if err := checkUTF8(string(data)); err != nil {
		return nil, err
	}
	g := NewGraph()
	r := nquads.NewReader(bytes.NewReader(data), true)
	for {
		q, err := r.ReadQuad()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, &SyntaxError{Msg: err.Error()}
		}

		s, err := fromQuadValue(q.Subject)
		if err != nil {
			return nil, err
		}
		p, err := fromQuadValue(q.Predicate)
		if err != nil {
			return nil, err
		}
		o, err := fromQuadValue(q.Object)
		if err != nil {
			return nil, err
		}
		if s.IsLiteral() || !p.IsIRI() {
			return nil, &SyntaxError{Msg: fmt.Sprintf("invalid statement %s", q.String())}
		}
		g.add(Statement{Subject: s, Predicate: p, Object: o})
	}
}

func fromQuadValue(v quad.Value) (Term, error) {
	switch v := v.(type) {
	case quad.IRI:
		return IRI(string(v)), nil
	case quad.BNode:
		return Blank(string(v)), nil
	case quad.String:
		return Literal(string(v)), nil
	case quad.TypedString:
		return TypedLiteral(string(v.Value), string(v.Type)), nil
	case quad.LangString:
		return LangLiteral(string(v.Value), v.Lang), nil
	case nil:
		return Term{}, &SyntaxError{Msg: "missing statement term"}
	default:
		return Literal(fmt.Sprint(v.Native())), nil
	}
}

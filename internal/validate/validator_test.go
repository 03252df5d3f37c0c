package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/triplecheck/internal/cache"
	"github.com/ppiankov/triplecheck/internal/metrics"
	"github.com/ppiankov/triplecheck/internal/rdf"
	"github.com/ppiankov/triplecheck/internal/schema"
)

const ontology = `
@prefix : <http://example.org/antigone#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

:Character a owl:Class .
:EthicalPrinciple a owl:Class .
:Emotion a owl:Class .

:advocatesFor a owl:ObjectProperty ;
    rdfs:domain :Character ;
    rdfs:range :EthicalPrinciple .
`

const validDoc = `
@prefix : <http://example.org/antigone#> .
:Antigone_Character_Antigone a :Character ; :advocatesFor :DivineLaw .
:DivineLaw a :EthicalPrinciple .
`

const invalidDoc = `
@prefix : <http://example.org/antigone#> .
:Grief a :Emotion ; :advocatesFor :DivineLaw .
:DivineLaw a :EthicalPrinciple .
`

func newValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	table, err := schema.Load([]byte(ontology), rdf.FormatTurtle)
	require.NoError(t, err)
	return NewValidator(table, nil, opts...)
}

func doc(id, content string) Document {
	return Document{ID: id, Content: []byte(content), Format: rdf.FormatTurtle}
}

func TestValidateOne_Valid(t *testing.T) {
	res := newValidator(t).ValidateOne(doc("a", validDoc))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Warnings)
}

func TestValidateOne_DomainViolation(t *testing.T) {
	res := newValidator(t).ValidateOne(doc("b", invalidDoc))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Domain violation"), res.Errors[0])
}

func TestValidateOne_SyntaxError(t *testing.T) {
	res := newValidator(t).ValidateOne(doc("bad", `@prefix : <http://example.org/antigone#> .
:X a :Character`))

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Syntax error: "), res.Errors[0])
	assert.Equal(t, []string{}, res.Warnings)
}

func TestValidateOne_NoTable(t *testing.T) {
	res := NewValidator(nil, nil).ValidateOne(doc("a", validDoc))
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Constraint table not loaded"}, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateOne_Idempotent(t *testing.T) {
	v := newValidator(t)
	d := doc("b", invalidDoc)
	first := v.ValidateOne(d)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, v.ValidateOne(d))
	}
}

func TestValidateOne_NTriples(t *testing.T) {
	nt := `<http://example.org/antigone#Grief> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/antigone#Emotion> .
<http://example.org/antigone#Grief> <http://example.org/antigone#advocatesFor> <http://example.org/antigone#DivineLaw> .
`
	res := newValidator(t).ValidateOne(Document{ID: "g.nt", Content: []byte(nt), Format: rdf.FormatNTriples})
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 1)
}

func TestValidateOne_CacheHit(t *testing.T) {
	rc := cache.NewResultCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
	rec := metrics.NewRecorder()
	v := newValidator(t, WithCache(rc), WithMetrics(rec))

	d := doc("b", invalidDoc)
	first, cached := v.validate(d)
	assert.False(t, cached)
	second, cached := v.validate(d)
	assert.True(t, cached)
	assert.Equal(t, first, second)

	n, err := testutil.GatherAndCount(rec.Registry(), "triplecheck_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triples_1_to_99.ttl")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	res := newValidator(t).ValidateFile(context.Background(), path)
	assert.Equal(t, path, res.Document)
	assert.True(t, res.Result.Valid)
}

func TestValidateFile_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.ttl")
	res := newValidator(t).ValidateFile(context.Background(), path)
	assert.False(t, res.Result.Valid)
	assert.Equal(t, []string{"File not found: " + path}, res.Result.Errors)
}

func TestReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triples_1_to_99.nt")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	d, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, path, d.ID)
	assert.Equal(t, rdf.FormatNTriples, d.Format)

	_, err = ReadDocument(path + ".missing")
	assert.Error(t, err)
}

func TestValidateMany(t *testing.T) {
	v := newValidator(t, WithWorkers(3))

	var docs []Document
	for i := 0; i < 20; i++ {
		content := validDoc
		if i%2 == 1 {
			content = invalidDoc
		}
		docs = append(docs, doc(fmt.Sprintf("doc-%d", i), content))
	}

	results := v.ValidateMany(context.Background(), docs)
	require.Len(t, results, len(docs))
	for i, d := range docs {
		assert.Equal(t, i%2 == 0, results[d.ID].Valid, d.ID)
		assert.Equal(t, v.ValidateOne(d), results[d.ID])
	}
}

func TestValidateMany_Empty(t *testing.T) {
	assert.Empty(t, newValidator(t).ValidateMany(context.Background(), nil))
}

func TestValidateMany_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newValidator(t).ValidateMany(ctx, []Document{doc("a", validDoc), doc("b", validDoc)})
	assert.Empty(t, results)
}

func TestValidateFile_CacheKeepsBaseApart(t *testing.T) {
	root := t.TempDir()
	content := []byte("<x> a <Thingy> .\n")
	var paths []string
	for _, dir := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		p := filepath.Join(root, dir, "t.ttl")
		require.NoError(t, os.WriteFile(p, content, 0o644))
		paths = append(paths, p)
	}

	rc := cache.NewResultCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
	v := newValidator(t, WithCache(rc))

	first := v.ValidateFile(context.Background(), paths[0])
	assert.False(t, first.Cached)
	second := v.ValidateFile(context.Background(), paths[1])
	assert.False(t, second.Cached)

	iri := "file://" + filepath.ToSlash(filepath.Join(root, "b", "x"))
	require.NotEmpty(t, second.Result.Warnings)
	assert.Contains(t, strings.Join(second.Result.Warnings, "\n"), iri)

	again := v.ValidateFile(context.Background(), paths[1])
	assert.True(t, again.Cached)
	assert.Equal(t, second.Result, again.Result)
}

func TestValidateOne_CacheKeepsFormatApart(t *testing.T) {
	rc := cache.NewResultCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
	v := newValidator(t, WithCache(rc))

	content := "<http://example.org/x> a <http://example.org/T> .\n"
	turtle := Document{ID: "t", Content: []byte(content), Format: rdf.FormatTurtle}
	_, cached := v.validate(turtle)
	assert.False(t, cached)

	nt := Document{ID: "n", Content: []byte(content), Format: rdf.FormatNTriples}
	_, cached = v.validate(nt)
	assert.False(t, cached)
}

func TestValidateMany_DuplicateIDFirstWins(t *testing.T) {
	v := newValidator(t, WithWorkers(2))

	results := v.ValidateMany(context.Background(), []Document{
		doc("same", validDoc),
		doc("same", invalidDoc),
		doc("other", invalidDoc),
	})
	require.Len(t, results, 2)
	assert.True(t, results["same"].Valid)
	assert.False(t, results["other"].Valid)
}

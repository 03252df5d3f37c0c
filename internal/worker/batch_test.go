package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/triplecheck/internal/model"
)

// mockValidator implements FileValidator
type mockValidator struct {
	calls int32
}

func (m *mockValidator) ValidateFile(ctx context.Context, path string) model.DocumentResult {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(time.Millisecond)
	if strings.Contains(path, "bad") {
		return model.DocumentResult{Document: path, Result: model.Failed("Syntax error: boom")}
	}
	return model.DocumentResult{Document: path, Result: model.NewResult(nil, nil)}
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessPaths_PreservesOrder(t *testing.T) {
	processor := NewBatchProcessor(&mockValidator{}, 3)

	paths := []string{"a.ttl", "bad.ttl", "c.ttl", "d.ttl", "e.ttl", "f.ttl", "g.ttl"}
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, r := range results {
		if r.Document != paths[i] {
			t.Errorf("expected %s at index %d, got %s", paths[i], i, r.Document)
		}
	}
	if results[1].Result.Valid {
		t.Error("expected bad.ttl to be invalid")
	}
	if !results[0].Result.Valid {
		t.Error("expected a.ttl to be valid")
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockValidator{}, 2)

	results := processor.ProcessPaths(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessPaths_Cancelled(t *testing.T) {
	v := &mockValidator{}
	processor := NewBatchProcessor(v, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := processor.ProcessPaths(ctx, []string{"a.ttl", "b.ttl"})
	if len(results) != 0 {
		t.Errorf("expected no results after cancellation, got %d", len(results))
	}
	if atomic.LoadInt32(&v.calls) != 0 {
		t.Errorf("expected no validations, got %d", v.calls)
	}
}

func TestValidationResult_GetError(t *testing.T) {
	ok := &ValidationResult{Result: model.DocumentResult{Document: "a.ttl", Result: model.NewResult(nil, []string{"w"})}}
	if ok.GetError() != nil {
		t.Errorf("expected nil error for valid document, got %v", ok.GetError())
	}

	bad := &ValidationResult{Result: model.DocumentResult{Document: "b.ttl", Result: model.Failed("x")}}
	if bad.GetError() == nil {
		t.Error("expected error for invalid document")
	}
}

func TestReadPathsFromFile(t *testing.T) {
	list := writeList(t, `verse_1_to_99/triples_1_to_99.ttl
# comment
/abs/triples_100_to_200.ttl

verse_1_to_99/triples_1_to_99.ttl
   verse_201_to_300/../verse_201_to_300/triples_201_to_300.ttl   `)

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	base := filepath.Dir(list)
	expected := []string{
		filepath.Join(base, "verse_1_to_99/triples_1_to_99.ttl"),
		"/abs/triples_100_to_200.ttl",
		filepath.Join(base, "verse_201_to_300/triples_201_to_300.ttl"),
	}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d: %v", len(expected), len(paths), paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadPathsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	list := writeList(t, "a.ttl\nbad.ttl\n# comment\n\nc.ttl\n")

	processor := NewBatchProcessor(&mockValidator{}, 2)
	results, err := processor.ProcessFile(context.Background(), list)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockValidator{}, 2)

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

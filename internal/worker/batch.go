package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/triplecheck/internal/model"
)

// FileValidator validates a triple document on disk
type FileValidator interface {
	ValidateFile(ctx context.Context, path string) model.DocumentResult
}

// ValidationJob validates one file
type ValidationJob struct {
	Index     int
	Path      string
	Validator FileValidator
}

// Execute executes the validation job
func (j *ValidationJob) Execute(ctx context.Context) Result {
	return &ValidationResult{
		Index:  j.Index,
		Result: j.Validator.ValidateFile(ctx, j.Path),
	}
}

// ValidationResult carries a document result and its position in the batch
type ValidationResult struct {
	Index  int
	Result model.DocumentResult
}

// GetError reports invalid documents as errors
func (r *ValidationResult) GetError() error {
	if r.Result.Result.Valid {
		return nil
	}
	return fmt.Errorf("%s: %d error(s)", r.Result.Document, len(r.Result.Result.Errors))
}

// BatchProcessor validates many files concurrently
type BatchProcessor struct {
	validator   FileValidator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(validator FileValidator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
	}
}

// ProcessPaths validates the given files and returns their results in input
// order. Files not reached before ctx is cancelled are omitted.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []model.DocumentResult {
	if len(paths) == 0 {
		return []model.DocumentResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	submitted := 0
	for i, path := range paths {
		if !pool.Submit(&ValidationJob{Index: i, Path: path, Validator: b.validator}) {
			break
		}
		submitted++
	}

	var results []Result
	if submitted == len(paths) {
		results = pool.Wait()
	} else {
		results = pool.Shutdown()
	}

	slots := make([]*model.DocumentResult, len(paths))
	for _, r := range results {
		vr := r.(*ValidationResult)
		res := vr.Result
		slots[vr.Index] = &res
	}

	out := make([]model.DocumentResult, 0, len(paths))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// ProcessFile reads paths from a list file and validates them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]model.DocumentResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line).
// Relative paths are resolved against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		line = filepath.Clean(line)

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

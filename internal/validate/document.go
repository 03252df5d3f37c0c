package validate

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/triplecheck/internal/rdf"
)

// Document is one fact graph submitted for validation
type Document struct {
	ID      string
	Content []byte
	Format  rdf.Format
	Base    string // Base IRI for relative references, may be empty
}

// ReadDocument loads a document from disk, picking the format from the
// file extension
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrapf(err, "read %s", path)
	}
	return Document{
		ID:      path,
		Content: data,
		Format:  rdf.FormatFromPath(path),
		Base:    fileBase(path),
	}, nil
}

func fileBase(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return "file://" + filepath.ToSlash(abs)
}

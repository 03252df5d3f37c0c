// Package productions maps verse ranges to the files of a productions tree:
//
//	<dir>/verse_<s>_to_<e>/ancient_greek/aGR_<s>_to_<e>.txt
//	<dir>/verse_<s>_to_<e>/english/en_<s>_to_<e>.txt
//	<dir>/verse_<s>_to_<e>/triples_<s>_to_<e>.ttl
package productions

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
)

// ErrInvalidRange is returned for directory names that carry no verse range
var ErrInvalidRange = errors.New("invalid verse range")

var rangePattern = regexp.MustCompile(`verse_(\d+)_to_(\d+)`)

// VerseRange identifies a span of verses and its directory
type VerseRange struct {
	Name  string // Directory name, e.g. verse_773_to_805
	Start int
	End   int
}

// ParseVerseRange extracts the range from a directory name
func ParseVerseRange(name string) (VerseRange, error) {
	m := rangePattern.FindStringSubmatch(name)
	if m == nil {
		return VerseRange{}, errors.Wrapf(ErrInvalidRange, "%q", name)
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return VerseRange{}, errors.Wrapf(ErrInvalidRange, "%q", name)
	}
	end, err := strconv.Atoi(m[2])
	if err != nil {
		return VerseRange{}, errors.Wrapf(ErrInvalidRange, "%q", name)
	}
	return VerseRange{Name: name, Start: start, End: end}, nil
}

func (r VerseRange) suffix() string {
	return fmt.Sprintf("%d_to_%d", r.Start, r.End)
}

func (r VerseRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Layout resolves paths inside a productions directory
type Layout struct {
	Dir string
}

// NewLayout creates a layout rooted at dir
func NewLayout(dir string) *Layout {
	return &Layout{Dir: dir}
}

// GreekPath is the Ancient Greek source text
func (l *Layout) GreekPath(r VerseRange) string {
	return filepath.Join(l.Dir, r.Name, "ancient_greek", "aGR_"+r.suffix()+".txt")
}

// EnglishPath is the English translation
func (l *Layout) EnglishPath(r VerseRange) string {
	return filepath.Join(l.Dir, r.Name, "english", "en_"+r.suffix()+".txt")
}

// TriplesPath is the generated fact graph
func (l *Layout) TriplesPath(r VerseRange) string {
	return filepath.Join(l.Dir, r.Name, "triples_"+r.suffix()+".ttl")
}

// Ranges lists the verse_* directories, ordered by start then end verse.
// Entries whose names carry no range are ignored.
func (l *Layout) Ranges() ([]VerseRange, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read productions dir %s", l.Dir)
	}

	var out []VerseRange
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "verse_") {
			continue
		}
		r, err := ParseVerseRange(e.Name())
		if err != nil {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out, nil
}

// ReadTexts returns the Greek and English texts of a range
func (l *Layout) ReadTexts(r VerseRange) (greek, english string, err error) {
	g, err := os.ReadFile(l.GreekPath(r))
	if err != nil {
		return "", "", errors.Wrap(err, "ancient Greek text")
	}
	e, err := os.ReadFile(l.EnglishPath(r))
	if err != nil {
		return "", "", errors.Wrap(err, "English text")
	}
	return string(g), string(e), nil
}

// WriteTriples stores a generated fact graph, creating the range directory
// if needed
func (l *Layout) WriteTriples(r VerseRange, content string) (string, error) {
	path := l.TriplesPath(r)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, "create verse dir")
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// Discover returns the documents under the layout matching pattern, sorted.
// The pattern is relative to Dir and supports ** and {a,b} alternatives.
// Globbing runs on the directory's fs so that glob characters in Dir itself
// are taken literally.
func (l *Layout) Discover(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Newf("invalid pattern %q", pattern)
	}
	if _, err := os.Stat(l.Dir); err != nil {
		return nil, errors.Wrapf(err, "productions dir %s", l.Dir)
	}

	matches, err := doublestar.Glob(os.DirFS(l.Dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "glob %q", pattern)
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(l.Dir, filepath.FromSlash(m))
	}
	sort.Strings(out)
	return out, nil
}

// Match reports whether path, relative to Dir, matches pattern
func (l *Layout) Match(pattern, path string) bool {
	rel, err := filepath.Rel(l.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}


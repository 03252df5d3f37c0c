package productions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseVerseRange(t *testing.T) {
	r, err := ParseVerseRange("verse_773_to_805")
	require.NoError(t, err)
	assert.Equal(t, VerseRange{Name: "verse_773_to_805", Start: 773, End: 805}, r)
	assert.Equal(t, "773-805", r.String())

	_, err = ParseVerseRange("verse_notes")
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("prod")
	r := VerseRange{Name: "verse_1_to_99", Start: 1, End: 99}

	assert.Equal(t, filepath.Join("prod", "verse_1_to_99", "ancient_greek", "aGR_1_to_99.txt"), l.GreekPath(r))
	assert.Equal(t, filepath.Join("prod", "verse_1_to_99", "english", "en_1_to_99.txt"), l.EnglishPath(r))
	assert.Equal(t, filepath.Join("prod", "verse_1_to_99", "triples_1_to_99.ttl"), l.TriplesPath(r))
}

func TestRanges_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"verse_773_to_805", "verse_1_to_99", "verse_100_to_200", "verse_notes", "other"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	}
	touch(t, filepath.Join(dir, "verse_5_to_6"), "not a dir")

	ranges, err := NewLayout(dir).Ranges()
	require.NoError(t, err)

	var names []string
	for _, r := range ranges {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"verse_1_to_99", "verse_100_to_200", "verse_773_to_805"}, names)
}

func TestRanges_MissingDir(t *testing.T) {
	_, err := NewLayout(filepath.Join(t.TempDir(), "absent")).Ranges()
	assert.Error(t, err)
}

func TestReadTexts(t *testing.T) {
	dir := t.TempDir()
	l := NewLayout(dir)
	r := VerseRange{Name: "verse_1_to_99", Start: 1, End: 99}

	_, _, err := l.ReadTexts(r)
	require.Error(t, err)

	touch(t, l.GreekPath(r), "Ὦ κοινὸν αὐτάδελφον Ἰσμήνης κάρα")
	touch(t, l.EnglishPath(r), "Ismene, my own sister")

	greek, english, err := l.ReadTexts(r)
	require.NoError(t, err)
	assert.Equal(t, "Ὦ κοινὸν αὐτάδελφον Ἰσμήνης κάρα", greek)
	assert.Equal(t, "Ismene, my own sister", english)
}

func TestWriteTriples(t *testing.T) {
	l := NewLayout(t.TempDir())
	r := VerseRange{Name: "verse_1_to_99", Start: 1, End: 99}

	path, err := l.WriteTriples(r, "@prefix : <http://example.org/> .\n")
	require.NoError(t, err)
	assert.Equal(t, l.TriplesPath(r), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@prefix")
}

func TestDiscover_BracketedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "[PRODUCTIONS]")
	touch(t, filepath.Join(dir, "verse_1_to_99", "triples_1_to_99.ttl"), "")
	touch(t, filepath.Join(dir, "verse_100_to_200", "triples_100_to_200.nt"), "")
	touch(t, filepath.Join(dir, "verse_100_to_200", "english", "en_100_to_200.txt"), "")
	touch(t, filepath.Join(dir, "notes", "triples_x.ttl"), "")

	found, err := NewLayout(dir).Discover("verse_*/triples_*.{ttl,nt}")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "verse_100_to_200", "triples_100_to_200.nt"),
		filepath.Join(dir, "verse_1_to_99", "triples_1_to_99.ttl"),
	}, found)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := NewLayout(t.TempDir()).Discover("verse_[")
	assert.Error(t, err)

	_, err = NewLayout(filepath.Join(t.TempDir(), "absent")).Discover("*.ttl")
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	dir := t.TempDir()
	l := NewLayout(dir)
	pattern := "verse_*/triples_*.{ttl,nt}"

	assert.True(t, l.Match(pattern, filepath.Join(dir, "verse_1_to_99", "triples_1_to_99.ttl")))
	assert.False(t, l.Match(pattern, filepath.Join(dir, "verse_1_to_99", "english", "en_1_to_99.txt")))
	assert.False(t, l.Match(pattern, filepath.Join(filepath.Dir(dir), "elsewhere.ttl")))
}

package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDir_ReadsTextFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "beta")
	writeFile(t, dir, "a.md", "alpha")
	writeFile(t, dir, "notes/c.txt", "gamma")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "a.md", docs[0].Source)
	assert.Equal(t, "alpha", docs[0].Text)
	assert.Equal(t, "b.txt", docs[1].Source)
	assert.Equal(t, filepath.Join("notes", "c.txt"), docs[2].Source)
}

func TestLoadDir_SkipsUnsupportedAndEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "content")
	writeFile(t, dir, "skip.pdf", "binary-ish")
	writeFile(t, dir, "empty.txt", "   \n ")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "keep.txt", docs[0].Source)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestIsTextFile(t *testing.T) {
	assert.True(t, IsTextFile("notes.txt"))
	assert.True(t, IsTextFile("README.MD"))
	assert.False(t, IsTextFile("image.png"))
	assert.False(t, IsTextFile("noext"))
}

func TestSplit(t *testing.T) {
	texts, sources := Split([]Document{
		{Source: "a.txt", Text: "alpha"},
		{Source: "b.txt", Text: "beta"},
	})
	assert.Equal(t, []string{"alpha", "beta"}, texts)
	assert.Equal(t, []string{"a.txt", "b.txt"}, sources)
}

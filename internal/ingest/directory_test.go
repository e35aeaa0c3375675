package ingest

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyalabs/labreports/constants"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z_last.pdf", "pdf-z")
	writeFile(t, root, "a_first.PDF", "pdf-a")
	writeFile(t, root, "m_scan.jpg", "jpg-m")
	writeFile(t, root, "notes.txt", "ignored")
	writeFile(t, root, "nested/k_mid.png", "png-k")
	writeFile(t, root, ".hidden/secret.pdf", "hidden")
	writeFile(t, root, ".DS_Store", "junk")

	docs, results, stats, err := LoadDirectory(root, true, testLogger())
	require.NoError(t, err)

	require.Len(t, docs, 4)
	// lexicographic by filename regardless of directory depth or walk order
	assert.Equal(t, "a_first.PDF", docs[0].Filename)
	assert.Equal(t, "k_mid.png", docs[1].Filename)
	assert.Equal(t, "m_scan.jpg", docs[2].Filename)
	assert.Equal(t, "z_last.pdf", docs[3].Filename)

	assert.Equal(t, constants.PDF, docs[0].Kind)
	assert.Equal(t, constants.IMAGE, docs[1].Kind)
	assert.Equal(t, []byte("pdf-a"), docs[0].Data)

	assert.Equal(t, uint32(4), stats.Matched)
	assert.Equal(t, uint32(4), stats.Loaded)
	assert.Zero(t, stats.Failed)
	for _, fr := range results {
		assert.Empty(t, fr.Err)
	}
}

func TestLoadDirectoryKeepsHiddenWhenAsked(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden/secret.pdf", "hidden")

	docs, _, _, err := LoadDirectory(root, false, testLogger())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "secret.pdf", docs[0].Filename)
}

func TestLoadDirectoryEmptyRoot(t *testing.T) {
	_, _, _, err := LoadDirectory("  ", true, testLogger())
	require.Error(t, err)
}

func TestLoadDirectoryMissingRoot(t *testing.T) {
	docs, results, stats, err := LoadDirectory(filepath.Join(t.TempDir(), "nope"), true, testLogger())
	require.NoError(t, err, "walk errors are recorded per entry, not returned")
	assert.Empty(t, docs)
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Err)
	assert.Equal(t, uint32(1), stats.Failed)
}

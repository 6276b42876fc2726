package safeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileStaysInDir(t *testing.T) {
	dir, err := Open(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	path, err := dir.WriteFile("prd.md", []byte("# PRD"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir.Root(), "prd.md"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# PRD", string(got))

	_, err = dir.WriteFile("prd.md", []byte("# PRD v2"))
	require.NoError(t, err)
	got, _ = os.ReadFile(path)
	assert.Equal(t, "# PRD v2", string(got))

	for _, bad := range []string{"", "..", "../escape.md", "/etc/passwd", "sub/x.md"} {
		_, err = dir.WriteFile(bad, []byte("x"))
		assert.Error(t, err, bad)
	}

	entries, err := os.ReadDir(dir.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFileRefusesSymlink(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(base, "outside.md")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))
	dir, err := Open(filepath.Join(base, "out"))
	require.NoError(t, err)
	if err := os.Symlink(outside, filepath.Join(dir.Root(), "prd.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err = dir.WriteFile("prd.md", []byte("x"))
	assert.Error(t, err)
	got, _ := os.ReadFile(outside)
	assert.Equal(t, "keep", string(got))
}

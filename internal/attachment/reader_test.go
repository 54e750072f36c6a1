package attachment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadAsBlobDetectsContent(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(0)

	mime, data, err := r.ReadAsBlob(writeFile(t, dir, "image.bin", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngHeader, data)

	mime, _, err = r.ReadAsBlob(writeFile(t, dir, "notes.txt", []byte("hello world\n")))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)

	mime, _, err = r.ReadAsBlob(writeFile(t, dir, "README.md", []byte("# Title\n\nbody\n")))
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", mime)
}

func TestReadAsBlobLimits(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(4)

	_, _, err := r.ReadAsBlob(writeFile(t, dir, "big.txt", []byte("too long")))
	var tooLarge *ErrTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(4), tooLarge.Limit)

	if _, _, err := r.ReadAsBlob(dir); err == nil {
		t.Fatalf("expected error for directory")
	}
	if _, _, err := r.ReadAsBlob(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", nil)
	writeFile(t, dir, "a.txt", nil)
	writeFile(t, dir, ".hidden", nil)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "deep.txt", nil)

	got, err := ListDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub"),
	}, got)
}

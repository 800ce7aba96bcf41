package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLocalImporter_CopyToLocalStorage(t *testing.T) {
	srcDir := t.TempDir()
	dataDir := t.TempDir()
	src := writeFile(t, srcDir, "shared.png", pngHeader)

	imp := NewLocalImporter(dataDir, testLogger())
	require.NoError(t, imp.AcquirePermission(src))

	local, err := imp.CopyToLocalStorage(src)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(local, filepath.Join(dataDir, "images")), "copies land under the app's images dir")

	copied, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, copied)
}

func TestLocalImporter_AcquirePermissionMissingSource(t *testing.T) {
	imp := NewLocalImporter(t.TempDir(), testLogger())
	assert.Error(t, imp.AcquirePermission(filepath.Join(t.TempDir(), "nope.png")))
}

func TestLocalImporter_ResolveMime(t *testing.T) {
	srcDir := t.TempDir()
	imp := NewLocalImporter(t.TempDir(), testLogger())

	// Known extension wins without touching the content.
	byExt := writeFile(t, srcDir, "pic.png", nil)
	typ, err := imp.ResolveMime(byExt)
	require.NoError(t, err)
	assert.Equal(t, "image/png", typ)

	// Unknown extension falls back to content sniffing.
	byContent := writeFile(t, srcDir, "pic.shared", pngHeader)
	typ, err = imp.ResolveMime(byContent)
	require.NoError(t, err)
	assert.Equal(t, "image/png", typ)

	// Unidentifiable content yields no type, and importing it fails.
	opaque := writeFile(t, srcDir, "blob.shared", []byte{0x00, 0x01, 0x02, 0x03})
	typ, err = imp.ResolveMime(opaque)
	require.NoError(t, err)
	assert.Equal(t, "", typ)

	_, err = imp.CopyToLocalStorage(opaque)
	assert.Error(t, err)
}

func TestNoopExtractor(t *testing.T) {
	text, err := NoopExtractor{}.ExtractText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

// Package media holds the collaborators around shared images: importing the
// bytes into app-owned storage and extracting text from them.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Importer copies shared image resources into app-owned storage so they stay
// readable after the originating share goes away. Every method is best-effort
// from the caller's point of view: a failure means "keep the original ref".
type Importer interface {
	// AcquirePermission secures durable read access to the source ref.
	AcquirePermission(ref string) error

	// ResolveMime returns the MIME type of the source, or "" if unknown.
	ResolveMime(ref string) (string, error)

	// CopyToLocalStorage imports the bytes and returns a new stable local ref.
	CopyToLocalStorage(ref string) (string, error)
}

// TextExtractor is the pluggable OCR collaborator.
type TextExtractor interface {
	// ExtractText returns recognized text for the image, or "" when nothing
	// usable was found.
	ExtractText(ctx context.Context, ref string) (string, error)
}

// NoopExtractor is the default when no OCR backend is wired in.
type NoopExtractor struct{}

func (NoopExtractor) ExtractText(ctx context.Context, ref string) (string, error) {
	return "", nil
}

// LocalImporter implements Importer against the local filesystem: refs are
// file paths and importing is a byte copy into dataDir/images.
type LocalImporter struct {
	dir string
	log logrus.FieldLogger
	now func() time.Time
}

// NewLocalImporter creates an importer that stores copies under
// dataDir/images.
func NewLocalImporter(dataDir string, logger logrus.FieldLogger) *LocalImporter {
	return &LocalImporter{
		dir: filepath.Join(dataDir, "images"),
		log: logger.WithField("component", "media"),
		now: time.Now,
	}
}

// AcquirePermission verifies the source is readable. Local files carry no
// revocable grants, so a successful open is all the durability we need.
func (m *LocalImporter) AcquirePermission(ref string) error {
	f, err := os.Open(ref)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ref, err)
	}
	return f.Close()
}

// ResolveMime sniffs the MIME type from the file extension first, then from
// the leading bytes of the content.
func (m *LocalImporter) ResolveMime(ref string) (string, error) {
	if ext := filepath.Ext(ref); ext != "" {
		if typ := mime.TypeByExtension(ext); typ != "" {
			return typ, nil
		}
	}

	f, err := os.Open(ref)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", ref, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", ref, err)
	}
	typ := http.DetectContentType(head[:n])
	if typ == "application/octet-stream" {
		return "", nil
	}
	return typ, nil
}

// CopyToLocalStorage imports the source bytes into the images directory and
// returns the path of the copy. The extension is derived from the resolved
// MIME type; without one the caller is expected to keep the original ref.
func (m *LocalImporter) CopyToLocalStorage(ref string) (string, error) {
	mimeType, err := m.ResolveMime(ref)
	if err != nil || mimeType == "" {
		return "", fmt.Errorf("cannot resolve mime type for %s", ref)
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return "", fmt.Errorf("no extension known for %s", mimeType)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images dir: %w", err)
	}

	src, err := os.Open(ref)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", ref, err)
	}
	defer src.Close()

	name := fmt.Sprintf("image_%d%s", m.now().UnixNano(), exts[0])
	dstPath := filepath.Join(m.dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to copy %s: %w", ref, err)
	}

	m.log.WithFields(logrus.Fields{"src": ref, "dst": dstPath}).Debug("Image imported")
	return dstPath, nil
}

// Package writer materializes pipeline output as a mirrored directory tree:
// every input file appears under the output root at the same relative path.
// Writes are idempotent, re-running over an existing tree overwrites.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes files under a fixed output root.
type Writer struct {
	root string
}

// New returns a Writer rooted at dir.
func New(dir string) *Writer {
	return &Writer{root: dir}
}

// Root returns the output root directory.
func (w *Writer) Root() string { return w.root }

// Write stores content at the mirrored path, creating parent directories
// as needed.
func (w *Writer) Write(relPath, content string) error {
	path := filepath.Join(w.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}
	return nil
}

// Copy mirrors a file byte-for-byte from the source root. Used for files
// the pipeline does not translate.
func (w *Writer) Copy(srcRoot, relPath string) error {
	data, err := os.ReadFile(filepath.Join(srcRoot, filepath.FromSlash(relPath)))
	if err != nil {
		return fmt.Errorf("reading %s: %w", relPath, err)
	}
	return w.Write(relPath, string(data))
}

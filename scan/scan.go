// Package scan walks a source tree and classifies each file by the
// documentation conventions of its language. The classification drives
// which extractor variant the pipeline runs; unclassified files are still
// reported so they can be copied through unmodified.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dokit-tools/dokit/segment"
)

// skipDirs are directory names never worth descending into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// syntaxByExt maps file extensions to their documentation family.
var syntaxByExt = map[string]segment.SyntaxKind{
	".md":       segment.SyntaxMarkdown,
	".markdown": segment.SyntaxMarkdown,
	".txt":      segment.SyntaxMarkdown,
	".rst":      segment.SyntaxMarkdown,
	".adoc":     segment.SyntaxMarkdown,

	".c":     segment.SyntaxBlockComments,
	".cpp":   segment.SyntaxBlockComments,
	".cs":    segment.SyntaxBlockComments,
	".go":    segment.SyntaxBlockComments,
	".h":     segment.SyntaxBlockComments,
	".hpp":   segment.SyntaxBlockComments,
	".java":  segment.SyntaxBlockComments,
	".js":    segment.SyntaxBlockComments,
	".jsx":   segment.SyntaxBlockComments,
	".kt":    segment.SyntaxBlockComments,
	".php":   segment.SyntaxBlockComments,
	".rs":    segment.SyntaxBlockComments,
	".scala": segment.SyntaxBlockComments,
	".swift": segment.SyntaxBlockComments,
	".ts":    segment.SyntaxBlockComments,
	".tsx":   segment.SyntaxBlockComments,

	".bash": segment.SyntaxLineComments,
	".pl":   segment.SyntaxLineComments,
	".rb":   segment.SyntaxLineComments,
	".sh":   segment.SyntaxLineComments,

	".py": segment.SyntaxDocstrings,
}

// File is one entry found by Walk.
type File struct {
	// RelPath is slash-separated, relative to the walked root.
	RelPath string
	// Kind is SyntaxUnknown for files dokit does not segment.
	Kind segment.SyntaxKind
}

// Classify returns the syntax kind for a file name.
func Classify(name string) segment.SyntaxKind {
	if kind, ok := syntaxByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return kind
	}
	return segment.SyntaxUnknown
}

// Walk lists every file under root, skipping hidden entries and well-known
// dependency or build directories. Results are in lexical walk order.
func Walk(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if skipDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, File{
			RelPath: filepath.ToSlash(rel),
			Kind:    Classify(name),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// Load reads one scanned file into a SourceFile for the pipeline.
func Load(root string, f File) (segment.SourceFile, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.RelPath)))
	if err != nil {
		return segment.SourceFile{}, fmt.Errorf("reading %s: %w", f.RelPath, err)
	}
	return segment.SourceFile{
		RelPath: f.RelPath,
		Kind:    f.Kind,
		Content: string(data),
	}, nil
}

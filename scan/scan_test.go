// Package scan tests.
package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dokit-tools/dokit/segment"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want segment.SyntaxKind
	}{
		{"README.md", segment.SyntaxMarkdown},
		{"NOTES.TXT", segment.SyntaxMarkdown},
		{"main.go", segment.SyntaxBlockComments},
		{"app.tsx", segment.SyntaxBlockComments},
		{"deploy.sh", segment.SyntaxLineComments},
		{"tool.py", segment.SyntaxDocstrings},
		{"logo.png", segment.SyntaxUnknown},
		{"Makefile", segment.SyntaxUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.name); got != c.want {
			t.Errorf("Classify(%q): want %v, got %v", c.name, c.want, got)
		}
	}
}

func TestWalk_SkipsHiddenAndDependencyDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# hi\n")
	writeFile(t, root, "src/main.go", "package main\n")
	writeFile(t, root, "node_modules/pkg/index.js", "x\n")
	writeFile(t, root, ".git/config", "x\n")
	writeFile(t, root, ".hidden.md", "x\n")
	writeFile(t, root, "assets/logo.png", "binary")

	files, err := Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]segment.SyntaxKind{}
	for _, f := range files {
		got[f.RelPath] = f.Kind
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 files, got %v", got)
	}
	if got["README.md"] != segment.SyntaxMarkdown {
		t.Errorf("README.md: %v", got["README.md"])
	}
	if got["src/main.go"] != segment.SyntaxBlockComments {
		t.Errorf("src/main.go: %v", got["src/main.go"])
	}
	if got["assets/logo.png"] != segment.SyntaxUnknown {
		t.Errorf("assets/logo.png: %v", got["assets/logo.png"])
	}
	if _, ok := got["node_modules/pkg/index.js"]; ok {
		t.Error("node_modules must be skipped")
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc/guide.md", "# Guide\n")

	sf, err := Load(root, File{RelPath: "doc/guide.md", Kind: segment.SyntaxMarkdown})
	if err != nil {
		t.Fatal(err)
	}
	if sf.Content != "# Guide\n" || sf.Kind != segment.SyntaxMarkdown {
		t.Fatalf("unexpected SourceFile: %+v", sf)
	}
}

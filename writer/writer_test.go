// Package writer tests.
package writer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWrite_CreatesParentDirs(t *testing.T) {
	out := t.TempDir()
	w := New(out)
	if err := w.Write("a/b/c.md", "# hi\n"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(out, "a", "b", "c.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# hi\n" {
		t.Fatalf("content: %q", data)
	}
}

func TestWrite_Overwrites(t *testing.T) {
	out := t.TempDir()
	w := New(out)
	if err := w.Write("x.txt", "old"); err != nil {
		t.Fatal(err)
	}
	if err := w.Write("x.txt", "new"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(out, "x.txt"))
	if string(data) != "new" {
		t.Fatalf("content: %q", data)
	}
}

func TestCopy_MirrorsBytes(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "logo.bin"), []byte{0x00, 0xFF, 0x42}, 0o644); err != nil {
		t.Fatal(err)
	}
	w := New(out)
	if err := w.Copy(src, "logo.bin"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(out, "logo.bin"))
	if len(data) != 3 || data[0] != 0x00 || data[1] != 0xFF || data[2] != 0x42 {
		t.Fatalf("bytes: %v", data)
	}
}

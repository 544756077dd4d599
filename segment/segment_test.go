// Package segment tests.
package segment

import (
	"strings"
	"testing"
)

func docSpan(prefix, text, suffix string, lps ...string) Segment {
	return Segment{Kind: Doc, Doc: DocLineComment, Prefix: prefix, Text: text, Suffix: suffix, LinePrefixes: lps}
}

// ---------------------------------------------------------------------------
// Partition tests
// ---------------------------------------------------------------------------

func TestJoin_ReproducesSource(t *testing.T) {
	segs := []Segment{
		NewCode("func main() {\n\t"),
		docSpan("// ", "prints a banner", ""),
		NewCode("\n\tprintln(\"hi\")\n}\n"),
	}
	want := "func main() {\n\t// prints a banner\n\tprintln(\"hi\")\n}\n"
	if got := Join(segs); got != want {
		t.Fatalf("Join mismatch:\ngot  %q\nwant %q", got, want)
	}
	if err := Verify(segs, want); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_DetectsDrift(t *testing.T) {
	segs := []Segment{NewCode("abc")}
	if err := Verify(segs, "abcd"); err == nil {
		t.Fatal("expected Verify to fail on missing byte")
	}
}

func TestDocTexts_OrderAndFilter(t *testing.T) {
	segs := []Segment{
		NewCode("a"),
		docSpan("# ", "first", ""),
		NewCode("b"),
		docSpan("# ", "second", ""),
	}
	texts := DocTexts(segs)
	if len(texts) != 2 || texts[0] != "first" || texts[1] != "second" {
		t.Fatalf("DocTexts: got %v", texts)
	}
}

// ---------------------------------------------------------------------------
// Wrapper tests
// ---------------------------------------------------------------------------

func TestOriginal_MultiLineWrapper(t *testing.T) {
	s := Segment{
		Kind:         Doc,
		Doc:          DocBlockComment,
		Prefix:       "/*\n * ",
		Text:         "line one\nline two",
		Suffix:       "\n */",
		LinePrefixes: []string{" * "},
	}
	want := "/*\n * line one\n * line two\n */"
	if got := s.Original(); got != want {
		t.Fatalf("Original:\ngot  %q\nwant %q", got, want)
	}
}

func TestWrap_ExtraLinesReuseLastPrefix(t *testing.T) {
	s := Segment{
		Kind:         Doc,
		Doc:          DocBlockComment,
		Prefix:       "/* ",
		Suffix:       " */",
		Text:         "one line",
		LinePrefixes: []string{"   "},
	}
	got, err := Reassemble([]Segment{s}, []string{"grew\ninto\nthree"})
	if err != nil {
		t.Fatal(err)
	}
	want := "/* grew\n   into\n   three */"
	if got != want {
		t.Fatalf("wrap with surplus lines:\ngot  %q\nwant %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Reassemble tests
// ---------------------------------------------------------------------------

func TestReassemble_IdentityIsNoOp(t *testing.T) {
	segs := []Segment{
		NewCode("x = 1  "),
		docSpan("# ", "the answer", ""),
		NewCode("\n"),
	}
	out, err := Reassemble(segs, DocTexts(segs))
	if err != nil {
		t.Fatal(err)
	}
	if out != Join(segs) {
		t.Fatalf("identity reassembly changed bytes:\ngot  %q\nwant %q", out, Join(segs))
	}
}

func TestReassemble_ReplacesOnlyDocText(t *testing.T) {
	segs := []Segment{
		NewCode("echo hi "),
		docSpan("# ", "say hello", "  "),
	}
	out, err := Reassemble(segs, []string{"dire bonjour"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "echo hi # dire bonjour  " {
		t.Fatalf("got %q", out)
	}
	if !strings.HasPrefix(out, "echo hi ") {
		t.Error("code prefix was modified")
	}
}

func TestReassemble_RejectsNewlineInLineComment(t *testing.T) {
	segs := []Segment{
		docSpan("# ", "starts the service", ""),
		NewCode("\nsvc start\n"),
	}
	if _, err := Reassemble(segs, []string{"starts the service\nrm -rf injected"}); err == nil {
		t.Fatal("expected error for newline escaping the comment")
	}
}

func TestReassemble_NewlineAllowedInBlockComment(t *testing.T) {
	segs := []Segment{
		{Kind: Doc, Doc: DocBlockComment, Prefix: "/* ", Text: "short", Suffix: " */", LinePrefixes: []string{" * "}},
		NewCode("\n"),
	}
	out, err := Reassemble(segs, []string{"grew\nlonger"})
	if err != nil {
		t.Fatal(err)
	}
	want := "/* grew\n * longer */\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestReassemble_CountMismatch(t *testing.T) {
	segs := []Segment{docSpan("# ", "a", ""), docSpan("# ", "b", "")}
	if _, err := Reassemble(segs, []string{"only one"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
	if _, err := Reassemble(segs, []string{"a", "b", "c"}); err == nil {
		t.Fatal("expected count mismatch error for surplus")
	}
}

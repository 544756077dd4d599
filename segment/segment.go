// Package segment defines the span model shared by the extractor and the
// reassembler. A parsed file is an ordered sequence of segments that
// partitions the original content exactly: concatenating the original text
// of every segment, in order, reproduces the file byte-for-byte.
//
// Two span kinds exist. Code spans are opaque and must survive translation
// unchanged. Doc spans carry translatable prose plus the structural wrapper
// (comment delimiters, indentation, markdown markers) that was peeled off
// during extraction and is restored verbatim on reassembly.
package segment

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Syntax kinds
// ---------------------------------------------------------------------------

// SyntaxKind identifies the documentation conventions of a source file.
type SyntaxKind int

const (
	// SyntaxUnknown marks files dokit does not know how to segment.
	SyntaxUnknown SyntaxKind = iota
	// SyntaxLineComments covers languages whose only documentation form is
	// a line comment (shell, ruby, perl: "# ...").
	SyntaxLineComments
	// SyntaxBlockComments covers C-family languages with both "//" line
	// comments and "/* ... */" block comments.
	SyntaxBlockComments
	// SyntaxDocstrings covers Python-style files: triple-quoted docstrings
	// plus "#" line comments.
	SyntaxDocstrings
	// SyntaxMarkdown covers prose documents (markdown and friends).
	SyntaxMarkdown
)

// String returns the configuration name of the syntax kind.
func (k SyntaxKind) String() string {
	switch k {
	case SyntaxLineComments:
		return "line-comments"
	case SyntaxBlockComments:
		return "block-comments"
	case SyntaxDocstrings:
		return "docstrings"
	case SyntaxMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Span model
// ---------------------------------------------------------------------------

// SpanKind distinguishes translatable prose from protected code.
type SpanKind int

const (
	// Code spans are emitted byte-for-byte on reassembly.
	Code SpanKind = iota
	// Doc spans carry prose that is sent to the translation backend.
	Doc
)

// DocKind is the sub-tag of a Doc span. The reassembler uses it to decide
// how the structural wrapper is restored around the translated text.
type DocKind int

const (
	// DocNone is the zero value carried by Code spans.
	DocNone DocKind = iota
	// DocLineComment is the body of a single line comment.
	DocLineComment
	// DocBlockComment is the body of a block comment, possibly multi-line.
	DocBlockComment
	// DocDocstring is the body of a triple-quoted string literal.
	DocDocstring
	// DocMarkdownProse is a run of markdown prose on one line.
	DocMarkdownProse
)

// Segment is a contiguous, non-empty range of file content.
//
// For Code spans only Text is set and holds the original bytes.
//
// For Doc spans Text holds the translatable body with continuation-line
// wrappers removed; Prefix and Suffix hold the structural bytes immediately
// before and after the body; LinePrefixes holds the per-line wrapper of
// every continuation line of a multi-line body (line i+1 of the body is
// preceded by "\n" + LinePrefixes[i] in the original).
type Segment struct {
	Kind SpanKind
	Doc  DocKind

	Text         string
	Prefix       string
	Suffix       string
	LinePrefixes []string
}

// NewCode returns a Code span over the given bytes.
func NewCode(text string) Segment {
	return Segment{Kind: Code, Text: text}
}

// Original reconstructs the exact source bytes this segment was cut from.
func (s Segment) Original() string {
	if s.Kind == Code {
		return s.Text
	}
	return s.wrap(s.Text)
}

// wrap surrounds a (possibly translated) body with the recorded structure.
// If the body has more lines than were recorded, the last continuation
// prefix is reused; surplus recorded prefixes are dropped. Identity bodies
// therefore round-trip exactly.
func (s Segment) wrap(body string) string {
	var b strings.Builder
	b.WriteString(s.Prefix)
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
			b.WriteString(s.continuationPrefix(i - 1))
		}
		b.WriteString(line)
	}
	b.WriteString(s.Suffix)
	return b.String()
}

func (s Segment) continuationPrefix(i int) string {
	if len(s.LinePrefixes) == 0 {
		return ""
	}
	if i >= len(s.LinePrefixes) {
		i = len(s.LinePrefixes) - 1
	}
	return s.LinePrefixes[i]
}

// ---------------------------------------------------------------------------
// Sequence helpers
// ---------------------------------------------------------------------------

// Join concatenates the original text of all segments in order. For a
// correct extraction this equals the source content exactly.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Original())
	}
	return b.String()
}

// DocTexts returns the bodies of all Doc spans in order. This is the
// fragment batch submitted to the translation client for one file.
func DocTexts(segs []Segment) []string {
	var texts []string
	for _, s := range segs {
		if s.Kind == Doc {
			texts = append(texts, s.Text)
		}
	}
	return texts
}

// Verify checks the partition invariant against the original content.
func Verify(segs []Segment, content string) error {
	if got := Join(segs); got != content {
		return fmt.Errorf("segment partition does not reproduce source (%d vs %d bytes)", len(got), len(content))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reassembly
// ---------------------------------------------------------------------------

// Reassemble rebuilds full file content from the segment sequence and a
// parallel slice of translated Doc bodies (one entry per Doc span, in
// order). Code spans and all structural wrapper bytes are emitted verbatim;
// only Doc payload text differs from the source.
func Reassemble(segs []Segment, translated []string) (string, error) {
	want := 0
	for _, s := range segs {
		if s.Kind == Doc {
			want++
		}
	}
	if len(translated) != want {
		return "", fmt.Errorf("reassemble: have %d translated texts, need %d", len(translated), want)
	}

	var b strings.Builder
	next := 0
	for _, s := range segs {
		if s.Kind == Code {
			b.WriteString(s.Text)
			continue
		}
		// A line comment body is a single line; a newline in its replacement
		// would end the comment and turn the rest into live code.
		if s.Doc == DocLineComment && strings.Contains(translated[next], "\n") {
			return "", fmt.Errorf("reassemble: line comment translation contains a newline: %q", translated[next])
		}
		b.WriteString(s.wrap(translated[next]))
		next++
	}
	return b.String(), nil
}

// ---------------------------------------------------------------------------
// Source files
// ---------------------------------------------------------------------------

// SourceFile is one input file handed to the pipeline. Content is read once
// and never mutated; each file's pipeline run owns its data exclusively.
type SourceFile struct {
	// RelPath is the path relative to the source root, always slash-separated.
	RelPath string
	// Kind selects the extractor variant.
	Kind SyntaxKind
	// Content is the raw file text.
	Content string
}

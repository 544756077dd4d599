// Package extract locates documentation spans inside source and markdown
// files. Given file content and its syntax kind it produces an ordered
// segment sequence that partitions the content exactly: code, comment
// delimiters, indentation, and markdown structure become Code spans or
// wrapper bytes, while comment bodies, docstring bodies, and markdown prose
// become Doc spans.
//
// One extractor variant exists per syntax family (line comments, C-family
// block comments, Python docstrings, markdown), selected by an explicit
// segment.SyntaxKind; there is no content sniffing.
package extract

import (
	"fmt"
	"unicode"

	"github.com/dokit-tools/dokit/segment"
)

// StructuralError reports malformed documentation structure, such as an
// unterminated block comment or docstring. Extraction never guesses a
// boundary: a file with unbalanced delimiters fails instead of being
// silently truncated.
type StructuralError struct {
	// Line is the 1-based line where the offending construct starts.
	Line int
	// Msg describes the problem.
	Msg string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at line %d: %s", e.Line, e.Msg)
}

// Extract segments content according to its syntax kind.
//
// The returned sequence covers the entire content with no gaps and no
// overlaps; segment.Join on the result reproduces content byte-for-byte.
// Empty comment and docstring bodies yield no Doc span.
func Extract(content string, kind segment.SyntaxKind) ([]segment.Segment, error) {
	var (
		segs []segment.Segment
		err  error
	)
	switch kind {
	case segment.SyntaxLineComments:
		segs, err = extractLineComments(content, "#")
	case segment.SyntaxBlockComments:
		segs, err = extractBlockComments(content)
	case segment.SyntaxDocstrings:
		segs, err = extractDocstrings(content)
	case segment.SyntaxMarkdown:
		segs, err = extractMarkdown(content)
	default:
		return nil, fmt.Errorf("extract: unsupported syntax kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	if verr := segment.Verify(segs, content); verr != nil {
		// A partition failure is a bug in the extractor, not in the input.
		return nil, fmt.Errorf("extract: %w", verr)
	}
	return segs, nil
}

// hasLetter reports whether s contains at least one letter. Bodies without
// one (empty comments, divider rows, bare punctuation) are not translatable
// and stay structural.
func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// lineAt returns the 1-based line number of byte offset pos in content.
func lineAt(content string, pos int) int {
	line := 1
	for i := 0; i < pos && i < len(content); i++ {
		if content[i] == '\n' {
			line++
		}
	}
	return line
}

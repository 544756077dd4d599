package extract

import (
	"strings"

	"github.com/dokit-tools/dokit/segment"
)

// ---------------------------------------------------------------------------
// Line comments
// ---------------------------------------------------------------------------

// extractLineComments handles languages whose documentation lives in line
// comments introduced by delim (shell, ruby, perl). Code on the same line,
// the delimiter, and the whitespace after it stay structural; the comment
// body up to end-of-line becomes a Doc span.
func extractLineComments(content, delim string) ([]segment.Segment, error) {
	var segs []segment.Segment
	flushStart := 0
	i := 0
	first := true
	for i <= len(content) {
		lineEnd := len(content)
		if nl := strings.IndexByte(content[i:], '\n'); nl >= 0 {
			lineEnd = i + nl
		}
		line := content[i:lineEnd]

		// A shebang is an interpreter directive, not documentation.
		if !(first && strings.HasPrefix(line, "#!")) {
			if codeLen, seg, ok := lineCommentSpan(line, delim); ok {
				if i+codeLen > flushStart {
					segs = append(segs, segment.NewCode(content[flushStart:i+codeLen]))
				}
				segs = append(segs, seg)
				flushStart = lineEnd
			}
		}
		first = false

		if lineEnd == len(content) {
			break
		}
		i = lineEnd + 1
	}
	if flushStart < len(content) {
		segs = append(segs, segment.NewCode(content[flushStart:]))
	}
	return segs, nil
}

// lineCommentSpan splits a single line (without its newline) at the first
// comment delimiter outside string literals. codeLen is the byte length of
// the structural part before the delimiter. ok is false when the line has
// no comment, the body is empty, or the body is a tool directive.
func lineCommentSpan(line, delim string) (codeLen int, seg segment.Segment, ok bool) {
	d := commentIndex(line, delim)
	if d < 0 {
		return 0, segment.Segment{}, false
	}
	j := d + len(delim)
	for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
		j++
	}
	body := line[j:]
	text := strings.TrimRight(body, " \t")
	if !hasLetter(text) || isDirective(text) {
		return 0, segment.Segment{}, false
	}
	return d, segment.Segment{
		Kind:   segment.Doc,
		Doc:    segment.DocLineComment,
		Prefix: line[d:j],
		Text:   text,
		Suffix: body[len(text):],
	}, true
}

// commentIndex returns the byte index of delim in line, skipping matches
// inside single-, double-, or backtick-quoted string literals. Returns -1
// when the line carries no comment.
func commentIndex(line, delim string) int {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		default:
			if strings.HasPrefix(line[i:], delim) {
				return i
			}
		}
	}
	return -1
}

// isDirective reports whether a comment body addresses a tool rather than a
// human reader (coding declarations, type pragmas, linter suppressions).
func isDirective(text string) bool {
	for _, p := range []string{"-*-", "type:", "noqa", "nolint", "shellcheck", "vim:", "go:"} {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Block comments (C family)
// ---------------------------------------------------------------------------

// extractBlockComments handles C-family sources carrying both "//" line
// comments and "/* ... */" block comments. String literals are tracked so
// delimiters inside them are never mistaken for comments. An unterminated
// block comment is a StructuralError.
func extractBlockComments(content string) ([]segment.Segment, error) {
	var segs []segment.Segment
	flushStart := 0
	flush := func(end int) {
		if end > flushStart {
			segs = append(segs, segment.NewCode(content[flushStart:end]))
			flushStart = end
		}
	}

	var quote byte
	i := 0
	for i < len(content) {
		c := content[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote != '`' && i+1 < len(content):
				i += 2
				continue
			case c == quote:
				quote = 0
			case c == '\n' && quote != '`':
				// Unterminated literal on this line; resynchronize.
				quote = 0
			}
			i++
			continue
		}
		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
			i++
		case c == '/' && i+1 < len(content) && content[i+1] == '/':
			lineEnd := len(content)
			if nl := strings.IndexByte(content[i:], '\n'); nl >= 0 {
				lineEnd = i + nl
			}
			if _, seg, ok := lineCommentSpan(content[i:lineEnd], "//"); ok {
				flush(i)
				segs = append(segs, seg)
				flushStart = lineEnd
			}
			i = lineEnd
		case c == '/' && i+1 < len(content) && content[i+1] == '*':
			rel := strings.Index(content[i+2:], "*/")
			if rel < 0 {
				return nil, &StructuralError{Line: lineAt(content, i), Msg: "unterminated block comment"}
			}
			end := i + 2 + rel + 2
			if seg, ok := blockCommentSegment(content[i:end]); ok {
				flush(i)
				segs = append(segs, seg)
				flushStart = end
			}
			i = end
		default:
			i++
		}
	}
	flush(len(content))
	return segs, nil
}

// blockCommentSegment converts one raw "/* ... */" comment into a Doc span.
// Interior indentation and "*" gutters on continuation lines are recorded
// as per-line wrapper prefixes so reinsertion re-indents exactly. Returns
// ok=false for comments with no prose body.
func blockCommentSegment(raw string) (segment.Segment, bool) {
	inner := raw[2 : len(raw)-2]
	lines := strings.Split(inner, "\n")

	p0 := leadingWS(lines[0])
	prefix := "/*" + p0
	bodyLines := []string{lines[0][len(p0):]}
	var linePrefixes []string
	for _, l := range lines[1:] {
		lp := gutterPrefix(l)
		linePrefixes = append(linePrefixes, lp)
		bodyLines = append(bodyLines, l[len(lp):])
	}

	// Blank edge lines belong to the wrapper, not the translatable body.
	suffix := ""
	for len(bodyLines) > 1 && bodyLines[len(bodyLines)-1] == "" {
		lp := linePrefixes[len(linePrefixes)-1]
		linePrefixes = linePrefixes[:len(linePrefixes)-1]
		bodyLines = bodyLines[:len(bodyLines)-1]
		suffix = "\n" + lp + suffix
	}
	for len(bodyLines) > 1 && bodyLines[0] == "" {
		prefix += "\n" + linePrefixes[0]
		linePrefixes = linePrefixes[1:]
		bodyLines = bodyLines[1:]
	}

	last := bodyLines[len(bodyLines)-1]
	trimmed := strings.TrimRight(last, " \t")
	suffix = last[len(trimmed):] + suffix
	bodyLines[len(bodyLines)-1] = trimmed

	text := strings.Join(bodyLines, "\n")
	if !hasLetter(text) {
		return segment.Segment{}, false
	}
	return segment.Segment{
		Kind:         segment.Doc,
		Doc:          segment.DocBlockComment,
		Prefix:       prefix,
		Text:         text,
		Suffix:       suffix + "*/",
		LinePrefixes: linePrefixes,
	}, true
}

// gutterPrefix returns the structural lead-in of a block comment
// continuation line: indentation plus an optional "*" gutter and the single
// space after it.
func gutterPrefix(line string) string {
	n := len(leadingWS(line))
	if n < len(line) && line[n] == '*' {
		n++
		if n < len(line) && line[n] == ' ' {
			n++
		}
	}
	return line[:n]
}

func leadingWS(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

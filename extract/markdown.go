package extract

import (
	"strings"

	"github.com/dokit-tools/dokit/segment"
)

// extractMarkdown handles prose documents. The scan is line oriented:
// fenced and indented code blocks, blank lines, thematic breaks, setext
// underlines, HTML blocks, tables, and link reference definitions stay
// structural. On prose lines the block marker (heading hashes, list
// bullets, blockquote angles) stays structural too, and an inline pass
// protects backtick spans, link targets, and angle-bracket tags so only
// readable prose reaches the translator.
func extractMarkdown(content string) ([]segment.Segment, error) {
	var segs []segment.Segment
	var code strings.Builder
	flushCode := func() {
		if code.Len() > 0 {
			segs = append(segs, segment.NewCode(code.String()))
			code.Reset()
		}
	}
	emitProse := func(t string) {
		lead := leadingWS(t)
		body := strings.TrimRight(t[len(lead):], " \t")
		if !hasLetter(body) {
			code.WriteString(t)
			return
		}
		code.WriteString(lead)
		flushCode()
		segs = append(segs, segment.Segment{Kind: segment.Doc, Doc: segment.DocMarkdownProse, Text: body})
		code.WriteString(t[len(lead)+len(body):])
	}

	var (
		inFence   bool
		fenceChar byte
		fenceLen  int
	)
	i := 0
	for i <= len(content) {
		lineEnd := len(content)
		nlLen := 0
		if nl := strings.IndexByte(content[i:], '\n'); nl >= 0 {
			lineEnd = i + nl
			nlLen = 1
		}
		line := content[i:lineEnd]
		raw := content[i : lineEnd+nlLen]

		if inFence {
			code.WriteString(raw)
			if ch, n, ok := fenceLine(line); ok && ch == fenceChar && n >= fenceLen {
				if rest := strings.TrimLeft(line, " "); strings.TrimRight(rest[n:], " \t") == "" {
					inFence = false
				}
			}
		} else if ch, n, ok := fenceLine(line); ok {
			inFence, fenceChar, fenceLen = true, ch, n
			code.WriteString(raw)
		} else if structuralLine(line) {
			code.WriteString(raw)
		} else {
			marker := blockMarker(line)
			code.WriteString(marker)
			for _, p := range splitInline(line[len(marker):]) {
				if p.prose {
					emitProse(p.text)
				} else {
					code.WriteString(p.text)
				}
			}
			if nlLen == 1 {
				code.WriteByte('\n')
			}
		}

		if lineEnd == len(content) {
			break
		}
		i = lineEnd + 1
	}
	flushCode()
	return segs, nil
}

// fenceLine reports whether line opens (or could close) a code fence: up to
// three spaces of indentation followed by at least three backticks or
// tildes. Returns the fence character and run length.
func fenceLine(line string) (byte, int, bool) {
	ws := leadingWS(line)
	if len(ws) > 3 || strings.ContainsRune(ws, '\t') {
		return 0, 0, false
	}
	rest := line[len(ws):]
	if rest == "" {
		return 0, 0, false
	}
	ch := rest[0]
	if ch != '`' && ch != '~' {
		return 0, 0, false
	}
	n := runLen(rest, 0, ch)
	if n < 3 {
		return 0, 0, false
	}
	return ch, n, true
}

// structuralLine reports whether a line carries no translatable prose:
// blank lines, indented code blocks, thematic breaks and setext underlines,
// HTML blocks, table rows, and link reference definitions.
func structuralLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
		return true
	}
	if isRuleLine(trimmed) {
		return true
	}
	switch trimmed[0] {
	case '<', '|':
		return true
	case '[':
		if k := strings.Index(trimmed, "]:"); k > 0 {
			return true
		}
	}
	return false
}

// isRuleLine matches thematic breaks (***, ---, ___) and setext heading
// underlines (=== or ---), allowing interior spaces per CommonMark.
func isRuleLine(trimmed string) bool {
	var ch byte
	count := 0
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == ' ' || c == '\t' {
			continue
		}
		if ch == 0 {
			if c != '-' && c != '*' && c != '_' && c != '=' {
				return false
			}
			ch = c
		}
		if c != ch {
			return false
		}
		count++
	}
	if ch == '=' || ch == '-' {
		return count >= 1
	}
	return count >= 3
}

// blockMarker returns the structural lead-in of a prose line: indentation,
// blockquote angles, then a heading hash run, a bullet, or an ordered list
// marker. The marker is emitted verbatim; only the text after it is prose.
func blockMarker(line string) string {
	i := 0
	for {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i < len(line) && line[i] == '>' {
			i++
			continue
		}
		break
	}
	if i < len(line) && line[i] == '#' {
		j := i
		for j < len(line) && line[j] == '#' {
			j++
		}
		if j-i <= 6 && j < len(line) && line[j] == ' ' {
			return line[:j+1]
		}
		return line[:i]
	}
	if i+1 < len(line) && (line[i] == '-' || line[i] == '*' || line[i] == '+') && line[i+1] == ' ' {
		return line[:i+2]
	}
	j := i
	for j < len(line) && line[j] >= '0' && line[j] <= '9' {
		j++
	}
	if j > i && j-i <= 9 && j+1 < len(line) && (line[j] == '.' || line[j] == ')') && line[j+1] == ' ' {
		return line[:j+2]
	}
	return line[:i]
}

// ---------------------------------------------------------------------------
// Inline scan
// ---------------------------------------------------------------------------

type inlinePiece struct {
	text  string
	prose bool
}

// splitInline cuts one prose run into alternating prose and protected
// pieces. Protected: backtick code spans (closed by a run of the same
// length), link and image targets "](...)", and angle-bracket constructs
// (autolinks and HTML tags).
func splitInline(body string) []inlinePiece {
	var pieces []inlinePiece
	proseStart := 0
	protect := func(start, end int) {
		if start > proseStart {
			pieces = append(pieces, inlinePiece{body[proseStart:start], true})
		}
		pieces = append(pieces, inlinePiece{body[start:end], false})
		proseStart = end
	}

	i := 0
	for i < len(body) {
		switch c := body[i]; {
		case c == '`':
			n := runLen(body, i, '`')
			if j := backtickClose(body, i+n, n); j >= 0 {
				protect(i, j+n)
				i = j + n
			} else {
				i += n
			}
		case c == ']' && i+1 < len(body) && body[i+1] == '(':
			if j := strings.IndexByte(body[i+2:], ')'); j >= 0 {
				protect(i, i+2+j+1)
				i = i + 2 + j + 1
			} else {
				i++
			}
		case c == '<' && i+1 < len(body) && (isAlpha(body[i+1]) || body[i+1] == '/' || body[i+1] == '!'):
			if j := strings.IndexByte(body[i:], '>'); j > 0 {
				protect(i, i+j+1)
				i += j + 1
			} else {
				i++
			}
		default:
			i++
		}
	}
	if proseStart < len(body) {
		pieces = append(pieces, inlinePiece{body[proseStart:], true})
	}
	return pieces
}

// backtickClose finds a backtick run of exactly n characters at or after
// from, returning its start index or -1.
func backtickClose(s string, from, n int) int {
	for i := from; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		r := runLen(s, i, '`')
		if r == n {
			return i
		}
		i += r
	}
	return -1
}

func runLen(s string, i int, ch byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == ch {
		n++
	}
	return n
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

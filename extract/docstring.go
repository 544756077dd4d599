package extract

import (
	"strings"

	"github.com/dokit-tools/dokit/segment"
)

// extractDocstrings handles Python-style sources: triple-quoted docstrings
// plus "#" line comments. A string literal only counts as a docstring when
// the triple quote is the first token on its line; assignments like
// x = """data""" stay code, including multi-line ones whose closing quotes
// start a line of their own. An unterminated triple quote is a
// StructuralError.
func extractDocstrings(content string) ([]segment.Segment, error) {
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

		if q, pos, doc := tripleQuoteOpen(line); q != "" {
			openAbs := i + pos
			bodyStart := openAbs + len(q)
			rel := strings.Index(content[bodyStart:], q)
			if rel < 0 {
				msg := "unterminated string literal"
				if doc {
					msg = "unterminated docstring"
				}
				return nil, &StructuralError{Line: lineAt(content, openAbs), Msg: msg}
			}
			bodyEnd := bodyStart + rel
			end := bodyEnd + len(q)
			if doc {
				if seg, ok := docstringSegment(content[bodyStart:bodyEnd], q); ok {
					if openAbs > flushStart {
						segs = append(segs, segment.NewCode(content[flushStart:openAbs]))
					}
					segs = append(segs, seg)
					flushStart = end
				}
			}
			// Resume scanning on the line after the closing quotes. A
			// non-docstring literal body stays in the pending code flush.
			if nl := strings.IndexByte(content[end:], '\n'); nl >= 0 {
				i = end + nl + 1
				first = false
				continue
			}
			break
		}

		if !(first && strings.HasPrefix(line, "#!")) {
			if codeLen, seg, ok := lineCommentSpan(line, "#"); ok {
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

// tripleQuoteOpen finds the first triple quote on the line (without its
// newline) that opens a string crossing onto later lines, or that sits in
// docstring position (only indentation before it). doc reports the latter.
// Triple quotes inside single-quoted strings or after a "#" comment start
// are ignored, and a mid-line literal that closes on the same line is
// skipped over as ordinary code.
func tripleQuoteOpen(line string) (quote string, pos int, doc bool) {
	ws := leadingWS(line)
	var in byte
	i := 0
	for i < len(line) {
		c := line[i]
		if in != 0 {
			if c == '\\' {
				i += 2
				continue
			}
			if c == in {
				in = 0
			}
			i++
			continue
		}
		if strings.HasPrefix(line[i:], `"""`) || strings.HasPrefix(line[i:], "'''") {
			q := line[i : i+3]
			if i == len(ws) {
				return q, i, true
			}
			if close := strings.Index(line[i+3:], q); close >= 0 {
				i += close + 2*len(q)
				continue
			}
			return q, i, false
		}
		switch c {
		case '#':
			return "", 0, false
		case '"', '\'':
			in = c
		}
		i++
	}
	return "", 0, false
}

// docstringSegment converts a raw docstring body (delimiters excluded) into
// a Doc span. Interior newlines and indentation stay inside the body; only
// a leading newline run and the closing line's indentation move into the
// wrapper. Returns ok=false for whitespace-only bodies.
func docstringSegment(raw, quote string) (segment.Segment, bool) {
	if !hasLetter(raw) {
		return segment.Segment{}, false
	}

	prefix := quote
	if k := len(raw) - len(strings.TrimLeft(raw, " \t\n")); k > 0 && strings.Contains(raw[:k], "\n") {
		prefix += raw[:k]
		raw = raw[k:]
	}

	suffix := quote
	if idx := strings.LastIndexByte(raw, '\n'); idx >= 0 && strings.TrimRight(raw[idx+1:], " \t") == "" {
		suffix = raw[idx:] + quote
		raw = raw[:idx]
	}

	return segment.Segment{
		Kind:   segment.Doc,
		Doc:    segment.DocDocstring,
		Prefix: prefix,
		Text:   raw,
		Suffix: suffix,
	}, true
}

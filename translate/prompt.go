package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dokit-tools/dokit/langmeta"
	"github.com/dokit-tools/dokit/segment"
)

// systemPromptTemplate instructs the model to behave as a batch translator.
// {{targetLang}} is replaced with the resolved language name.
const systemPromptTemplate = `You are a professional translator specializing in software documentation. You are translating developer-facing text extracted from source code and documentation files into {{targetLang}}.

Rules:
1. Translate ONLY the natural-language prose. Never translate identifiers, function names, file paths, URLs, command invocations, or anything that looks like code.
2. Preserve all inline markup exactly: backticks, asterisks, underscores, brackets, placeholders like %s or {0}, and escape sequences.
3. Preserve line breaks inside each string exactly as given.
4. Keep the register technical and concise, as in the original.
5. Return ONLY a JSON array of translated strings, one per input string, in the same order. No commentary, no markdown fences.`

// syntaxGuidance appends a family-specific reminder to the system prompt.
var syntaxGuidance = map[segment.SyntaxKind]string{
	segment.SyntaxLineComments:  "The strings are bodies of source code line comments.",
	segment.SyntaxBlockComments: "The strings are bodies of source code comments; multi-line bodies keep their line structure.",
	segment.SyntaxDocstrings:    "The strings are Python docstring and comment bodies; keep indentation inside multi-line strings.",
	segment.SyntaxMarkdown:      "The strings are markdown prose runs; markdown structure around them is handled separately.",
}

func buildSystemPrompt(targetLang string, hint Hint) string {
	prompt := strings.ReplaceAll(systemPromptTemplate, "{{targetLang}}", langmeta.Name(targetLang))
	if g, ok := syntaxGuidance[hint.Syntax]; ok {
		prompt += "\n\n" + g
	}
	if hint.Path != "" {
		prompt += fmt.Sprintf("\nThe strings come from the file %q.", hint.Path)
	}
	return prompt
}

// buildUserPrompt serializes the fragments as a JSON array so multi-line
// bodies survive transport unambiguously.
func buildUserPrompt(fragments []string) (string, error) {
	payload, err := json.Marshal(fragments)
	if err != nil {
		return "", fmt.Errorf("encoding fragments: %w", err)
	}
	return fmt.Sprintf("Translate each string in this JSON array:\n\n%s\n\nReturn a JSON array with exactly %d translated strings.", payload, len(fragments)), nil
}

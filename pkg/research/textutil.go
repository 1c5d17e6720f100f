package research

import "strings"

// ExtractFromTags returns the trimmed substring between the first <name> and
// the matching </name>. Matching is literal and case-sensitive. The second
// return value reports whether both tags were found.
func ExtractFromTags(text, name string) (string, bool) {
	open := "<" + name + ">"
	close := "</" + name + ">"

	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(open):]

	end := strings.Index(rest, close)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// RemoveThinkingTags strips a leading <think>...</think> block, as emitted by
// reasoning models, along with the whitespace it leaves behind. Idempotent.
func RemoveThinkingTags(text string) string {
	trimmed := strings.TrimLeftFunc(text, isSpace)
	if !strings.HasPrefix(trimmed, "<think>") {
		return strings.TrimSpace(text)
	}

	end := strings.Index(trimmed, "</think>")
	if end < 0 {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(trimmed[end+len("</think>"):])
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

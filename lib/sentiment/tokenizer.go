package sentiment

import (
	"strings"
	"unicode"
)

// marker keywords substituted for whole tokens
const (
	KeywordUsername = "USERNAME"
	KeywordURL      = "URL"
)

const punctuation = `!.,?"()`

// Keywords splits text into normalized keywords. Tokens starting with @ become USERNAME,
// tokens with http:// or https:// become URL, everything else is collapsed (no letter
// repeated more than twice in a row) and split into punctuation and non-punctuation runs.
func Keywords(text string) []string {
	res := []string{}
	for _, token := range splitSpace(text) {
		token = strings.ToLower(token)
		switch {
		case strings.HasPrefix(token, "@"):
			res = append(res, KeywordUsername)
		case strings.Contains(token, "http://") || strings.Contains(token, "https://"):
			res = append(res, KeywordURL)
		default:
			res = append(res, separatePunctuation(collapseRepeats(token))...)
		}
	}
	return res
}

// KeywordSet returns unique keywords of the text, presence only
func KeywordSet(text string) map[string]struct{} {
	res := make(map[string]struct{})
	for _, kw := range Keywords(text) {
		res[kw] = struct{}{}
	}
	return res
}

// splitSpace splits on every whitespace rune. Unlike strings.Fields it keeps empty tokens
// between adjacent separators, those produce no keywords downstream.
func splitSpace(text string) []string {
	res := []string{}
	start := 0
	for i, r := range text {
		if isSpace(r) {
			res = append(res, text[start:i])
			start = i + len(string(r))
		}
	}
	return append(res, text[start:])
}

// isSpace reports whether r is whitespace in the ECMAScript sense: unicode white space
// without NEL (U+0085), plus BOM (U+FEFF).
func isSpace(r rune) bool {
	switch r {
	case '\u0085':
		return false
	case '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}

// collapseRepeats drops characters of a run after the second one, "loooove" -> "loove"
func collapseRepeats(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	var last rune
	count := 0
	for i, ch := range s {
		if i > 0 && ch == last {
			count++
		} else {
			last = ch
			count = 1
		}
		if count <= 2 {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// separatePunctuation splits s into maximal runs of punctuation and non-punctuation characters
func separatePunctuation(s string) []string {
	res := []string{}
	start := 0
	var wasPunct bool
	for i, ch := range s {
		isPunct := strings.ContainsRune(punctuation, ch)
		if i > 0 && isPunct != wasPunct {
			res = append(res, s[start:i])
			start = i
		}
		wasPunct = isPunct
	}
	if start < len(s) {
		res = append(res, s[start:])
	}
	return res
}

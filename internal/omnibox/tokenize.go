package omnibox

import (
	"strings"
	"unicode"
)

// Tokenize splits OmniBox input into tokens. Whitespace separates tokens and
// a token made only of hyphens is treated as a separator. A double or single
// quote that opens a token groups everything up to the matching quote into one
// token; the quotes themselves are removed, and an unterminated quote runs to
// the end of the input.
func Tokenize(input string) []string {
	var tokens []string
	runes := []rune(input)
	n := len(runes)

	for i := 0; i < n; {
		for i < n && unicode.IsSpace(runes[i]) {
			i++
		}
		if i >= n {
			break
		}

		if q := runes[i]; q == '"' || q == '\'' {
			j := i + 1
			for j < n && runes[j] != q {
				j++
			}
			if tok := string(runes[i+1 : j]); tok != "" {
				tokens = append(tokens, tok)
			}
			if j < n {
				j++
			}
			i = j
			continue
		}

		j := i
		for j < n && !unicode.IsSpace(runes[j]) {
			j++
		}
		tok := string(runes[i:j])
		i = j
		if strings.Trim(tok, "-") == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// StripLastToken removes the most recently started token from input, keeping
// the separator before it. Quoted phrases are removed as a whole. When input
// ends with a space inside an open quote it is returned unchanged, since it
// is unclear which token the user is typing.
func StripLastToken(input string) string {
	s, _ := stripLastToken(input)
	return s
}

// stripLastToken is StripLastToken that also reports the ambiguous case
func stripLastToken(input string) (string, bool) {
	n := len(input)
	if n == 0 {
		return "", false
	}

	odd := strings.Count(input, `"`)%2 == 1
	lastQuote := strings.LastIndex(input, `"`)
	lastSpace := strings.LastIndex(input, " ")

	respectQuote := odd || input[n-1] == '"'
	respectSpace := input[n-1] == ' ' || (!odd && lastSpace > lastQuote)

	switch {
	case respectQuote && respectSpace:
		return input, true
	case respectQuote && odd:
		return input[:lastQuote], false
	case respectQuote:
		// closed phrase at the end; cut at its opening quote
		open := strings.LastIndex(input[:n-1], `"`)
		if open < 0 {
			return "", false
		}
		return input[:open], false
	case respectSpace:
		return input[:lastSpace+1], false
	default:
		return "", false
	}
}

// quoteIfNeeded wraps s in quotes when Tokenize would otherwise split it
func quoteIfNeeded(s string) string {
	q, _ := quoteToken(s)
	return q
}

// quoteToken returns s in a form Tokenize reads back as the single token s.
// The quote character is one s does not contain; ok is false when s needs
// quoting but holds both.
func quoteToken(s string) (string, bool) {
	if s == "" {
		return s, true
	}
	plain := !strings.ContainsFunc(s, unicode.IsSpace) &&
		!strings.HasPrefix(s, `"`) && !strings.HasPrefix(s, "'") &&
		strings.Trim(s, "-") != ""
	switch {
	case plain:
		return s, true
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, true
	case !strings.Contains(s, "'"):
		return "'" + s + "'", true
	}
	return s, false
}

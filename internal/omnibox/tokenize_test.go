package omnibox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \t ", nil},
		{"words", "filter name = bob", []string{"filter", "name", "=", "bob"}},
		{"double quoted phrase", `"Molecule Set" = 10`, []string{"Molecule Set", "=", "10"}},
		{"single quoted phrase", `name = 'a b'`, []string{"name", "=", "a b"}},
		{"hyphen separator", "name -- bob", []string{"name", "bob"}},
		{"hyphens inside words", "date = 2024-01-02", []string{"date", "=", "2024-01-02"}},
		{"negative number", "qty > -5", []string{"qty", ">", "-5"}},
		{"apostrophe inside word", "name = o'brien", []string{"name", "=", "o'brien"}},
		{"unterminated quote", `name = "bob sm`, []string{"name", "=", "bob sm"}},
		{"empty quotes dropped", `name "" x`, []string{"name", "x"}},
		{"runs of whitespace", "a   b\tc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenize_Restartable(t *testing.T) {
	input := `filter "Molecule Set" = 10`
	assert.Equal(t, Tokenize(input), Tokenize(input))
}

func TestStripLastToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"single word", "fil", ""},
		{"trailing word", "filter nam", "filter "},
		{"trailing space keeps input", "filter name ", "filter name "},
		{"open quote", `filter "Molecule S`, "filter "},
		{"closed phrase", `filter "Molecule Set"`, "filter "},
		{"closed phrase then space", `filter "Molecule Set" `, `filter "Molecule Set" `},
		{"word after phrase", `filter "Molecule Set" =`, `filter "Molecule Set" `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripLastToken(tt.input))
		})
	}
}

func TestStripLastToken_Ambiguous(t *testing.T) {
	input := `filter "Molecule `
	got, ambiguous := stripLastToken(input)
	assert.True(t, ambiguous)
	assert.Equal(t, input, got)
}

func TestQuoteIfNeeded(t *testing.T) {
	assert.Equal(t, "name", quoteIfNeeded("name"))
	assert.Equal(t, `"Molecule Set"`, quoteIfNeeded("Molecule Set"))
	assert.Equal(t, `"--"`, quoteIfNeeded("--"))
	assert.Equal(t, "", quoteIfNeeded(""))
	assert.Equal(t, `'say "hi"'`, quoteIfNeeded(`say "hi"`))
	assert.Equal(t, `'"hi"'`, quoteIfNeeded(`"hi"`))
	assert.Equal(t, `"'it's"`, quoteIfNeeded("'it's"))

	_, ok := quoteToken(`it's "x"`)
	assert.False(t, ok)
}

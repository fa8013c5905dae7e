package jsonb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsJSON(t *testing.T) {
	tests := map[string]bool{
		`{"a":1}`:  true,
		` [1, 2] `: true,
		`{"a":`:    false,
		`42`:       false,
		`true`:     false,
		`"quoted"`: false,
		``:         false,
		`plain`:    false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsJSON(in), in)
	}
}

func TestFormat(t *testing.T) {
	out, err := Format(`{"b":[1,2],"a":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"x\",\n  \"b\": [\n    1,\n    2\n  ]\n}", out)

	_, err = Format(`{`)
	assert.Error(t, err)
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "plain", Pretty("plain"))
	assert.Equal(t, "[\n  1\n]", Pretty("[1]"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, `{"a":1}`, Truncate(`{"a":1}`, 20))
	assert.Equal(t, `{"name": "alpha"...`, Truncate(`{"name": "alpha", "qty": 3}`, 20))
}

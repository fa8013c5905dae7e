package omnibox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortNatural(t *testing.T) {
	in := []string{"item10", "Item2", "item1", "apple", "item3b", "b"}
	got := SortNatural(in)
	assert.Equal(t, []string{"apple", "b", "item1", "Item2", "item3b", "item10"}, got)
	assert.Equal(t, "item10", in[0], "input is not modified")
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, NaturalLess("a2", "a10"))
	assert.False(t, NaturalLess("a10", "a2"))
	assert.True(t, NaturalLess("abc", "abcd"))
	assert.False(t, NaturalLess("x", "x"))
	assert.False(t, NaturalLess("Bob", "alice2"))
	assert.True(t, NaturalLess("B", "b"), "case only breaks ties")
}

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/omnipg/internal/models"
)

func TestCreate_DropsValueForValuelessTypes(t *testing.T) {
	f := Create("name", "ignored", IsBlank)

	assert.Equal(t, "name", f.ColumnName())
	assert.Equal(t, IsBlank, f.FilterType())
	assert.Equal(t, "", f.Value())
}

func TestURLParam_RoundTrip(t *testing.T) {
	tests := []Filter{
		Create("extra_test_column", "", NonBlank),
		Create("molecule set", "10", Equal),
		Create("sample_id/name", "S-1", StartsWith),
		Create("qty", "1;2;3", In),
	}

	for _, want := range tests {
		t.Run(want.URLParameterName(""), func(t *testing.T) {
			got, err := ParseParam(want.URLParam())
			require.NoError(t, err)

			assert.Equal(t, want.ColumnName(), got.ColumnName())
			assert.Equal(t, want.FilterType().Suffix, got.FilterType().Suffix)
			assert.Equal(t, want.Value(), got.Value())
		})
	}
}

func TestURLParameterName(t *testing.T) {
	f := Create("qty", "5", LessThanOrEqual)

	assert.Equal(t, "query.qty~lte", f.URLParameterName(""))
	assert.Equal(t, "grid.qty~lte", f.URLParameterName("grid"))
	assert.Equal(t, "5", f.URLParameterValue())
}

func TestParseParam_Errors(t *testing.T) {
	for _, param := range []string{
		"",
		"query.q=foo",
		"query.col~bogus=1",
		"a=1&b=2",
	} {
		_, err := ParseParam(param)
		assert.Error(t, err, param)
	}
}

func TestValues_MultiValued(t *testing.T) {
	f := Create("qty", " 1; 2 ;;3 ", In)

	assert.Equal(t, []string{"1", "2", "3"}, f.Values())
	assert.Equal(t, []string{"x"}, Create("qty", "x", Equal).Values())
}

func TestTypesForJSON(t *testing.T) {
	for jt, types := range typesByJSON {
		got := TypesForJSON(jt)
		assert.Equal(t, types, got)
	}

	boolTypes := TypesForJSON(models.JSONBoolean)
	assert.NotContains(t, boolTypes, Contains)

	// unknown types fall back to string operators
	assert.Equal(t, TypesForJSON(models.JSONString), TypesForJSON("geometry"))
}

func TestBySuffix(t *testing.T) {
	typ, ok := BySuffix("ISNONBLANK")
	require.True(t, ok)
	assert.Equal(t, NonBlank, typ)

	_, ok = BySuffix("nope")
	assert.False(t, ok)
}

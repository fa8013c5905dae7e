package duck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/omnipg/internal/filter"
	"github.com/rebeliceyang/omnipg/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openCSV(t *testing.T) *Duck {
	t.Helper()
	path := writeFile(t, "items.csv", "name,qty,active\nalpha,3,true\nbeta,10,false\nGamma,7,\n")
	dk, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(dk.Close)
	return dk
}

func TestOpen_CSVColumns(t *testing.T) {
	dk := openCSV(t)

	assert.Equal(t, "items.csv", dk.Name())

	cols := dk.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, "name", cols[0].Name)
	assert.Equal(t, "Name", cols[0].ShortCaption)
	assert.Equal(t, models.JSONString, cols[0].JSONType)
	assert.Equal(t, models.JSONInt, cols[1].JSONType)
	assert.Equal(t, models.JSONBoolean, cols[2].JSONType)
}

func TestPage_FilterAndSort(t *testing.T) {
	dk := openCSV(t)

	view := models.View{
		Conditions: []models.Condition{filter.Create("qty", "5", filter.GreaterThan).Condition()},
		Sorts:      []models.Sort{{FieldKey: "qty", Desc: true}},
	}
	data, err := dk.Page(context.Background(), view, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(2), data.TotalRows)
	assert.Equal(t, []string{"name", "qty", "active"}, data.Columns)
	assert.Equal(t, [][]string{
		{"beta", "10", "false"},
		{"Gamma", "7", "NULL"},
	}, data.Rows)
}

func TestPage_Search(t *testing.T) {
	dk := openCSV(t)

	data, err := dk.Page(context.Background(), models.View{Search: []string{"GAM"}}, 0, 10)
	require.NoError(t, err)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "Gamma", data.Rows[0][0])
}

func TestPage_Offset(t *testing.T) {
	dk := openCSV(t)

	view := models.View{Sorts: []models.Sort{{FieldKey: "qty"}}}
	data, err := dk.Page(context.Background(), view, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), data.TotalRows)
	assert.Equal(t, [][]string{{"Gamma", "7", "NULL"}}, data.Rows)
}

func TestPage_BadView(t *testing.T) {
	dk := openCSV(t)

	view := models.View{Conditions: []models.Condition{filter.Create("nope", "1", filter.Equal).Condition()}}
	_, err := dk.Page(context.Background(), view, 0, 10)
	assert.Error(t, err)
}

func TestDistinctValues(t *testing.T) {
	dk := openCSV(t)

	values, err := dk.DistinctValues(context.Background(), "name", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta", "Gamma"}, values)

	values, err = dk.DistinctValues(context.Background(), "active", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"true", "false"}, values)
}

func TestOpen_JSONListColumn(t *testing.T) {
	path := writeFile(t, "tags.json", `[{"id": 1, "tags": ["a", "b"]}, {"id": 2, "tags": ["c"]}]`)
	dk, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer dk.Close()

	cols := dk.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "tags", cols[1].Name)
	assert.True(t, cols[1].MultiValue)
	assert.Equal(t, models.JSONString, cols[1].JSONType)
}

func TestOpen_Unsupported(t *testing.T) {
	path := writeFile(t, "notes.txt", "hello")
	_, err := Open(context.Background(), path, nil)
	assert.ErrorContains(t, err, "unsupported file type")
}

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/rebeliceyang/omnipg/internal/db/query"
	"github.com/rebeliceyang/omnipg/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// Rows writes rows to path as CSV, JSON for a .json path or a workbook for
// an .xlsx path
func Rows(data *models.TableData, path string) error {
	switch {
	case isJSON(path):
		return RowsToJSON(data, path)
	case strings.EqualFold(filepath.Ext(path), ".xlsx"):
		return RowsToXLSX(data, path)
	}
	return RowsToCSV(data, path)
}

// RowsToCSV exports rows with a header line
func RowsToCSV(data *models.TableData, path string) error {
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Columns)
	records = append(records, data.Rows...)
	return writeCSV(records, path)
}

// RowsToJSON exports rows as an array of objects keyed by column. NULL
// cells become JSON null.
func RowsToJSON(data *models.TableData, path string) error {
	objects := make([]map[string]any, 0, len(data.Rows))
	for _, row := range data.Rows {
		obj := make(map[string]any, len(data.Columns))
		for i, col := range data.Columns {
			if i >= len(row) || row[i] == query.NullText {
				obj[col] = nil
				continue
			}
			obj[col] = row[i]
		}
		objects = append(objects, obj)
	}
	return writeJSON(objects, path)
}

// RowsToXLSX exports rows to the first sheet of a new workbook. NULL cells
// are left empty.
func RowsToXLSX(data *models.TableData, path string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(data.Columns))
	for i, c := range data.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for r, row := range data.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			if v != query.NullText {
				cells[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return errors.Wrap(err, "failed to address row")
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return errors.Wrapf(err, "failed to write row %d", r+1)
		}
	}

	return errors.Wrap(f.SaveAs(path), "failed to write workbook")
}

// Views writes saved views to path as CSV, or JSON for a .json path
func Views(views []models.SavedView, path string) error {
	if isJSON(path) {
		return ViewsToJSON(views, path)
	}
	return ViewsToCSV(views, path)
}

// ViewsToCSV exports saved views; params are joined as a query string
func ViewsToCSV(views []models.SavedView, path string) error {
	records := [][]string{
		{"Name", "Description", "Source", "Params", "Created", "Updated", "Last Used", "Usage Count"},
	}

	for _, v := range views {
		lastUsed := ""
		if !v.LastUsed.IsZero() {
			lastUsed = v.LastUsed.Format(timeLayout)
		}

		records = append(records, []string{
			v.Name,
			v.Description,
			v.Source,
			strings.Join(v.Params, "&"),
			v.CreatedAt.Format(timeLayout),
			v.UpdatedAt.Format(timeLayout),
			lastUsed,
			strconv.Itoa(v.UsageCount),
		})
	}

	return writeCSV(records, path)
}

// ViewsToJSON exports saved views as indented JSON
func ViewsToJSON(views []models.SavedView, path string) error {
	if views == nil {
		views = []models.SavedView{}
	}
	return writeJSON(views, path)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func writeCSV(records [][]string, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return errors.Wrap(err, "failed to write CSV")
	}
	return errors.Wrap(os.WriteFile(path, buf.Bytes(), 0o644), "failed to write CSV file")
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write JSON file")
}

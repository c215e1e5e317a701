package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// WriteCSV renders the table as the flat delimited form downstream stages
// consume: a stable "name" first column followed by the table's columns in
// order, null cells as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header := append([]string{"name"}, t.columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write metrics header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range t.rows {
		record[0] = row.Name
		for i, col := range t.columns {
			record[i+1] = formatCell(row.Cell(col))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write metrics row %s: %w", row.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path.
func WriteCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatCell(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return ""
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return ""
	}
	return s.AsString()
}

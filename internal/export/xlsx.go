package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/salesdash/salesdash/internal/sales"
)

// DefaultSheet is the worksheet name used when none is configured.
const DefaultSheet = "Sheet1"

// XLSX writes the selected columns of t into a single worksheet. Numeric
// cells stay numeric.
func XLSX(t sales.Table, sheet string) ([]byte, error) {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("export: xlsx sheet name: %w", err)
		}
	}

	header := make([]interface{}, len(t.Columns))
	for i, column := range t.Columns {
		header[i] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("export: xlsx header: %w", err)
	}

	for i, record := range t.Records {
		row := make([]interface{}, len(t.Columns))
		for j, column := range t.Columns {
			value, _ := record.Value(column)
			row[j] = value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export: xlsx cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export: xlsx row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

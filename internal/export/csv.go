// Package export encodes a sales table as a downloadable artifact.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/salesdash/salesdash/internal/sales"
)

// WriteCSV serialises the selected columns of t, header first, without an
// index column. Dates are written as dd/mm/yyyy.
func WriteCSV(w io.Writer, t sales.Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	for i := range t.Records {
		if err := writer.Write(t.Row(i)); err != nil {
			return fmt.Errorf("export: csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// CSV returns the table as UTF-8 CSV bytes.
func CSV(t sales.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

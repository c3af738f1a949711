package sales

import "time"

// Table is an ordered column view over a set of records.
// Records stay whole; Columns controls what rendering and export expose.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable wraps records with every known column.
func NewTable(records []Record) Table {
	return Table{Columns: append([]string(nil), AllColumns...), Records: records}
}

// Len reports the number of rows.
func (t Table) Len() int {
	return len(t.Records)
}

// HasColumn reports whether column is part of the view.
func (t Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// WithRecords returns a table sharing the column view with different rows.
func (t Table) WithRecords(records []Record) Table {
	return Table{Columns: append([]string(nil), t.Columns...), Records: records}
}

// Row renders the selected columns of record i as text.
func (t Table) Row(i int) []string {
	record := t.Records[i]
	row := make([]string, len(t.Columns))
	for j, column := range t.Columns {
		row[j] = record.Text(column)
	}
	return row
}

// Distinct returns the unique non-empty values of column in first-seen order.
func (t Table) Distinct(column string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, record := range t.Records {
		value := record.Text(column)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}

// DateBounds returns the earliest and latest purchase dates, ignoring zero dates.
func (t Table) DateBounds() (time.Time, time.Time) {
	var minDate, maxDate time.Time
	for _, record := range t.Records {
		d := record.PurchaseDate.Time
		if d.IsZero() {
			continue
		}
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if maxDate.IsZero() || d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate, maxDate
}

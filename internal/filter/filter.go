// Package filter narrows a sales table with user-selected predicates.
package filter

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/salesdash/salesdash/internal/sales"
)

// ErrNoColumns is returned when a column subset names no column of the table.
var ErrNoColumns = errors.New("filter: none of the selected columns exist in the table")

// ErrInvalid wraps predicate validation failures.
var ErrInvalid = errors.New("filter: invalid predicates")

var validate = validator.New()

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `validate:"gte=0"`
	Max float64 `validate:"gte=0,gtefield=Min"`
}

// DateRange is an inclusive calendar-day interval. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set.
func (d DateRange) IsZero() bool {
	return d.From.IsZero() && d.To.IsZero()
}

// Predicates is the full set of active filters. Zero values are no-ops.
type Predicates struct {
	Region   string
	Year     int `validate:"omitempty,min=2000,max=2100"`
	Sellers  []string
	Products []string
	Price    *PriceRange
	Dates    DateRange
	// Columns restricts the output view; nil keeps every column.
	Columns []string
}

// Validate checks numeric and date bounds.
func (p Predicates) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalid, fieldErrs[0].Namespace())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if p.Region != "" && !sales.IsRegion(p.Region) {
		return fmt.Errorf("%w: region %q", ErrInvalid, p.Region)
	}
	if !p.Dates.From.IsZero() && !p.Dates.To.IsZero() && p.Dates.To.Before(p.Dates.From) {
		return fmt.Errorf("%w: date range", ErrInvalid)
	}
	return nil
}

// Apply filters rows, then restricts columns. When the column subset matches
// nothing, the row-filtered table is returned with all its columns together
// with ErrNoColumns.
func Apply(t sales.Table, p Predicates) (sales.Table, error) {
	rows := Rows(t, p)
	if p.Columns == nil {
		return rows, nil
	}
	projected, err := SelectColumns(rows, p.Columns)
	if err != nil {
		return rows, err
	}
	return projected, nil
}

// Rows keeps the records that satisfy every row predicate.
func Rows(t sales.Table, p Predicates) sales.Table {
	matchers := p.matchers()
	if len(matchers) == 0 {
		return t.WithRecords(append([]sales.Record(nil), t.Records...))
	}
	kept := make([]sales.Record, 0, len(t.Records))
	for _, record := range t.Records {
		if matchAll(matchers, record) {
			kept = append(kept, record)
		}
	}
	return t.WithRecords(kept)
}

// SelectColumns restricts the column view to the requested names that exist,
// in the table's own column order.
func SelectColumns(t sales.Table, columns []string) (sales.Table, error) {
	wanted := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		wanted[c] = struct{}{}
	}
	selected := make([]string, 0, len(columns))
	for _, c := range t.Columns {
		if _, ok := wanted[c]; ok {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return t, ErrNoColumns
	}
	return sales.Table{Columns: selected, Records: t.Records}, nil
}

type matcher func(sales.Record) bool

func matchAll(matchers []matcher, record sales.Record) bool {
	for _, m := range matchers {
		if !m(record) {
			return false
		}
	}
	return true
}

func (p Predicates) matchers() []matcher {
	var out []matcher
	if p.Region != "" && sales.CanonicalRegion(p.Region) != sales.RegionAll {
		region := p.Region
		out = append(out, func(r sales.Record) bool { return sales.InRegion(r.Location, region) })
	}
	if p.Year != 0 {
		year := p.Year
		out = append(out, func(r sales.Record) bool {
			return !r.PurchaseDate.IsZero() && r.PurchaseDate.Year() == year
		})
	}
	if len(p.Sellers) > 0 {
		set := toSet(p.Sellers)
		out = append(out, func(r sales.Record) bool { _, ok := set[r.Seller]; return ok })
	}
	if len(p.Products) > 0 {
		set := toSet(p.Products)
		out = append(out, func(r sales.Record) bool { _, ok := set[r.Product]; return ok })
	}
	if p.Price != nil {
		lo, hi := p.Price.Min, p.Price.Max
		out = append(out, func(r sales.Record) bool { return r.Price >= lo && r.Price <= hi })
	}
	if !p.Dates.IsZero() {
		from, to := day(p.Dates.From), day(p.Dates.To)
		out = append(out, func(r sales.Record) bool {
			if r.PurchaseDate.IsZero() {
				return false
			}
			d := day(r.PurchaseDate.Time)
			if !from.IsZero() && d.Before(from) {
				return false
			}
			if !to.IsZero() && d.After(to) {
				return false
			}
			return true
		})
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

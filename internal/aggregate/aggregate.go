// Package aggregate reduces a filtered sales table into the reporting tables
// that feed the dashboard charts. Every reducer keeps first-seen group order
// for equal values.
package aggregate

import (
	"sort"
	"time"

	"github.com/salesdash/salesdash/internal/sales"
)

// Metrics are the headline numbers shown on the metric cards.
type Metrics struct {
	Revenue float64 `json:"receita"`
	Count   int     `json:"quantidade"`
}

// LocationRevenue is revenue per purchase location with its coordinates.
type LocationRevenue struct {
	Location string  `json:"local"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Revenue  float64 `json:"receita"`
}

// MonthlyRevenue is revenue per calendar month.
type MonthlyRevenue struct {
	Year      int        `json:"ano"`
	Month     time.Month `json:"mes"`
	MonthName string     `json:"nome_mes"`
	Revenue   float64    `json:"receita"`
}

// Period returns the month as YYYY-MM.
func (m MonthlyRevenue) Period() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// CategoryRevenue is revenue per product category.
type CategoryRevenue struct {
	Category string  `json:"categoria"`
	Revenue  float64 `json:"receita"`
}

// SellerRevenue is revenue and number of sales per seller.
type SellerRevenue struct {
	Seller  string  `json:"vendedor"`
	Revenue float64 `json:"receita"`
	Count   int     `json:"quantidade"`
}

// Totals sums the price column and counts rows.
func Totals(t sales.Table) Metrics {
	var m Metrics
	for _, r := range t.Records {
		m.Revenue += r.Price
	}
	m.Count = t.Len()
	return m
}

// ByLocation sums price per location, sorted by revenue descending. The
// coordinates come from the first row seen for each location.
func ByLocation(t sales.Table) []LocationRevenue {
	index := make(map[string]int)
	rows := make([]LocationRevenue, 0)
	for _, r := range t.Records {
		i, ok := index[r.Location]
		if !ok {
			i = len(rows)
			index[r.Location] = i
			rows = append(rows, LocationRevenue{Location: r.Location, Lat: r.Lat, Lon: r.Lon})
		}
		rows[i].Revenue += r.Price
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	return rows
}

// ByMonth sums price per calendar month in chronological order, with zero rows
// for months without sales between the first and the last sale. Rows without
// a purchase date are skipped.
func ByMonth(t sales.Table) []MonthlyRevenue {
	index := make(map[int]int)
	rows := make([]MonthlyRevenue, 0)
	for _, r := range t.Records {
		if r.PurchaseDate.IsZero() {
			continue
		}
		year, month := r.PurchaseDate.Year(), r.PurchaseDate.Month()
		key := monthKey(year, month)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, MonthlyRevenue{Year: year, Month: month, MonthName: month.String()})
		}
		rows[i].Revenue += r.Price
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return monthKey(rows[i].Year, rows[i].Month) < monthKey(rows[j].Year, rows[j].Month)
	})
	return fillMonths(rows)
}

// fillMonths inserts zero-revenue rows for the months missing between the
// first and the last row.
func fillMonths(rows []MonthlyRevenue) []MonthlyRevenue {
	if len(rows) < 2 {
		return rows
	}
	filled := make([]MonthlyRevenue, 0, len(rows))
	next := time.Date(rows[0].Year, rows[0].Month, 1, 0, 0, 0, 0, time.UTC)
	for _, row := range rows {
		for monthKey(next.Year(), next.Month()) < monthKey(row.Year, row.Month) {
			filled = append(filled, MonthlyRevenue{Year: next.Year(), Month: next.Month(), MonthName: next.Month().String()})
			next = next.AddDate(0, 1, 0)
		}
		filled = append(filled, row)
		next = next.AddDate(0, 1, 0)
	}
	return filled
}

// ByCategory sums price per category, sorted by revenue descending.
func ByCategory(t sales.Table) []CategoryRevenue {
	index := make(map[string]int)
	rows := make([]CategoryRevenue, 0)
	for _, r := range t.Records {
		i, ok := index[r.Category]
		if !ok {
			i = len(rows)
			index[r.Category] = i
			rows = append(rows, CategoryRevenue{Category: r.Category})
		}
		rows[i].Revenue += r.Price
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	return rows
}

// BySeller sums and counts price per seller in first-seen order.
func BySeller(t sales.Table) []SellerRevenue {
	index := make(map[string]int)
	rows := make([]SellerRevenue, 0)
	for _, r := range t.Records {
		i, ok := index[r.Seller]
		if !ok {
			i = len(rows)
			index[r.Seller] = i
			rows = append(rows, SellerRevenue{Seller: r.Seller})
		}
		rows[i].Revenue += r.Price
		rows[i].Count++
	}
	return rows
}

func monthKey(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

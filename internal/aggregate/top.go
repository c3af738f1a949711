package aggregate

import (
	"sort"
	"time"
)

// TopLocations returns the first n locations of an already sorted slice.
func TopLocations(rows []LocationRevenue, n int) []LocationRevenue {
	return head(rows, n)
}

// TopSellersByRevenue orders sellers by revenue descending and keeps n.
func TopSellersByRevenue(rows []SellerRevenue, n int) []SellerRevenue {
	sorted := append([]SellerRevenue(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Revenue > sorted[j].Revenue })
	return head(sorted, n)
}

// TopSellersByCount orders sellers by number of sales descending and keeps n.
func TopSellersByCount(rows []SellerRevenue, n int) []SellerRevenue {
	sorted := append([]SellerRevenue(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	return head(sorted, n)
}

// YearSeries is one line of the monthly revenue chart: revenue per month of a
// single year, January first. Months without sales are zero.
type YearSeries struct {
	Year   int
	Values [12]float64
}

// ByMonthPerYear turns chronological monthly rows into one series per year.
func ByMonthPerYear(rows []MonthlyRevenue) []YearSeries {
	index := make(map[int]int)
	series := make([]YearSeries, 0)
	for _, row := range rows {
		i, ok := index[row.Year]
		if !ok {
			i = len(series)
			index[row.Year] = i
			series = append(series, YearSeries{Year: row.Year})
		}
		series[i].Values[row.Month-time.January] += row.Revenue
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return series
}

// MonthNames returns the English month names used as chart labels.
func MonthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}

func head[T any](rows []T, n int) []T {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// Package dashboard runs the filter and aggregation steps behind the two
// report screens. Each run is a pure function of the loaded table and the
// screen state.
package dashboard

import (
	"errors"
	"time"

	"github.com/salesdash/salesdash/internal/aggregate"
	"github.com/salesdash/salesdash/internal/filter"
	"github.com/salesdash/salesdash/internal/sales"
)

// Seller chart limits.
const (
	MinSellerLimit     = 2
	MaxSellerLimit     = 10
	DefaultSellerLimit = 5
	TopLocationLimit   = 5
)

// Year slider bounds of the dashboard sidebar.
const (
	FirstYear = 2020
	LastYear  = 2023
)

// Price slider bounds of the raw data screen.
const (
	PriceFloor   = 0
	PriceCeiling = 5000
)

// ColumnErrorMessage is shown when no selected column exists in the table.
const ColumnErrorMessage = "Nenhuma das colunas especificadas existe na tabela."

// DashboardState is the sidebar and tab input of the dashboard screen.
// Region and Year are sent to the endpoint; Sellers filters locally.
type DashboardState struct {
	Region      string
	Year        int
	Sellers     []string
	SellerLimit int
}

// Normalize applies defaults and clamps the seller limit.
func (s DashboardState) Normalize() DashboardState {
	if s.Region == "" {
		s.Region = sales.RegionAll
	} else if canonical := sales.CanonicalRegion(s.Region); canonical != "" {
		s.Region = canonical
	}
	switch {
	case s.SellerLimit == 0:
		s.SellerLimit = DefaultSellerLimit
	case s.SellerLimit < MinSellerLimit:
		s.SellerLimit = MinSellerLimit
	case s.SellerLimit > MaxSellerLimit:
		s.SellerLimit = MaxSellerLimit
	}
	return s
}

// Validate rejects unknown regions and out-of-range years.
func (s DashboardState) Validate() error {
	return filter.Predicates{Region: s.Region, Year: s.Year}.Validate()
}

// DashboardResult carries everything the dashboard screen renders.
type DashboardResult struct {
	State         DashboardState
	Table         sales.Table
	Metrics       aggregate.Metrics
	ByLocation    []aggregate.LocationRevenue
	TopLocations  []aggregate.LocationRevenue
	ByMonth       []aggregate.MonthlyRevenue
	YearSeries    []aggregate.YearSeries
	ByCategory    []aggregate.CategoryRevenue
	BySeller      []aggregate.SellerRevenue
	TopByRevenue  []aggregate.SellerRevenue
	TopByCount    []aggregate.SellerRevenue
	SellerOptions []string
}

// RunDashboard filters the loaded table by seller and computes every chart table.
func RunDashboard(t sales.Table, state DashboardState) DashboardResult {
	state = state.Normalize()
	filtered := filter.Rows(t, filter.Predicates{Sellers: state.Sellers})

	byLocation := aggregate.ByLocation(filtered)
	byMonth := aggregate.ByMonth(filtered)
	bySeller := aggregate.BySeller(filtered)
	return DashboardResult{
		State:         state,
		Table:         filtered,
		Metrics:       aggregate.Totals(filtered),
		ByLocation:    byLocation,
		TopLocations:  aggregate.TopLocations(byLocation, TopLocationLimit),
		ByMonth:       byMonth,
		YearSeries:    aggregate.ByMonthPerYear(byMonth),
		ByCategory:    aggregate.ByCategory(filtered),
		BySeller:      bySeller,
		TopByRevenue:  aggregate.TopSellersByRevenue(bySeller, state.SellerLimit),
		TopByCount:    aggregate.TopSellersByCount(bySeller, state.SellerLimit),
		SellerOptions: t.Distinct(sales.ColSeller),
	}
}

// RawState is the filter input of the raw data screen. Nil slices and a nil
// price range mean no restriction.
type RawState struct {
	Products []string
	Price    *filter.PriceRange
	Dates    filter.DateRange
	Columns  []string
	Filename string
}

// Predicates converts the state into filter predicates.
func (s RawState) Predicates() filter.Predicates {
	return filter.Predicates{
		Products: s.Products,
		Price:    s.Price,
		Dates:    s.Dates,
		Columns:  s.Columns,
	}
}

// Validate checks the price and date bounds.
func (s RawState) Validate() error {
	return s.Predicates().Validate()
}

// RawResult carries the filtered table and the option lists of the raw screen.
type RawResult struct {
	State          RawState
	Table          sales.Table
	Rows           int
	Cols           int
	ColumnError    string
	ProductOptions []string
	ColumnOptions  []string
	MinDate        time.Time
	MaxDate        time.Time
}

// RunRaw applies the raw screen filters. When no selected column exists the
// filtered rows are kept with every column and ColumnError is set.
func RunRaw(t sales.Table, state RawState) RawResult {
	filtered, err := filter.Apply(t, state.Predicates())
	result := RawResult{
		State:          state,
		Table:          filtered,
		Rows:           filtered.Len(),
		Cols:           len(filtered.Columns),
		ProductOptions: t.Distinct(sales.ColProduct),
		ColumnOptions:  append([]string(nil), t.Columns...),
	}
	if errors.Is(err, filter.ErrNoColumns) {
		result.ColumnError = ColumnErrorMessage
	}
	result.MinDate, result.MaxDate = t.DateBounds()
	return result
}

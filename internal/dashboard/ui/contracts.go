package ui

import (
	"html/template"
	"time"

	"github.com/salesdash/salesdash/internal/dashboard/svg"
	"github.com/salesdash/salesdash/internal/sales"
)

// Dashboard tabs.
const (
	TabRevenue = "receita"
	TabCount   = "quantidade"
	TabSellers = "vendedores"
	TabTable   = "tabela"
)

// Tab is one entry of the dashboard tab bar.
type Tab struct {
	ID    string
	Label string
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{ID: TabRevenue, Label: "Receita"},
	{ID: TabCount, Label: "Quantidade de Vendas"},
	{ID: TabSellers, Label: "Vendedores"},
	{ID: TabTable, Label: "Tabela"},
}

// DashboardFilters represents sanitized query filters used by the dashboard.
type DashboardFilters struct {
	Region      string
	AllYears    bool
	Year        int
	Sellers     []string
	SellerLimit int
	Tab         string
}

// MetricCard is a headline number.
type MetricCard struct {
	Label string
	Value string
}

// TableView is the rendered part of a table.
type TableView struct {
	Columns   []string
	Rows      [][]string
	Total     int
	Truncated bool
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Filters       DashboardFilters
	Tabs          []Tab
	Regions       []string
	Years         []int
	SellerOptions []string
	SellerLimits  []int
	Revenue       MetricCard
	Count         MetricCard
	MapSVG        template.HTML
	TopStatesSVG  template.HTML
	MonthlySVG    template.HTML
	CategorySVG   template.HTML
	SellerRevSVG  template.HTML
	SellerCntSVG  template.HTML
	Table         TableView
	// Query repeats the active filters so tab links keep them.
	Query template.URL
}

// RawFilters represents the sanitized raw data screen filters.
type RawFilters struct {
	Products []string
	PriceMin float64
	PriceMax float64
	From     time.Time
	To       time.Time
	Columns  []string
	Filename string
}

// RawViewModel combines the raw data screen state for rendering.
type RawViewModel struct {
	Filters        RawFilters
	ProductOptions []string
	ColumnOptions  []string
	MinDate        time.Time
	MaxDate        time.Time
	PriceFloor     int
	PriceCeiling   int
	ColumnError    string
	Rows           int
	Cols           int
	Table          TableView
	ExportFields   []Field
}

// Field is a hidden form input carrying an active filter.
type Field struct {
	Name  string
	Value string
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Lines(width, height int, series []svg.Series, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, values []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// GeoRenderer abstracts SVG geo scatter rendering for the dashboard.
type GeoRenderer interface {
	GeoScatter(width, height int, points []svg.GeoPoint, opts svg.GeoOpts) (template.HTML, error)
}

// Renderer draws charts with the svg package.
type Renderer struct{}

// Lines implements LineRenderer.
func (Renderer) Lines(width, height int, series []svg.Series, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Lines(width, height, series, labels, opts)
}

// Bars implements BarRenderer.
func (Renderer) Bars(width, height int, values []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, values, labels, opts)
}

// GeoScatter implements GeoRenderer.
func (Renderer) GeoScatter(width, height int, points []svg.GeoPoint, opts svg.GeoOpts) (template.HTML, error) {
	return svg.GeoScatter(width, height, points, opts)
}

// NewTableView renders at most limit rows of t. A limit of zero renders all rows.
func NewTableView(t sales.Table, limit int) TableView {
	n := t.Len()
	if limit > 0 && n > limit {
		n = limit
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, t.Row(i))
	}
	return TableView{
		Columns:   append([]string(nil), t.Columns...),
		Rows:      rows,
		Total:     t.Len(),
		Truncated: n < t.Len(),
	}
}

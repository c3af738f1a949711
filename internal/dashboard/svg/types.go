package svg

// Series is one named line of a multi-line chart.
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	Color       string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	// Horizontal draws one row per label, largest value first.
	Horizontal bool
	// LabelWidth reserves room for row labels in horizontal mode.
	LabelWidth float64
}

// GeoPoint is a located value drawn as a bubble.
type GeoPoint struct {
	Label string
	Lat   float64
	Lon   float64
	Value float64
}

// GeoOpts customises the geo scatter renderer.
type GeoOpts struct {
	Title        string
	Description  string
	Color        string
	OutlineColor string
	Padding      float64
	MaxRadius    float64
}

// Defaults for the dashboard charts.
const (
	DefaultWidth     = 720
	DefaultHeight    = 280
	DefaultPadding   = 32.0
	DefaultTicks     = 5
	DefaultMaxRadius = 28.0
)

// Palette assigns colors to series without an explicit one.
var Palette = []string{"#2563eb", "#f97316", "#16a34a", "#db2777", "#7c3aed", "#0891b2"}

func paletteColor(i int) string {
	return Palette[i%len(Palette)]
}

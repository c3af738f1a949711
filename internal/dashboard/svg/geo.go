package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bounding box of Brazil used by the equirectangular projection.
const (
	geoNorth = 5.5
	geoSouth = -34.0
	geoWest  = -74.0
	geoEast  = -34.5
)

// GeoScatter draws one bubble per point on a lat/lon plane, with bubble area
// proportional to the value.
func GeoScatter(width, height int, points []GeoPoint, opts GeoOpts) (template.HTML, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("svg: points required")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	maxRadius := opts.MaxRadius
	if maxRadius <= 0 {
		maxRadius = DefaultMaxRadius
	}
	color := fallback(opts.Color, "rgba(37,99,235,0.55)")
	outline := fallback(opts.OutlineColor, "#1e3a8a")

	plotWidth := float64(width) - 2*padding
	plotHeight := float64(height) - 2*padding
	if plotWidth <= 0 || plotHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	maxVal := 0.0
	for _, p := range points {
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}

	titleID := makeID(opts.Title, "geo-title")
	descID := makeID(opts.Title, "geo-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Mapa"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Valores por localização"))))
	b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"#f8fafc\" stroke=\"#e2e8f0\"></rect>", padding, padding, plotWidth, plotHeight))

	for _, p := range points {
		x, y := project(p.Lat, p.Lon, padding, plotWidth, plotHeight)
		r := 2.0
		if maxVal > 0 && p.Value > 0 {
			r = math.Max(r, maxRadius*math.Sqrt(p.Value/maxVal))
		}
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"><title>%s</title></circle>", x, y, r, color, outline, template.HTMLEscapeString(p.Label+": "+formatTick(p.Value))))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#0f172a\" font-size=\"9\" text-anchor=\"middle\">%s</text>", x, y+3, template.HTMLEscapeString(p.Label)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func project(lat, lon, padding, width, height float64) (float64, float64) {
	lat = math.Max(geoSouth, math.Min(geoNorth, lat))
	lon = math.Max(geoWest, math.Min(geoEast, lon))
	x := padding + (lon-geoWest)/(geoEast-geoWest)*width
	y := padding + (geoNorth-lat)/(geoNorth-geoSouth)*height
	return x, y
}

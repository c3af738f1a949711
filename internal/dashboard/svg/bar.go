package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders a single-series bar chart. Vertical bars follow label order;
// horizontal mode draws one row per label top to bottom.
func Bars(width, height int, values []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
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
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")
	color := fallback(opts.Color, "#0ea5e9")

	left := padding + 24
	if opts.Horizontal {
		labelWidth := opts.LabelWidth
		if labelWidth <= 0 {
			labelWidth = 120
		}
		left = padding + labelWidth
	}
	chartWidth := float64(width) - left - padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	_, maxVal := bounds(values)
	if maxVal <= 0 || almostEqual(maxVal, 0) {
		maxVal = 1
	}

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Gráfico de barras"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Comparação por categoria"))))

	if opts.Horizontal {
		scale := chartWidth / maxVal
		for i := 0; i <= tickCount; i++ {
			ratio := float64(i) / float64(tickCount)
			x := left + ratio*chartWidth
			b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", x, padding, x, padding+chartHeight, gridColor))
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, padding+chartHeight+14, axisColor, template.HTMLEscapeString(formatTick(maxVal*ratio))))
		}
		b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Eixos\">", axisColor))
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", left, padding, left, padding+chartHeight))
		b.WriteString("</g>")

		rowHeight := chartHeight / float64(len(labels))
		for i, label := range labels {
			y := padding + float64(i)*rowHeight
			w := clampLength(values[i] * scale)
			b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s\"><title>%s</title></rect>", left, y+rowHeight*0.15, w, rowHeight*0.7, color, template.HTMLEscapeString(label), template.HTMLEscapeString(label+": "+formatTick(values[i]))))
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", left-6, y+rowHeight/2+4, axisColor, template.HTMLEscapeString(label)))
		}
		b.WriteString("</svg>")
		return template.HTML(b.String()), nil
	}

	scale := chartHeight / maxVal
	bottom := padding + chartHeight
	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := bottom - ratio*chartHeight
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", left, y, left+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", left-6, y+4, axisColor, template.HTMLEscapeString(formatTick(maxVal*ratio))))
	}
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Eixos\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", left, padding, left, bottom))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", left, bottom, left+chartWidth, bottom))
	b.WriteString("</g>")

	groupWidth := chartWidth / float64(len(labels))
	for i, label := range labels {
		h := clampLength(values[i] * scale)
		x := left + float64(i)*groupWidth
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s\"><title>%s</title></rect>", x+groupWidth*0.15, bottom-h, groupWidth*0.7, h, color, template.HTMLEscapeString(label), template.HTMLEscapeString(label+": "+formatTick(values[i]))))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x+groupWidth/2, bottom+14, axisColor, template.HTMLEscapeString(label)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func clampLength(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Package render draws dashboard data as images.
package render

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/newthinker/alphapulse/internal/core"
)

// maxTicks bounds the number of labelled x-axis ticks.
const maxTicks = 6

var (
	upColor   = drawing.ColorFromHex("10b981") // emerald-500
	downColor = drawing.ColorFromHex("f43f5e") // rose-500
)

// PriceChart renders points as a PNG line chart titled with symbol.
func PriceChart(symbol string, points []core.ChartPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]float64, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = float64(i)
		yValues[i] = p.Value
	}

	color := upColor
	if points[len(points)-1].Value < points[0].Value {
		color = downColor
	}

	graph := chart.Chart{
		Title:  symbol,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: ticks(points),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: symbol,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2.5,
					FillColor:   color.WithAlpha(40),
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// ticks labels at most maxTicks evenly spaced points, always including the
// last one.
func ticks(points []core.ChartPoint) []chart.Tick {
	step := (len(points) + maxTicks - 1) / maxTicks
	if step < 1 {
		step = 1
	}
	out := make([]chart.Tick, 0, maxTicks+1)
	for i := 0; i < len(points); i += step {
		out = append(out, chart.Tick{Value: float64(i), Label: points[i].Time})
	}
	last := len(points) - 1
	if out[len(out)-1].Value != float64(last) {
		out = append(out, chart.Tick{Value: float64(last), Label: points[last].Time})
	}
	return out
}

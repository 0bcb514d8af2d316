package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/camuig/krx-stock-report/internal/market"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// WriteChart draws the closing price of every record against its date as PNG.
func WriteChart(w io.Writer, h market.History) error {
	if len(h) == 0 {
		return fmt.Errorf("chart: empty history")
	}

	p := plot.New()
	p.X.Label.Text = "date"
	p.Y.Label.Text = "close"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(h))
	for i, r := range h {
		pts[i].X = float64(r.Date.Unix())
		pts[i].Y = float64(r.Close)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("chart line: %w", err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)

	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("chart canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

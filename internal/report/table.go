package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/camuig/krx-stock-report/internal/market"
)

const (
	tableWidth  = 15 * vg.Inch
	tableHeight = 4 * vg.Inch
	tableDPI    = 100
)

var (
	headerFill = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	gridLine   = draw.LineStyle{Color: color.Gray{Y: 90}, Width: vg.Points(0.75)}
)

// TableRow formats a record into the table's column order.
func TableRow(r market.Record) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		FormatWon(r.Close),
		FormatWon(r.Diff),
		FormatWon(r.Open),
		FormatWon(r.High),
		FormatWon(r.Low),
		FormatWon(r.Volume),
	}
}

// WriteTable draws rows as a centred grid with a header line of field names.
func WriteTable(w io.Writer, rows market.History) error {
	if len(rows) == 0 {
		return fmt.Errorf("table: no rows")
	}

	img := vgimg.NewWith(vgimg.UseWH(tableWidth, tableHeight), vgimg.UseDPI(tableDPI))
	dc := draw.New(img)

	cols := len(market.Fields)
	lines := len(rows) + 1
	cellW := tableWidth / vg.Length(cols)
	cellH := tableHeight / vg.Length(lines)

	fnt := plot.DefaultFont
	fnt.Size = cellH * 0.4
	style := text.Style{
		Color:   color.Black,
		Font:    fnt,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}

	// row 0 is the header, drawn at the top
	top := func(line int) vg.Length { return tableHeight - vg.Length(line)*cellH }

	dc.FillPolygon(headerFill, []vg.Point{
		{X: 0, Y: top(1)}, {X: tableWidth, Y: top(1)},
		{X: tableWidth, Y: top(0)}, {X: 0, Y: top(0)},
	})

	cells := make([][]string, 0, lines)
	cells = append(cells, market.Fields)
	for _, r := range rows {
		cells = append(cells, TableRow(r))
	}
	for i, line := range cells {
		y := top(i) - cellH/2
		for j, cell := range line {
			x := vg.Length(j)*cellW + cellW/2
			dc.FillText(style, vg.Point{X: x, Y: y}, cell)
		}
	}

	for i := 0; i <= lines; i++ {
		y := top(i)
		dc.StrokeLine2(gridLine, 0, y, tableWidth, y)
	}
	for j := 0; j <= cols; j++ {
		x := vg.Length(j) * cellW
		dc.StrokeLine2(gridLine, x, 0, x, tableHeight)
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

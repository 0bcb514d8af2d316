// Package export writes the cleaned price history as a spreadsheet.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/camuig/krx-stock-report/internal/market"
)

const dateFormat = "yyyy-mm-dd"

// WorkbookPath is where the workbook for company is written inside dir.
func WorkbookPath(dir, company string) string {
	return filepath.Join(dir, company+"_prices.xlsx")
}

// WriteWorkbook saves h, ascending, to a single sheet named after company.
// Characters a sheet name cannot hold become underscores and the name is
// truncated to 31 characters.
func WriteWorkbook(path, company string, h market.History) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(company)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(market.Fields))
	for i, name := range market.Fields {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateFormat)})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	numStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}

	for i, r := range h {
		row := []interface{}{r.Date, r.Close, r.Diff, r.Open, r.High, r.Low, r.Volume}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(h) > 0 {
		last := len(h) + 1
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("A%d", last), dateStyle); err != nil {
			return fmt.Errorf("style dates: %w", err)
		}
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("G%d", last), numStyle); err != nil {
			return fmt.Errorf("style numbers: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "G", 14); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create workbook dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// sheetNameReplacer blanks the characters a sheet name may not contain.
var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

func sheetName(company string) string {
	r := []rune(strings.Trim(sheetNameReplacer.Replace(company), "'"))
	if len(r) == 0 {
		return "prices"
	}
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}

func strPtr(s string) *string { return &s }

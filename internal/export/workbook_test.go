package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/camuig/krx-stock-report/internal/market"
)

func TestWriteWorkbook(t *testing.T) {
	h := market.History{
		{Date: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Close: 72000, Diff: -500, Open: 72500, High: 72600, Low: 71900, Volume: 1000},
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Close: 73000, Diff: 1000, Open: 72100, High: 73100, Low: 72000, Volume: 2000},
	}
	path := WorkbookPath(filepath.Join(t.TempDir(), "out"), "삼성전자")
	assert.Equal(t, "삼성전자_prices.xlsx", filepath.Base(path))

	require.NoError(t, WriteWorkbook(path, "삼성전자", h))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"삼성전자"}, f.GetSheetList())

	rows, err := f.GetRows("삼성전자", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, market.Fields, rows[0])
	assert.Equal(t, "72000", rows[1][1])
	assert.Equal(t, "-500", rows[1][2])
	assert.Equal(t, "2000", rows[2][6])

	date, err := f.GetCellValue("삼성전자", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", date)
}

func TestWriteWorkbookEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(path, "", nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"prices"}, f.GetSheetList())
}

func TestWriteWorkbookSanitizesSheetName(t *testing.T) {
	h := market.History{{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Close: 1000, Open: 1000, High: 1000, Low: 1000, Volume: 1}}
	path := filepath.Join(t.TempDir(), "odd.xlsx")
	require.NoError(t, WriteWorkbook(path, `A/B:C\D?E*F[G]`, h))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"A_B_C_D_E_F_G_"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "삼성전자", sheetName("삼성전자"))
	assert.Equal(t, "a_b_c", sheetName("a/b:c"))
	assert.Equal(t, "x", sheetName("'x'"))
	assert.Equal(t, "prices", sheetName("''"))
}

func TestSheetNameTruncates(t *testing.T) {
	long := "가나다라마바사아자차카타파하가나다라마바사아자차카타파하가나다라마"
	assert.Len(t, []rune(sheetName(long)), 31)
}

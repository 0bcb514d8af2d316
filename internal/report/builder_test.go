package report

import (
	"archive/zip"
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/krx-stock-report/internal/config"
	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/market"
)

func history(n int) market.History {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	h := make(market.History, n)
	for i := range h {
		h[i] = market.Record{
			Date:   start.AddDate(0, 0, i),
			Close:  int64(72000 + i*100),
			Diff:   100,
			Open:   int64(71900 + i*100),
			High:   int64(72500 + i*100),
			Low:    int64(71500 + i*100),
			Volume: int64(1000000 + i),
		}
	}
	return h
}

func newBuilder(dir string) *Builder {
	cfg := &config.Config{Report: config.ReportConfig{Dir: dir, Title: "주식 보고서", TableRows: 10}}
	return NewBuilder(cfg, logger.Discard())
}

func TestBuildWritesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "res", "stock_report")
	b := newBuilder(dir)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	h := history(13)
	art, err := b.Build(h, "삼성전자", now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "삼성전자_chart.png"), art.Chart)
	assert.Equal(t, filepath.Join(dir, "삼성전자_table.png"), art.Table)
	assert.Equal(t, filepath.Join(dir, "stock_report_삼성전자_2024-03-15.pptx"), art.Presentation)
	assert.Equal(t, "삼성전자, 73,200원에 거래 마감", art.Headline)

	for _, path := range []string{art.Chart, art.Table} {
		f, err := os.Open(path)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(f)
		f.Close()
		require.NoError(t, err, path)
		assert.Greater(t, cfg.Width, cfg.Height, path)
	}

	zr, err := zip.OpenReader(art.Presentation)
	require.NoError(t, err)
	defer zr.Close()

	var slides []string
	contents := map[string]string{}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") {
			slides = append(slides, f.Name)
			rc, err := f.Open()
			require.NoError(t, err)
			var buf bytes.Buffer
			_, err = buf.ReadFrom(rc)
			rc.Close()
			require.NoError(t, err)
			contents[f.Name] = buf.String()
		}
	}
	assert.Len(t, slides, 2)
	assert.Contains(t, contents["ppt/slides/slide1.xml"], "주식 보고서")
	assert.Contains(t, contents["ppt/slides/slide1.xml"], "보고서 작성일 : 20240315")
	assert.Contains(t, contents["ppt/slides/slide2.xml"], art.Headline)
}

func TestBuildEmptyHistory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	_, err := newBuilder(dir).Build(nil, "삼성전자", time.Now())
	require.Error(t, err)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildSingleRecord(t *testing.T) {
	_, err := newBuilder(t.TempDir()).Build(history(1), "x", time.Now())
	assert.NoError(t, err)
}

func TestTableRow(t *testing.T) {
	r := market.Record{
		Date:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Close:  73000,
		Diff:   -1200,
		Open:   74200,
		High:   74500,
		Low:    72900,
		Volume: 12345678,
	}
	assert.Equal(t,
		[]string{"2024-03-15", "73,000", "-1,200", "74,200", "74,500", "72,900", "12,345,678"},
		TableRow(r))
}

func TestFormatWon(t *testing.T) {
	assert.Equal(t, "0", FormatWon(0))
	assert.Equal(t, "999", FormatWon(999))
	assert.Equal(t, "1,000", FormatWon(1000))
	assert.Equal(t, "-1,234,567", FormatWon(-1234567))
}

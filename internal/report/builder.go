package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/camuig/krx-stock-report/internal/config"
	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/market"
	"github.com/camuig/krx-stock-report/internal/pptx"
)

// Artifacts are the files one report run leaves on disk.
type Artifacts struct {
	Chart        string
	Table        string
	Presentation string
	// Headline is the title of the picture slide.
	Headline string
}

type Builder struct {
	dir       string
	title     string
	tableRows int
	logger    *logger.Logger
}

func NewBuilder(cfg *config.Config, log *logger.Logger) *Builder {
	return &Builder{
		dir:       cfg.Report.Dir,
		title:     cfg.Report.Title,
		tableRows: cfg.Report.TableRows,
		logger:    log,
	}
}

// Chart, table and picture boxes of the second slide.
var (
	chartBox = pptx.Rect{X: pptx.Inches(0.5), Y: pptx.Inches(2), W: pptx.Inches(9), H: pptx.Inches(2.5)}
	tableBox = pptx.Rect{X: pptx.Inches(-1), Y: pptx.Inches(4), W: pptx.Inches(12), H: pptx.Inches(3)}
)

func ChartPath(dir, company string) string {
	return filepath.Join(dir, company+"_chart.png")
}

func TablePath(dir, company string) string {
	return filepath.Join(dir, company+"_table.png")
}

func PresentationPath(dir, company string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("stock_report_%s_%s.pptx", company, now.Format("2006-01-02")))
}

// Headline is the picture slide title, e.g. "삼성전자, 73,000원에 거래 마감".
func Headline(company string, close int64) string {
	return fmt.Sprintf("%s, %s원에 거래 마감", company, FormatWon(close))
}

// Build renders the chart and table images and assembles the presentation.
// now stamps the file name and the title slide.
func (b *Builder) Build(h market.History, company string, now time.Time) (Artifacts, error) {
	latest, ok := h.Latest()
	if !ok {
		return Artifacts{}, fmt.Errorf("build report for %s: empty history", company)
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create report dir: %w", err)
	}

	art := Artifacts{
		Chart:        ChartPath(b.dir, company),
		Table:        TablePath(b.dir, company),
		Presentation: PresentationPath(b.dir, company, now),
		Headline:     Headline(company, latest.Close),
	}

	var chart bytes.Buffer
	if err := WriteChart(&chart, h); err != nil {
		return art, err
	}
	if err := os.WriteFile(art.Chart, chart.Bytes(), 0o644); err != nil {
		return art, fmt.Errorf("save chart: %w", err)
	}
	b.logger.Debug("chart saved", "path", art.Chart, "points", len(h))

	rows := h.Recent(b.tableRows)
	var table bytes.Buffer
	if err := WriteTable(&table, rows); err != nil {
		return art, err
	}
	if err := os.WriteFile(art.Table, table.Bytes(), 0o644); err != nil {
		return art, fmt.Errorf("save table: %w", err)
	}
	b.logger.Debug("table saved", "path", art.Table, "rows", len(rows))

	deck := pptx.New()
	deck.AddTitleSlide(b.title, "보고서 작성일 : "+now.Format("20060102"))
	slide := deck.AddTitleOnlySlide(art.Headline)
	if _, err := slide.AddPicture(art.Chart, chartBox); err != nil {
		return art, err
	}
	pic, err := slide.AddPicture(art.Table, tableBox)
	if err != nil {
		return art, err
	}
	pic.SendToBack()

	if err := deck.Save(art.Presentation); err != nil {
		return art, err
	}
	b.logger.Info("presentation saved", "path", art.Presentation, "slides", deck.SlideCount())

	return art, nil
}

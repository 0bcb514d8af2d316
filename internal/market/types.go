package market

import (
	"context"
	"time"
)

// Canonical field names, in source column order.
const (
	FieldDate   = "date"
	FieldClose  = "close"
	FieldDiff   = "diff"
	FieldOpen   = "open"
	FieldHigh   = "high"
	FieldLow    = "low"
	FieldVolume = "volume"
)

// Fields lists the canonical names in display order.
var Fields = []string{FieldDate, FieldClose, FieldDiff, FieldOpen, FieldHigh, FieldLow, FieldVolume}

// SourceFields maps the quote site's column headers to canonical names.
var SourceFields = map[string]string{
	"날짜":  FieldDate,
	"종가":  FieldClose,
	"전일비": FieldDiff,
	"시가":  FieldOpen,
	"고가":  FieldHigh,
	"저가":  FieldLow,
	"거래량": FieldVolume,
}

// RawRecord is one scraped row, every cell as text. An empty cell is missing.
type RawRecord struct {
	Date   string
	Close  string
	Diff   string
	Open   string
	High   string
	Low    string
	Volume string
}

// Record is a cleaned daily quote. Prices are whole won.
type Record struct {
	Date   time.Time
	Close  int64
	Diff   int64
	Open   int64
	High   int64
	Low    int64
	Volume int64
}

// PriceSource yields the raw daily history of one ticker code.
type PriceSource interface {
	FetchHistory(ctx context.Context, code string) ([]RawRecord, error)
}

// Set assigns a cell by canonical field name. Unknown names are ignored.
func (r *RawRecord) Set(field, value string) {
	switch field {
	case FieldDate:
		r.Date = value
	case FieldClose:
		r.Close = value
	case FieldDiff:
		r.Diff = value
	case FieldOpen:
		r.Open = value
	case FieldHigh:
		r.High = value
	case FieldLow:
		r.Low = value
	case FieldVolume:
		r.Volume = value
	}
}

func (r RawRecord) cells() []string {
	return []string{r.Date, r.Close, r.Diff, r.Open, r.High, r.Low, r.Volume}
}

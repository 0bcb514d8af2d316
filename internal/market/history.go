package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// History is a cleaned price series, ascending by date.
type History []Record

// Latest returns the most recent record.
func (h History) Latest() (Record, bool) {
	if len(h) == 0 {
		return Record{}, false
	}
	return h[len(h)-1], true
}

// Recent returns the n most recent records, newest first. The receiver is
// left untouched.
func (h History) Recent(n int) History {
	if n <= 0 || len(h) == 0 {
		return History{}
	}
	if n > len(h) {
		n = len(h)
	}
	out := make(History, 0, n)
	for i := len(h) - 1; i >= len(h)-n; i-- {
		out = append(out, h[i])
	}
	return out
}

// Summary condenses a history for the email body and the commentary prompt.
type Summary struct {
	From        time.Time
	To          time.Time
	Days        int
	FirstClose  int64
	LastClose   int64
	LastDiff    int64
	High        int64
	HighDate    time.Time
	Low         int64
	LowDate     time.Time
	ChangePct   decimal.Decimal
	TotalVolume int64
}

// Summarize returns the zero Summary for an empty history.
func Summarize(h History) Summary {
	if len(h) == 0 {
		return Summary{}
	}
	first, last := h[0], h[len(h)-1]
	s := Summary{
		From:       first.Date,
		To:         last.Date,
		Days:       len(h),
		FirstClose: first.Close,
		LastClose:  last.Close,
		LastDiff:   last.Diff,
		High:       first.High,
		HighDate:   first.Date,
		Low:        first.Low,
		LowDate:    first.Date,
	}
	for _, r := range h {
		if r.High > s.High {
			s.High, s.HighDate = r.High, r.Date
		}
		if r.Low < s.Low {
			s.Low, s.LowDate = r.Low, r.Date
		}
		s.TotalVolume += r.Volume
	}
	s.ChangePct = PercentChange(first.Close, last.Close)
	return s
}

// PercentChange is (to-from)/from*100 rounded to two places; zero when from is zero.
func PercentChange(from, to int64) decimal.Decimal {
	if from == 0 {
		return decimal.Zero
	}
	f := decimal.NewFromInt(from)
	return decimal.NewFromInt(to).Sub(f).Div(f).Mul(decimal.NewFromInt(100)).Round(2)
}

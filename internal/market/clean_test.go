package market

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(date string, close int) RawRecord {
	return RawRecord{
		Date:   date,
		Close:  fmt.Sprintf("%d", close),
		Diff:   "상승 100",
		Open:   fmt.Sprintf("%d", close-50),
		High:   fmt.Sprintf("%d", close+100),
		Low:    fmt.Sprintf("%d", close-100),
		Volume: "12,345",
	}
}

// threePages mimics a fetch of three pages of five rows each, newest first,
// with two incomplete rows scattered across the pages.
func threePages() []RawRecord {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var out []RawRecord
	for i := 14; i >= 0; i-- {
		out = append(out, raw(start.AddDate(0, 0, i).Format("2006.01.02"), 500000+i*1000))
	}
	out[2].Volume = ""
	out[11] = RawRecord{}
	return out
}

func TestCleanThreePagesScenario(t *testing.T) {
	h, err := Clean(threePages())
	require.NoError(t, err)
	require.Len(t, h, 13)

	for i := 1; i < len(h); i++ {
		assert.False(t, h[i].Date.Before(h[i-1].Date), "not ascending at %d", i)
	}
	for _, r := range h {
		assert.False(t, r.Date.IsZero())
		assert.NotZero(t, r.Close)
		assert.NotZero(t, r.Open)
		assert.NotZero(t, r.High)
		assert.NotZero(t, r.Low)
		assert.Equal(t, int64(12345), r.Volume)
		assert.Equal(t, int64(100), r.Diff)
	}
}

func TestCleanDropsWhitespaceOnlyCells(t *testing.T) {
	r := raw("2024.01.02", 1000)
	r.Open = "   "
	h, err := Clean([]RawRecord{r})
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestCleanFailsOnNonNumeric(t *testing.T) {
	r := raw("2024.01.02", 1000)
	r.High = "n/a"
	_, err := Clean([]RawRecord{r})
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, FieldHigh, pe.Field)
	assert.Equal(t, "n/a", pe.Value)
}

func TestCleanFailsOnBadDate(t *testing.T) {
	_, err := Clean([]RawRecord{raw("yesterday", 1000)})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, FieldDate, pe.Field)
}

func TestCleanDropsDuplicateDates(t *testing.T) {
	first := raw("2024.01.02", 1000)
	dup := raw("2024.01.02", 2000)
	h, err := Clean([]RawRecord{first, raw("2024.01.03", 1500), dup})
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, int64(1000), h[0].Close)
}

func TestCleanLimitDays(t *testing.T) {
	up := raw("2024.01.03", 130000)
	up.Diff = "상한가 30,000"
	down := raw("2024.01.02", 100000)
	down.Diff = "하한가 42,000"

	h, err := Clean([]RawRecord{up, down})
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, int64(-42000), h[0].Diff)
	assert.Equal(t, int64(30000), h[1].Diff)
}

func TestCleanEmpty(t *testing.T) {
	h, err := Clean(nil)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestParseChange(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1,500", 1500, false},
		{"-300", -300, false},
		{"상승 1,000", 1000, false},
		{"상한 29,900", 29900, false},
		{"상한가 30,000", 30000, false},
		{"하한가 21,000", -21000, false},
		{"하한가21,000", -21000, false},
		{"하락 500", -500, false},
		{"하락500", -500, false},
		{"하한 -7,000", -7000, false},
		{"보합", 0, false},
		{"보합 0", 0, false},
		{"보합 10", 0, true},
		{"up 10", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseChange(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseInt(t *testing.T) {
	v, err := ParseInt(" 1,234,567 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1234567), v)

	v, err = ParseInt("42.0")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = ParseInt("4.5")
	assert.Error(t, err)
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024.07.09", "2024-07-09", "2024/07/09", "20240709", " 2024.07.09 "} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}
}

package market

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02", "20060102"}

// ParseError reports a retained cell that could not be coerced.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNotNumeric = errors.New("not numeric")

// Complete reports whether every field of the record carries a value.
func (r RawRecord) Complete() bool {
	for _, c := range r.cells() {
		if strings.TrimSpace(c) == "" {
			return false
		}
	}
	return true
}

// Clean drops incomplete records, coerces the rest and returns them ascending
// by date. When two records share a date, the first in fetch order is kept.
func Clean(raw []RawRecord) (History, error) {
	out := make(History, 0, len(raw))
	seen := make(map[time.Time]bool, len(raw))

	for _, r := range raw {
		if !r.Complete() {
			continue
		}
		rec, err := parseRecord(r)
		if err != nil {
			return nil, err
		}
		if seen[rec.Date] {
			continue
		}
		seen[rec.Date] = true
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func parseRecord(r RawRecord) (Record, error) {
	var rec Record
	var err error

	if rec.Date, err = ParseDate(r.Date); err != nil {
		return Record{}, err
	}

	ints := []struct {
		field string
		value string
		dst   *int64
		parse func(string) (int64, error)
	}{
		{FieldClose, r.Close, &rec.Close, ParseInt},
		{FieldDiff, r.Diff, &rec.Diff, ParseChange},
		{FieldOpen, r.Open, &rec.Open, ParseInt},
		{FieldHigh, r.High, &rec.High, ParseInt},
		{FieldLow, r.Low, &rec.Low, ParseInt},
		{FieldVolume, r.Volume, &rec.Volume, ParseInt},
	}
	for _, f := range ints {
		v, err := f.parse(f.value)
		if err != nil {
			return Record{}, &ParseError{Field: f.field, Value: f.value, Err: err}
		}
		*f.dst = v
	}
	return rec, nil
}

// ParseDate parses a calendar date in any of the source layouts, at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Field: FieldDate, Value: s, Err: errors.New("unknown date layout")}
}

// ParseInt parses an integer cell, tolerating thousands separators and a
// trailing ".0" left by spreadsheet-style exports.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimSuffix(s, ".0")
	if s == "" {
		return 0, errNotNumeric
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errNotNumeric
	}
	return v, nil
}

// changeWords maps the direction labels the quote site prefixes to the
// day-over-day change onto a sign.
var changeWords = []struct {
	word string
	sign int64
}{
	{"상한가", 1},
	{"상한", 1},
	{"상승", 1},
	{"하한가", -1},
	{"하한", -1},
	{"하락", -1},
	{"보합", 0},
}

// ParseChange parses the change-from-previous-close cell. The cell is either a
// plain signed number or a direction word followed by the magnitude.
func ParseChange(s string) (int64, error) {
	s = strings.TrimSpace(s)
	for _, cw := range changeWords {
		if !strings.HasPrefix(s, cw.word) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(s, cw.word))
		if cw.sign == 0 {
			if rest == "" {
				return 0, nil
			}
			v, err := ParseInt(rest)
			if err != nil {
				return 0, err
			}
			if v != 0 {
				return 0, errNotNumeric
			}
			return 0, nil
		}
		v, err := ParseInt(rest)
		if err != nil {
			return 0, err
		}
		return cw.sign * abs(v), nil
	}
	return ParseInt(s)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

package core

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// AllTimeLabel is the wire and display form of the unbounded period.
const AllTimeLabel = "All Time"

// Period is either the all-time marker (zero value) or a single calendar
// year. On the wire it is the string "All Time" or a bare year number,
// matching the feed contract of the upstream app.
type Period struct {
	year int
}

// AllTime returns the unbounded period.
func AllTime() Period {
	return Period{}
}

// YearOf returns the period covering one calendar year.
func YearOf(year int) Period {
	return Period{year: year}
}

// IsAllTime reports whether the period is unbounded.
func (p Period) IsAllTime() bool {
	return p.year == 0
}

// Year returns the calendar year, or 0 for all time.
func (p Period) Year() int {
	return p.year
}

func (p Period) String() string {
	if p.IsAllTime() {
		return AllTimeLabel
	}
	return strconv.Itoa(p.year)
}

// Matches reports whether a transaction falls inside the period.
//
// Year windows run from Jan 1 00:00:00 through Dec 31 23:59:59 in the
// process-local zone; callers on both ends of the feed must agree on the
// zone for outputs to line up. Transactions with a zero (missing or
// unparseable) date never match a year period but always match all time.
func (p Period) Matches(tx Transaction) bool {
	if p.IsAllTime() {
		return true
	}
	if tx.Date.IsZero() {
		return false
	}
	start := time.Date(p.year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(p.year, time.December, 31, 23, 59, 59, 0, time.Local)
	return !tx.Date.Before(start) && !tx.Date.After(end)
}

// ParsePeriod interprets a query or wire value. A year number selects that
// year; "All Time", the empty string and anything non-numeric select all
// time. Selection degrades rather than erroring, like the rest of the
// boundary.
func ParsePeriod(s string) Period {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil && y > 0 {
		return YearOf(y)
	}
	return AllTime()
}

// MarshalJSON emits "All Time" or a bare year number.
func (p Period) MarshalJSON() ([]byte, error) {
	if p.IsAllTime() {
		return json.Marshal(AllTimeLabel)
	}
	return json.Marshal(p.year)
}

// UnmarshalJSON accepts either form emitted by MarshalJSON.
func (p *Period) UnmarshalJSON(data []byte) error {
	var y int
	if err := json.Unmarshal(data, &y); err == nil {
		*p = YearOf(y)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParsePeriod(s)
	return nil
}

// Periods derives the selectable-period catalog for a job collection:
// the all-time marker first, then every distinct transaction year plus
// the current year, strictly descending. Zero transaction dates are
// skipped so an unparseable feed date can never surface as a selectable
// year. The caller supplies now so the current-year rule is
// deterministic under test.
func Periods(jobs []Job, now time.Time) []Period {
	years := map[int]struct{}{now.Year(): {}}
	for _, job := range jobs {
		for _, tx := range job.Transactions {
			if tx.Date.IsZero() {
				continue
			}
			years[tx.Date.Year()] = struct{}{}
		}
	}

	sorted := make([]int, 0, len(years))
	for y := range years {
		sorted = append(sorted, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	out := make([]Period, 0, len(sorted)+1)
	out = append(out, AllTime())
	for _, y := range sorted {
		out = append(out, YearOf(y))
	}
	return out
}

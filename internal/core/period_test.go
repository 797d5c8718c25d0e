package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in   string
		want Period
	}{
		{"2024", YearOf(2024)},
		{" 2023 ", YearOf(2023)},
		{AllTimeLabel, AllTime()},
		{"", AllTime()},
		{"garbage", AllTime()},
		{"-5", AllTime()},
	}
	for _, tc := range cases {
		if got := ParsePeriod(tc.in); got != tc.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPeriodMatches(t *testing.T) {
	year := YearOf(2024)
	cases := []struct {
		name string
		p    Period
		date time.Time
		want bool
	}{
		{"all time matches anything", AllTime(), time.Date(1999, 6, 1, 0, 0, 0, 0, time.Local), true},
		{"all time matches zero date", AllTime(), time.Time{}, true},
		{"inside year", year, time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local), true},
		{"first instant", year, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), true},
		{"last counted second", year, time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local), true},
		{"year before", year, time.Date(2023, 12, 31, 23, 59, 59, 0, time.Local), false},
		{"year after", year, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), false},
		{"zero date never matches a year", year, time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p.Matches(Transaction{Date: tc.date}); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPeriodJSON(t *testing.T) {
	b, err := json.Marshal([]Period{AllTime(), YearOf(2024)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["All Time",2024]` {
		t.Fatalf("marshal = %s", b)
	}

	var back []Period
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || !back[0].IsAllTime() || back[1].Year() != 2024 {
		t.Fatalf("round trip = %v", back)
	}
}

func TestPeriodsCatalog(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)

	t.Run("empty collection", func(t *testing.T) {
		got := Periods(nil, now)
		if len(got) != 2 || !got[0].IsAllTime() || got[1].Year() != 2026 {
			t.Fatalf("Periods(nil) = %v", got)
		}
	})

	t.Run("distinct years descending, current year always present", func(t *testing.T) {
		jobs := []Job{
			{Transactions: []Transaction{
				{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)},
				{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)},
				{}, // missing date must not surface as a year
			}},
			{Transactions: []Transaction{
				{Date: time.Date(2024, 2, 2, 0, 0, 0, 0, time.Local)}, // duplicate year
			}},
		}
		got := Periods(jobs, now)
		want := []Period{AllTime(), YearOf(2026), YearOf(2024), YearOf(2023)}
		if len(got) != len(want) {
			t.Fatalf("Periods = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Periods[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("data year equal to current year is not duplicated", func(t *testing.T) {
		jobs := []Job{{Transactions: []Transaction{
			{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local)},
		}}}
		got := Periods(jobs, now)
		if len(got) != 2 || got[1].Year() != 2026 {
			t.Fatalf("Periods = %v", got)
		}
	})
}

// Package core derives client and job financial summaries from raw job
// records: classification, year filtering, aggregation, grouping, ranking
// and the selectable-period catalog. Everything in it is a pure function
// of its inputs; malformed feed values degrade to zero contributions
// instead of producing errors.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer cents. Calculations stay in cents to
// avoid floating-point drift; Units is for display only.
type Money struct {
	Cents int64
}

// Units returns the amount in currency units as a float64 for display.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// CoerceCents converts a loosely-typed feed amount to non-negative cents.
//
// It accepts plain numbers with dot or comma decimal separators and an
// optional leading sign. The sign is discarded (amounts are consumed via
// their absolute value) and the third decimal rounds half-up. Anything
// unparseable coerces to 0 rather than failing: the feed is best-effort
// and a garbage amount must contribute nothing, not poison a total.
//
//	CoerceCents("12.34")  -> 1234
//	CoerceCents("-40")    -> 4000
//	CoerceCents("12,346") -> 1235
//	CoerceCents("abc")    -> 0
func CoerceCents(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")
	if s == "" {
		return 0
	}

	const maxSafe = (1<<63 - 1) / 100

	// Exponent-form JSON numbers ("1e5") fail the digit scan below, so
	// route them through float parsing instead.
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		f = math.Abs(f)
		if f > maxSafe {
			return 0
		}
		return int64(math.Round(f * 100))
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0
	}
	if iv > maxSafe {
		return 0
	}

	// First two fractional digits are cents; half-up on the third.
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return iv*100 + frac
}

// Abs returns the absolute value of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

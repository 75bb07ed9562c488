package domain

import (
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format of every calendar date.
	DateLayout = "2006-01-02"
	// MonthLayout is the format of a month key ("2025-01").
	MonthLayout = "2006-01"
)

// IsDate reports whether s is a YYYY-MM-DD date.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// MonthRange returns the half-open [start, end) date range covering year/month.
func MonthRange(year, month int) (start, end string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(DateLayout), first.AddDate(0, 1, 0).Format(DateLayout)
}

// ValidateYearMonth checks a year/month pair taken from a request.
func ValidateYearMonth(year, month int) error {
	v := &Validation{}
	v.Check(year >= 1970 && year <= 9999, "year", "Must be between 1970 and 9999")
	v.Check(month >= 1 && month <= 12, "month", "Must be between 1 and 12")
	return v.Err()
}

// NormalizeCurrency upper-cases a currency code and defaults it to USD.
func NormalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "USD"
	}
	return c
}

func isCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

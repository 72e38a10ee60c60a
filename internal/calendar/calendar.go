package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Months returns every month name in calendar order. The upload and filter
// UIs key reporting periods by English month name.
func Months() []string {
	months := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, m.String())
	}
	return months
}

// MonthByName resolves an English month name, case-insensitively.
func MonthByName(name string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", name)
}

// WeeksOf returns the week labels for a month in a given year: "Week 1"
// through "Week 4" or "Week 5" depending on how many days the month has.
func WeeksOf(month time.Month, year int) []string {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	days := firstOfNext.AddDate(0, 0, -1).Day()

	count := (days + 6) / 7
	weeks := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		weeks = append(weeks, fmt.Sprintf("Week %d", i))
	}
	return weeks
}

// Quarters returns the four fiscal quarter labels.
func Quarters() []string {
	return []string{"Q1", "Q2", "Q3", "Q4"}
}

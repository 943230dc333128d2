package domain

import (
	"fmt"
	"time"
)

const dayKeyLayout = "20060102"

// DayKey is the counter key for the calendar day of t, in t's location.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// FormatOrderNumber renders YYYYMMDD-NNNN.
func FormatOrderNumber(day string, seq int64) string {
	return fmt.Sprintf("%s-%04d", day, seq)
}

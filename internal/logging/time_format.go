package logging

import "time"

// Console lines carry local wall-clock time; the JSON handler uses UTC.
const consoleTimeLayout = "2006-01-02 15:04:05"

// formatTimestamp stamps records that arrive without a time with the current
// time, so every console line starts with a timestamp column.
func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.Local().Format(consoleTimeLayout)
}

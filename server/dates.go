package server

import (
	"fmt"
	"time"
)

// dateRange resolves optional YYYY-MM-DD bounds into full-day ISO 8601
// datetimes, defaulting to the trailing defaultDays window ending today
func dateRange(fromDate, toDate string, defaultDays int) (fromISO, toISO, from, to string) {
	now := time.Now()

	if toDate == "" {
		toDate = now.Format("2006-01-02")
	}
	if fromDate == "" {
		fromDate = now.AddDate(0, 0, -defaultDays).Format("2006-01-02")
	}

	return fmt.Sprintf("%sT00:00:00Z", fromDate),
		fmt.Sprintf("%sT23:59:59Z", toDate),
		fromDate, toDate
}

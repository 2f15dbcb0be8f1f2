package holiday

import (
	"time"

	"kanabus/internal/domain"
)

const daysPerMonth = 30

// Generate lists the holidays in [from, from+months*30 days], both ends
// included. The result depends on from, so callers passing time.Now()
// get different output on different days.
func Generate(cal Calendar, from time.Time, months int) domain.HolidayMap {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, daysPerMonth*months)

	holidays := make(domain.HolidayMap)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if name, ok := cal.HolidayName(d); ok {
			holidays[d.Format("2006-01-02")] = name
		}
	}
	return holidays
}

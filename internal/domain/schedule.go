package domain

import (
	"strconv"
	"time"
)

// JST is the operator's zone. Dates and departures are resolved in it;
// Japan has no daylight saving.
var JST = time.FixedZone("Asia/Tokyo", 9*60*60)

// DayTypeFor picks the schedule that runs on the given date. Sundays and
// dates listed in holidays use the holiday schedule.
func DayTypeFor(date time.Time, holidays HolidayMap) DayType {
	if date.Weekday() == time.Sunday {
		return DayTypeHoliday
	}
	if _, ok := holidays[date.Format("2006-01-02")]; ok {
		return DayTypeHoliday
	}
	if date.Weekday() == time.Saturday {
		return DayTypeSaturday
	}
	return DayTypeWeekday
}

// Departure is a BusTime resolved against a point in the day.
type Departure struct {
	BusTime
	Time             string `json:"time"`
	MinutesRemaining int    `json:"minutesRemaining"`
}

// MinuteOfDay returns the departure as minutes after midnight.
func (b BusTime) MinuteOfDay() (int, bool) {
	h, err := strconv.Atoi(b.Hour)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(b.Minute)
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// Upcoming returns up to n departures strictly after minuteOfDay, keeping
// timetable order.
func Upcoming(t DayTypeTimetable, minuteOfDay, n int) []Departure {
	if n < 0 {
		n = 0
	}
	result := make([]Departure, 0, n)
	for _, bt := range t {
		if len(result) >= n {
			break
		}
		at, ok := bt.MinuteOfDay()
		if !ok || at <= minuteOfDay {
			continue
		}
		result = append(result, Departure{
			BusTime:          bt,
			Time:             formatClock(at),
			MinutesRemaining: at - minuteOfDay,
		})
	}
	return result
}

func formatClock(minuteOfDay int) string {
	h := strconv.Itoa(minuteOfDay / 60)
	m := strconv.Itoa(minuteOfDay % 60)
	if len(m) < 2 {
		m = "0" + m
	}
	return h + ":" + m
}

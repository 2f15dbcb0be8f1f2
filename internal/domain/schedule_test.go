package domain

import (
	"testing"
	"time"
)

func TestDayTypeFor(t *testing.T) {
	holidays := HolidayMap{"2024-01-08": "成人の日"}

	tests := []struct {
		name string
		date time.Time
		want DayType
	}{
		{"weekday", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), DayTypeWeekday},
		{"saturday", time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), DayTypeSaturday},
		{"sunday", time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), DayTypeHoliday},
		{"national holiday on monday", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), DayTypeHoliday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayTypeFor(tt.date, holidays); got != tt.want {
				t.Errorf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestUpcoming(t *testing.T) {
	timetable := DayTypeTimetable{
		{Hour: "7", Minute: "05"},
		{Hour: "7", Minute: "15", Note: "*"},
		{Hour: "7", Minute: "30"},
		{Hour: "8", Minute: "00"},
	}

	t.Run("skips departures at or before now", func(t *testing.T) {
		got := Upcoming(timetable, 7*60+15, 2)
		if len(got) != 2 {
			t.Fatalf("got %d departures want 2", len(got))
		}
		if got[0].Time != "7:30" || got[0].MinutesRemaining != 15 {
			t.Errorf("unexpected first departure %+v", got[0])
		}
		if got[1].Time != "8:00" || got[1].MinutesRemaining != 45 {
			t.Errorf("unexpected second departure %+v", got[1])
		}
	})

	t.Run("returns empty after last bus", func(t *testing.T) {
		if got := Upcoming(timetable, 23*60, 2); len(got) != 0 {
			t.Errorf("got %d departures want 0", len(got))
		}
	})

	t.Run("non-positive count returns nothing", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			if got := Upcoming(timetable, 0, n); len(got) != 0 {
				t.Errorf("n=%d: got %d departures want 0", n, len(got))
			}
		}
	})

	t.Run("keeps note", func(t *testing.T) {
		got := Upcoming(timetable, 7*60+5, 1)
		if len(got) != 1 || got[0].Note != "*" {
			t.Errorf("unexpected departures %+v", got)
		}
	})
}

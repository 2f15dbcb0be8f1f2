package domain

// DayType selects one of the operator's schedules
type DayType string

const (
	DayTypeWeekday  DayType = "weekday"
	DayTypeSaturday DayType = "saturday"
	DayTypeHoliday  DayType = "holiday"
)

// DayTypes lists the day types in the order they are scraped.
var DayTypes = []DayType{DayTypeWeekday, DayTypeSaturday, DayTypeHoliday}

func (d DayType) Valid() bool {
	switch d {
	case DayTypeWeekday, DayTypeSaturday, DayTypeHoliday:
		return true
	default:
		return false
	}
}

// BusTime is a single scheduled departure. Hour and Minute hold digits only,
// as scraped; Note keeps any marker stripped from the minute text.
type BusTime struct {
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
	Note   string `json:"note,omitempty"`
}

// DayTypeTimetable is ordered as the source markup lists departures.
type DayTypeTimetable []BusTime

// RouteTimetable maps a day type to its departures
type RouteTimetable map[DayType]DayTypeTimetable

// TimetableBundle maps a route key to its timetable; it is the persisted artifact.
type TimetableBundle map[string]RouteTimetable

// HolidayMap maps an ISO date (2006-01-02) to a holiday display name.
type HolidayMap map[string]string

// EmptyRouteTimetable returns a timetable with every day type present and empty.
func EmptyRouteTimetable() RouteTimetable {
	rt := make(RouteTimetable, len(DayTypes))
	for _, dt := range DayTypes {
		rt[dt] = DayTypeTimetable{}
	}
	return rt
}

// Normalize fills in missing day types and replaces nil slices so the
// JSON form always carries three arrays.
func (rt RouteTimetable) Normalize() RouteTimetable {
	if rt == nil {
		return EmptyRouteTimetable()
	}
	for _, dt := range DayTypes {
		if rt[dt] == nil {
			rt[dt] = DayTypeTimetable{}
		}
	}
	return rt
}

// Count returns the number of departures across all day types.
func (rt RouteTimetable) Count() int {
	n := 0
	for _, t := range rt {
		n += len(t)
	}
	return n
}

package cache

const (
	KeyTimetable = "timetable"
	KeyHolidays  = "holidays"
	KeyUpdatedAt = "updated_at"
)

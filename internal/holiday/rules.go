package holiday

import "time"

// Calendar reports whether a date is a public holiday and its name.
type Calendar interface {
	HolidayName(date time.Time) (string, bool)
}

const (
	nameSubstitute = "振替休日"
	nameCitizens   = "国民の休日"
)

// Rules implements the Act on National Holidays from 1980 onwards,
// including substitute and citizens' holidays. Equinox days use the
// standard approximation valid through 2099.
type Rules struct{}

func (Rules) HolidayName(date time.Time) (string, bool) {
	d := civil(date)

	if name, ok := nationalHoliday(d); ok {
		return name, true
	}
	if isSubstitute(d) {
		return nameSubstitute, true
	}
	if isCitizens(d) {
		return nameCitizens, true
	}
	return "", false
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isNational(d time.Time) bool {
	_, ok := nationalHoliday(d)
	return ok
}

var substituteStart = time.Date(1973, 4, 12, 0, 0, 0, 0, time.UTC)

// Since 2007 a holiday on Sunday moves to the next day that is not
// itself a holiday; before that only to the following Monday.
func isSubstitute(d time.Time) bool {
	if d.Before(substituteStart) {
		return false
	}
	if d.Year() < 2007 {
		return d.Weekday() == time.Monday && isNational(d.AddDate(0, 0, -1))
	}
	for p := d.AddDate(0, 0, -1); isNational(p); p = p.AddDate(0, 0, -1) {
		if p.Weekday() == time.Sunday {
			return true
		}
	}
	return false
}

var citizensStart = time.Date(1985, 12, 27, 0, 0, 0, 0, time.UTC)

// A weekday sandwiched between two holidays is a citizens' holiday.
func isCitizens(d time.Time) bool {
	if d.Before(citizensStart) || d.Weekday() == time.Sunday {
		return false
	}
	return isNational(d.AddDate(0, 0, -1)) && isNational(d.AddDate(0, 0, 1))
}

var specialDays = map[string]string{
	"1989-02-24": "昭和天皇の大喪の礼",
	"1990-11-12": "即位礼正殿の儀",
	"1993-06-09": "皇太子徳仁親王の結婚の儀",
	"2019-05-01": "天皇の即位の日",
	"2019-10-22": "即位礼正殿の儀",
}

func nationalHoliday(d time.Time) (string, bool) {
	if name, ok := specialDays[d.Format("2006-01-02")]; ok {
		return name, true
	}

	y, day := d.Year(), d.Day()
	if y < 1980 {
		return "", false
	}

	switch d.Month() {
	case time.January:
		if day == 1 {
			return "元日", true
		}
		if (y < 2000 && day == 15) || (y >= 2000 && day == nthMonday(y, time.January, 2)) {
			return "成人の日", true
		}
	case time.February:
		if day == 11 {
			return "建国記念の日", true
		}
		if y >= 2020 && day == 23 {
			return "天皇誕生日", true
		}
	case time.March:
		if day == vernalEquinox(y) {
			return "春分の日", true
		}
	case time.April:
		if day == 29 {
			switch {
			case y >= 2007:
				return "昭和の日", true
			case y >= 1989:
				return "みどりの日", true
			default:
				return "天皇誕生日", true
			}
		}
	case time.May:
		switch day {
		case 3:
			return "憲法記念日", true
		case 4:
			if y >= 2007 {
				return "みどりの日", true
			}
		case 5:
			return "こどもの日", true
		}
	case time.July:
		if day == marineDay(y) {
			return "海の日", true
		}
		if y == 2020 && day == 24 || y == 2021 && day == 23 {
			return "スポーツの日", true
		}
	case time.August:
		if day == mountainDay(y) {
			return "山の日", true
		}
	case time.September:
		if (y < 2003 && day == 15) || (y >= 2003 && day == nthMonday(y, time.September, 3)) {
			return "敬老の日", true
		}
		if day == autumnalEquinox(y) {
			return "秋分の日", true
		}
	case time.October:
		switch {
		case y < 2000:
			if day == 10 {
				return "体育の日", true
			}
		case y < 2020:
			if day == nthMonday(y, time.October, 2) {
				return "体育の日", true
			}
		case y > 2021:
			if day == nthMonday(y, time.October, 2) {
				return "スポーツの日", true
			}
		}
	case time.November:
		if day == 3 {
			return "文化の日", true
		}
		if day == 23 {
			return "勤労感謝の日", true
		}
	case time.December:
		if y >= 1989 && y <= 2018 && day == 23 {
			return "天皇誕生日", true
		}
	}
	return "", false
}

func marineDay(y int) int {
	switch {
	case y < 1996:
		return 0
	case y < 2003:
		return 20
	case y == 2020:
		return 23
	case y == 2021:
		return 22
	default:
		return nthMonday(y, time.July, 3)
	}
}

func mountainDay(y int) int {
	switch {
	case y < 2016:
		return 0
	case y == 2020:
		return 10
	case y == 2021:
		return 8
	default:
		return 11
	}
}

// nthMonday returns the day of month of the n-th Monday.
func nthMonday(y int, m time.Month, n int) int {
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Weekday()
	offset := (int(time.Monday) - int(first) + 7) % 7
	return 1 + offset + 7*(n-1)
}

func vernalEquinox(y int) int {
	if y < 1980 || y > 2099 {
		return 0
	}
	return int(20.8431+0.242194*float64(y-1980)) - (y-1980)/4
}

func autumnalEquinox(y int) int {
	if y < 1980 || y > 2099 {
		return 0
	}
	return int(23.2488+0.242194*float64(y-1980)) - (y-1980)/4
}

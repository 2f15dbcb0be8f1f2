package kanachu

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kanabus/internal/domain"
)

const (
	// The timetable is the third table on the page.
	timetableIndex = 2
	minTables      = timetableIndex + 1
)

// Strategy scrapes one route's page(s) into a RouteTimetable. Any
// structural surprise is reported as *domain.ParseMismatchError.
type Strategy interface {
	Name() string
	Scrape(ctx context.Context, f PageFetcher, baseURL string, dayTypes []domain.DayType) (domain.RouteTimetable, error)
}

// NewStrategy returns the strategy registered under name ("table" or "tab").
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "table", "":
		return TableStrategy{}, nil
	case "tab":
		return TabStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown parse strategy %q", name)
	}
}

// TableStrategy fetches one page per day type, selecting the schedule with
// the day query parameter, and reads the third table of each page.
type TableStrategy struct{}

func (TableStrategy) Name() string { return "table" }

func (s TableStrategy) Scrape(ctx context.Context, f PageFetcher, baseURL string, dayTypes []domain.DayType) (domain.RouteTimetable, error) {
	result := make(domain.RouteTimetable, len(dayTypes))
	for _, dt := range dayTypes {
		pageURL, err := DayURL(baseURL, dt)
		if err != nil {
			return nil, err
		}
		html, err := f.Fetch(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		times, err := ParseTable(html, pageURL, dt)
		if err != nil {
			return nil, err
		}
		result[dt] = times
	}
	return result, nil
}

// DayURL appends the day selector for Saturday (&day=1) and holiday
// (&day=2) schedules. The weekday schedule is the base page.
func DayURL(baseURL string, dt domain.DayType) (string, error) {
	if !dt.Valid() {
		return "", fmt.Errorf("unknown day type %q", dt)
	}

	var day string
	switch dt {
	case domain.DayTypeWeekday:
		return baseURL, nil
	case domain.DayTypeSaturday:
		day = "1"
	case domain.DayTypeHoliday:
		day = "2"
	}

	sep := "&"
	if !strings.Contains(baseURL, "?") {
		sep = "?"
	}
	return baseURL + sep + "day=" + day, nil
}

// ParseTable extracts departures from the timetable table of a page. Each
// row holds the hour in its first cell and the minutes in its second,
// either as list items or as whitespace separated labels.
func ParseTable(html, pageURL string, dt domain.DayType) (domain.DayTypeTimetable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &domain.ParseMismatchError{URL: pageURL, DayType: dt, Reason: fmt.Sprintf("invalid html: %v", err)}
	}

	tables := doc.Find("table")
	if tables.Length() < minTables {
		return nil, &domain.ParseMismatchError{
			URL:     pageURL,
			DayType: dt,
			Reason:  fmt.Sprintf("found %d tables, need at least %d", tables.Length(), minTables),
		}
	}

	times := domain.DayTypeTimetable{}
	hourRows := 0

	tables.Eq(timetableIndex).Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() < 2 {
			return
		}
		hour := parseHour(cells.Eq(0).Text())
		if hour == "" {
			return
		}
		hourRows++

		minuteCell := cells.Eq(1)
		var tokens []string
		if items := minuteCell.Find("li"); items.Length() > 0 {
			items.Each(func(_ int, li *goquery.Selection) {
				tokens = append(tokens, li.Text())
			})
		} else {
			tokens = strings.Fields(minuteCell.Text())
		}

		times = appendTokens(times, hour, tokens)
	})

	if hourRows == 0 {
		return nil, &domain.ParseMismatchError{URL: pageURL, DayType: dt, Reason: "timetable has no hour rows"}
	}
	return times, nil
}

// TabStrategy reads all day types from a single page laid out as tabs
// #time_table_tab_1..3.
type TabStrategy struct{}

func (TabStrategy) Name() string { return "tab" }

func (s TabStrategy) Scrape(ctx context.Context, f PageFetcher, baseURL string, dayTypes []domain.DayType) (domain.RouteTimetable, error) {
	html, err := f.Fetch(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	return ParseTabs(html, baseURL, dayTypes)
}

var tabIndex = map[domain.DayType]int{
	domain.DayTypeWeekday:  1,
	domain.DayTypeSaturday: 2,
	domain.DayTypeHoliday:  3,
}

// ParseTabs extracts every requested day type from a tabbed page.
func ParseTabs(html, pageURL string, dayTypes []domain.DayType) (domain.RouteTimetable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &domain.ParseMismatchError{URL: pageURL, Reason: fmt.Sprintf("invalid html: %v", err)}
	}

	result := make(domain.RouteTimetable, len(dayTypes))
	for _, dt := range dayTypes {
		if !dt.Valid() {
			return nil, fmt.Errorf("unknown day type %q", dt)
		}
		idx := tabIndex[dt]

		tab := doc.Find(fmt.Sprintf("#time_table_tab_%d", idx)).First()
		if tab.Length() == 0 {
			return nil, &domain.ParseMismatchError{URL: pageURL, DayType: dt, Reason: fmt.Sprintf("tab %d not found", idx)}
		}

		times := domain.DayTypeTimetable{}
		tab.Find("dl.sp_tblTime").Each(func(_ int, group *goquery.Selection) {
			hour := parseHour(group.Find("dt").First().Text())
			if hour == "" {
				return
			}
			var tokens []string
			group.Find("dd span").Each(func(_ int, span *goquery.Selection) {
				tokens = append(tokens, span.Text())
			})
			times = appendTokens(times, hour, tokens)
		})
		result[dt] = times
	}
	return result, nil
}

func appendTokens(times domain.DayTypeTimetable, hour string, tokens []string) domain.DayTypeTimetable {
	for _, tok := range tokens {
		minute, note, ok := ParseMinuteToken(tok)
		if !ok {
			continue
		}
		times = append(times, domain.BusTime{Hour: hour, Minute: minute, Note: note})
	}
	return times
}

package holiday

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// CabinetOfficeURL publishes the official holiday list as Shift_JIS CSV.
const CabinetOfficeURL = "https://www8.cao.go.jp/chosei/shukujitsu/syukujitsu.csv"

// CabinetOfficeCalendar answers from the official list for the years it
// covers and defers to a fallback calendar for any other year.
type CabinetOfficeCalendar struct {
	days     map[string]string
	years    map[int]struct{}
	fallback Calendar
}

func (c *CabinetOfficeCalendar) HolidayName(date time.Time) (string, bool) {
	if _, covered := c.years[date.Year()]; !covered && c.fallback != nil {
		return c.fallback.HolidayName(date)
	}
	name, ok := c.days[date.Format("2006-01-02")]
	return name, ok
}

// Len returns the number of listed holidays.
func (c *CabinetOfficeCalendar) Len() int {
	return len(c.days)
}

var csvDateFormats = []string{"2006/1/2", "2006/01/02", "2006-01-02"}

// ParseCabinetOfficeCSV reads the Shift_JIS list. Rows whose first column
// is not a date, such as the header, are skipped.
func ParseCabinetOfficeCSV(r io.Reader, fallback Calendar) (*CabinetOfficeCalendar, error) {
	cr := csv.NewReader(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	cr.FieldsPerRecord = -1

	cal := &CabinetOfficeCalendar{
		days:     make(map[string]string),
		years:    make(map[int]struct{}),
		fallback: fallback,
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read holiday csv: %w", err)
		}
		if len(rec) == 0 {
			continue
		}

		dt, ok := parseCSVDate(strings.TrimPrefix(strings.TrimSpace(rec[0]), "\uFEFF"))
		if !ok {
			continue
		}
		name := "祝日"
		if len(rec) >= 2 && strings.TrimSpace(rec[1]) != "" {
			name = strings.TrimSpace(rec[1])
		}
		cal.days[dt.Format("2006-01-02")] = name
		cal.years[dt.Year()] = struct{}{}
	}

	if len(cal.days) == 0 {
		return nil, fmt.Errorf("holiday csv contains no dates")
	}
	return cal, nil
}

func parseCSVDate(s string) (time.Time, bool) {
	for _, layout := range csvDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FetchCabinetOffice downloads and parses the official list.
func FetchCabinetOffice(ctx context.Context, client *http.Client, url string, fallback Calendar, logger *slog.Logger) (*CabinetOfficeCalendar, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download holiday csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download holiday csv: unexpected status %d", resp.StatusCode)
	}

	cal, err := ParseCabinetOfficeCSV(resp.Body, fallback)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded official holiday list",
		"url", url,
		"holidays", cal.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return cal, nil
}

package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"kanabus/internal/config"
	"kanabus/internal/domain"
	"kanabus/internal/holiday"
	"kanabus/internal/sample"
	"kanabus/internal/store"
	"kanabus/pkg/kanachu"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleJSON = `{
  "chigasaki": {
    "weekday": [{"hour": "6", "minute": "40"}],
    "saturday": [{"hour": "7", "minute": "00"}],
    "holiday": []
  },
  "tsujido": {
    "weekday": [{"hour": "6", "minute": "50"}],
    "saturday": [],
    "holiday": [{"hour": "8", "minute": "10"}]
  }
}`

func timetablePage(rows string) string {
	return `<html><body><table></table><table></table><table>` +
		`<tr><th>時</th><th>分</th></tr>` + rows + `</table></body></html>`
}

// upstream serves /chigasaki and /tsujido, one page per day selector.
// Paths listed in failing answer 500.
func upstream(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/chigasaki":   timetablePage(`<tr><td>7</td><td><ul><li>05</li><li>15*</li><li>30</li></ul></td></tr>`),
		"/chigasaki?1": timetablePage(`<tr><td>8</td><td>00 30</td></tr>`),
		"/chigasaki?2": timetablePage(`<tr><td>9</td><td>00</td></tr>`),
		"/tsujido":     timetablePage(`<tr><td>6</td><td>45</td></tr>`),
		"/tsujido?1":   timetablePage(`<tr><td>7</td><td>45</td></tr>`),
		"/tsujido?2":   timetablePage(`<tr><td>8</td><td>45</td></tr>`),
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if day := r.URL.Query().Get("day"); day != "" {
			key += "?" + day
		}
		if failing[key] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		page, ok := pages[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, page)
	}))
}

type fixture struct {
	dir       string
	sample    string
	assembler *Assembler
}

func newFixture(t *testing.T, srvURL string, publisher Publisher) *fixture {
	t.Helper()
	dir := t.TempDir()
	samplePath := filepath.Join(dir, "sample_bus_timetable.json")
	if err := os.WriteFile(samplePath, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := kanachu.NewFetcher(kanachu.FetcherOptions{
		UserAgent: "test",
		Timeout:   2 * time.Second,
		TLSVerify: true,
		Attempts:  1,
	}, testLogger())

	a := New(Options{
		Routes: []config.Route{
			{Key: "chigasaki", URL: srvURL + "/chigasaki"},
			{Key: "tsujido", URL: srvURL + "/tsujido"},
		},
		Fetcher:         fetcher,
		Strategy:        kanachu.TableStrategy{},
		Fallback:        sample.NewLoader(samplePath, testLogger()),
		Calendar:        holiday.Rules{},
		LookaheadMonths: 6,
		TimetablePath:   filepath.Join(dir, "out", "bus_timetable.json"),
		HolidaysPath:    filepath.Join(dir, "out", "holidays.json"),
		Publisher:       publisher,
		Now:             func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) },
	}, testLogger())

	return &fixture{dir: dir, sample: samplePath, assembler: a}
}

func TestAssembler_Run(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)

	report, err := f.assembler.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Fallbacks() != 0 {
		t.Errorf("got %d fallbacks want 0", report.Fallbacks())
	}
	if report.RunID == "" {
		t.Error("run id should be set")
	}

	bundle, err := store.ReadBundle(f.assembler.opts.TimetablePath)
	if err != nil {
		t.Fatal(err)
	}
	wantWeekday := domain.DayTypeTimetable{
		{Hour: "7", Minute: "05"},
		{Hour: "7", Minute: "15", Note: "*"},
		{Hour: "7", Minute: "30"},
	}
	if got := bundle["chigasaki"][domain.DayTypeWeekday]; !reflect.DeepEqual(got, wantWeekday) {
		t.Errorf("got %+v want %+v", got, wantWeekday)
	}
	if got := bundle["tsujido"][domain.DayTypeHoliday]; len(got) != 1 || got[0].Minute != "45" {
		t.Errorf("unexpected tsujido holiday %+v", got)
	}

	holidays, err := store.ReadHolidays(f.assembler.opts.HolidaysPath)
	if err != nil {
		t.Fatal(err)
	}
	if holidays["2024-01-01"] != "元日" {
		t.Errorf("unexpected holidays %v", holidays)
	}
	for d := range holidays {
		if d > "2024-06-29" {
			t.Errorf("%s is past the lookahead window", d)
		}
	}
}

func TestAssembler_Idempotent(t *testing.T) {
	srv := upstream(t, map[string]bool{"/tsujido?2": true})
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)

	if _, err := f.assembler.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(f.assembler.opts.TimetablePath)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.assembler.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(f.assembler.opts.TimetablePath)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("runs differ:\n%s\n%s", first, second)
	}
}

func TestAssembler_FallbackOnFetchFailure(t *testing.T) {
	srv := upstream(t, map[string]bool{"/chigasaki": true})
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)

	report, err := f.assembler.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Fallbacks() != 1 {
		t.Errorf("got %d fallbacks want 1", report.Fallbacks())
	}
	if !domain.IsFetch(report.Routes[0].Err) {
		t.Errorf("got %v want FetchError", report.Routes[0].Err)
	}

	bundle, err := store.ReadBundle(f.assembler.opts.TimetablePath)
	if err != nil {
		t.Fatal(err)
	}

	want := domain.DayTypeTimetable{{Hour: "6", Minute: "40"}}
	if got := bundle["chigasaki"][domain.DayTypeWeekday]; !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v want %+v", got, want)
	}
	expected := sample.NewLoader(f.sample, testLogger()).Load("chigasaki")
	if !reflect.DeepEqual(bundle["chigasaki"], expected) {
		t.Errorf("got %+v want sample %+v", bundle["chigasaki"], expected)
	}
	if len(bundle["tsujido"][domain.DayTypeWeekday]) != 1 || bundle["tsujido"][domain.DayTypeWeekday][0].Minute != "45" {
		t.Errorf("tsujido should still be live: %+v", bundle["tsujido"])
	}
}

func TestAssembler_AlwaysFailingFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)

	if _, err := f.assembler.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bundle, err := store.ReadBundle(f.assembler.opts.TimetablePath)
	if err != nil {
		t.Fatal(err)
	}
	loader := sample.NewLoader(f.sample, testLogger())
	for _, route := range []string{"chigasaki", "tsujido"} {
		if !reflect.DeepEqual(bundle[route], loader.Load(route)) {
			t.Errorf("%s: got %+v want sample data", route, bundle[route])
		}
	}
}

func TestAssembler_FallbackOnParseMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><table></table></body></html>`)
	}))
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)

	report, err := f.assembler.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rr := range report.Routes {
		if !rr.FromSample || !domain.IsParseMismatch(rr.Err) {
			t.Errorf("%s: got FromSample=%t err=%v", rr.Route, rr.FromSample, rr.Err)
		}
	}
}

func TestAssembler_MissingSampleDegradesToEmpty(t *testing.T) {
	srv := upstream(t, map[string]bool{"/tsujido": true})
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)
	if err := os.Remove(f.sample); err != nil {
		t.Fatal(err)
	}

	if _, err := f.assembler.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bundle, err := store.ReadBundle(f.assembler.opts.TimetablePath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(bundle["tsujido"], domain.EmptyRouteTimetable()) {
		t.Errorf("got %+v want empty timetable", bundle["tsujido"])
	}
}

func TestAssembler_SerializationFailure(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)

	blocker := filepath.Join(f.dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	f.assembler.opts.TimetablePath = filepath.Join(blocker, "bus_timetable.json")

	_, err := f.assembler.Run(context.Background())
	if !domain.IsSerialization(err) {
		t.Fatalf("got %v want SerializationError", err)
	}
	if _, statErr := os.Stat(f.assembler.opts.HolidaysPath); !os.IsNotExist(statErr) {
		t.Errorf("holidays should not be written after a failed timetable write: %v", statErr)
	}
}

type recordingPublisher struct {
	calls  int
	bundle domain.TimetableBundle
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, bundle domain.TimetableBundle, _ domain.HolidayMap) error {
	p.calls++
	p.bundle = bundle
	return p.err
}

func TestAssembler_Publisher(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()

	t.Run("receives the bundle", func(t *testing.T) {
		pub := &recordingPublisher{}
		f := newFixture(t, srv.URL, pub)
		if _, err := f.assembler.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		if pub.calls != 1 || len(pub.bundle) != 2 {
			t.Errorf("got %d calls with %d routes", pub.calls, len(pub.bundle))
		}
	})

	t.Run("failure does not fail the run", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("redis down")}
		f := newFixture(t, srv.URL, pub)
		if _, err := f.assembler.Run(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", &domain.FetchError{URL: "u", StatusCode: 500}), "fetch"},
		{&domain.ParseMismatchError{URL: "u", Reason: "r"}, "parse_mismatch"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("errorKind(%v) = %s want %s", tt.err, got, tt.want)
		}
	}
}

func TestAssembler_HolidayWindowStartsOnJapaneseDate(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()
	f := newFixture(t, srv.URL, nil)

	// 2024-01-16 20:00 UTC is already 2024-01-17 in Japan, so the window
	// reaches 2024-07-15.
	f.assembler.opts.Now = func() time.Time { return time.Date(2024, 1, 16, 20, 0, 0, 0, time.UTC) }

	if _, err := f.assembler.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	holidays, err := store.ReadHolidays(f.assembler.opts.HolidaysPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := holidays["2024-07-15"]; !ok {
		t.Errorf("window should start on the Japanese date: %v", holidays)
	}
}

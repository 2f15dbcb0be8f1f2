package holiday

import (
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	t.Run("six months from new year", func(t *testing.T) {
		got := Generate(Rules{}, date(2024, time.January, 1), 6)

		if got["2024-01-01"] != "元日" {
			t.Errorf("new year's day missing: %v", got)
		}
		for d := range got {
			if d > "2024-06-29" {
				t.Errorf("%s is past the lookahead window", d)
			}
		}
		if len(got) != 11 {
			t.Errorf("got %d holidays want 11: %v", len(got), got)
		}
	})

	t.Run("window end is inclusive", func(t *testing.T) {
		// 2024-01-17 + 180 days = 2024-07-15, marine day.
		if _, ok := Generate(Rules{}, date(2024, time.January, 17), 6)["2024-07-15"]; !ok {
			t.Error("last day of the window should be included")
		}
		if _, ok := Generate(Rules{}, date(2024, time.January, 16), 6)["2024-07-15"]; ok {
			t.Error("day after the window should be excluded")
		}
	})

	t.Run("ignores time of day and zone", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*60*60)
		from := time.Date(2024, time.January, 1, 23, 59, 0, 0, jst)
		if _, ok := Generate(Rules{}, from, 1)["2024-01-01"]; !ok {
			t.Error("start date should be included")
		}
	})
}

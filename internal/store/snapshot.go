package store

import (
	"fmt"
	"os"
	"sync"
	"time"

	"kanabus/internal/domain"
)

// Snapshot holds the most recently loaded artifacts for the server. It
// reloads from disk only when a file's modification time changes.
type Snapshot struct {
	timetablePath string
	holidaysPath  string

	mu           sync.RWMutex
	timetable    domain.TimetableBundle
	holidays     domain.HolidayMap
	timetableMod time.Time
	holidaysMod  time.Time
	lastUpdate   time.Time
	loaded       bool
}

func NewSnapshot(timetablePath, holidaysPath string) *Snapshot {
	return &Snapshot{
		timetablePath: timetablePath,
		holidaysPath:  holidaysPath,
	}
}

// Reload re-reads whichever artifact changed on disk and reports whether
// anything was replaced. A file that disappears keeps its last contents.
func (s *Snapshot) Reload() (bool, error) {
	ttInfo, ttErr := os.Stat(s.timetablePath)
	hoInfo, hoErr := os.Stat(s.holidaysPath)

	s.mu.RLock()
	ttChanged := ttErr == nil && !ttInfo.ModTime().Equal(s.timetableMod)
	hoChanged := hoErr == nil && !hoInfo.ModTime().Equal(s.holidaysMod)
	s.mu.RUnlock()

	if !ttChanged && !hoChanged {
		if ttErr != nil {
			return false, fmt.Errorf("stat timetable: %w", ttErr)
		}
		return false, nil
	}

	var (
		bundle   domain.TimetableBundle
		holidays domain.HolidayMap
		err      error
	)
	if ttChanged {
		if bundle, err = ReadBundle(s.timetablePath); err != nil {
			return false, err
		}
	}
	if hoChanged {
		if holidays, err = ReadHolidays(s.holidaysPath); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ttChanged {
		s.timetable = bundle
		s.timetableMod = ttInfo.ModTime()
		s.loaded = true
	}
	if hoChanged {
		s.holidays = holidays
		s.holidaysMod = hoInfo.ModTime()
	}
	s.lastUpdate = time.Now()
	return true, nil
}

func (s *Snapshot) Timetable() domain.TimetableBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timetable
}

func (s *Snapshot) Holidays() domain.HolidayMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holidays
}

func (s *Snapshot) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Snapshot) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

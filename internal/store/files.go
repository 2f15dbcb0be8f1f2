package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kanabus/internal/domain"
)

// Encode renders v the way the artifacts are stored: two-space indent,
// non-ASCII kept as is, trailing newline. Map keys come out sorted, so
// equal input gives byte-identical output.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v to path through a temporary file in the same
// directory and renames it into place, so readers never observe a partial
// file. Failures are returned as *domain.SerializationError.
func WriteJSON(path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return &domain.SerializationError{Path: path, Cause: fmt.Errorf("encode: %w", err)}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.SerializationError{Path: path, Cause: err}
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return &domain.SerializationError{Path: path, Cause: err}
	}
	tmpPath := f.Name()

	_, writeErr := f.Write(data)
	syncErr := f.Sync()
	closeErr := f.Close()
	for _, err := range []error{writeErr, syncErr, closeErr} {
		if err != nil {
			_ = os.Remove(tmpPath)
			return &domain.SerializationError{Path: path, Cause: err}
		}
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return &domain.SerializationError{Path: path, Cause: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &domain.SerializationError{Path: path, Cause: err}
	}
	return nil
}

func ReadBundle(path string) (domain.TimetableBundle, error) {
	var bundle domain.TimetableBundle
	if err := readJSON(path, &bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

func ReadHolidays(path string) (domain.HolidayMap, error) {
	var holidays domain.HolidayMap
	if err := readJSON(path, &holidays); err != nil {
		return nil, err
	}
	return holidays, nil
}

func readJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

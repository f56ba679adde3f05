package sqlite

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs the SQL Server style helpers on every future
// connection of the sqlite driver.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("DATEDIFF", 3, dateDiff)
	})
	if registerErr != nil {
		return fmt.Errorf("failed to register sqlite functions: %w", registerErr)
	}
	return nil
}

var errUnsupportedUnit = errors.New("Only DAY is supported") //nolint:staticcheck // message shown to learners

// dateDiff implements DATEDIFF('DAY', from, to) as the whole number of days
// between two dates. Unparseable dates yield NULL.
func dateDiff(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	unit, ok := asString(args[0])
	if !ok || !strings.EqualFold(unit, "DAY") {
		return nil, errUnsupportedUnit
	}

	from, ok := julianDay(args[1])
	if !ok {
		return nil, nil
	}
	to, ok := julianDay(args[2])
	if !ok {
		return nil, nil
	}
	return int64(math.Floor(to - from)), nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// julianDay converts a date value to a Julian day number.
func julianDay(v driver.Value) (float64, bool) {
	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	default:
		s, ok := asString(v)
		if !ok {
			return 0, false
		}
		parsed, err := parseDate(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		t = parsed
	}
	return float64(t.UnixMilli())/86400000.0 + 2440587.5, true
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func asString(v driver.Value) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return "", false
	}
}

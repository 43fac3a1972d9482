package slots

import (
	"fmt"
	"sort"
	"strconv"

	"taberna/internal/model"
)

// DefaultStep is the slot granularity in minutes.
const DefaultStep = 30

const minutesPerDay = 24 * 60

// Generate returns the sorted, de-duplicated slot start times ("HH:MM") for
// the given service windows. A window emits start, start+step, ... while the
// cursor stays strictly before its end; windows with start >= end emit nothing.
func Generate(windows []model.ServiceWindow, step int) ([]string, error) {
	if step <= 0 {
		step = DefaultStep
	}

	seen := make(map[int]struct{})
	for _, w := range windows {
		start, err := ParseClock(w.Start)
		if err != nil {
			return nil, fmt.Errorf("parse start time: %w", err)
		}
		end, err := ParseClock(w.End)
		if err != nil {
			return nil, fmt.Errorf("parse end time: %w", err)
		}
		for cursor := start; cursor < end; cursor += step {
			seen[cursor] = struct{}{}
		}
	}

	minutes := make([]int, 0, len(seen))
	for m := range seen {
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)

	result := make([]string, len(minutes))
	for i, m := range minutes {
		result[i] = FormatClock(m)
	}
	return result, nil
}

// WithinWindows reports whether t falls inside any window using the
// half-open test start <= t < end. It does not require t to sit on the
// slot grid.
func WithinWindows(windows []model.ServiceWindow, t string) (bool, error) {
	at, err := ParseClock(t)
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		start, err := ParseClock(w.Start)
		if err != nil {
			return false, fmt.Errorf("parse start time: %w", err)
		}
		end, err := ParseClock(w.End)
		if err != nil {
			return false, fmt.Errorf("parse end time: %w", err)
		}
		if start <= at && at < end {
			return true, nil
		}
	}
	return false, nil
}

// ParseClock converts a zero-padded "HH:MM" string to minutes after midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}

	hour, err := strconv.Atoi(s[:2])
	if err != nil || !isDigits(s[:2]) {
		return 0, fmt.Errorf("invalid hour: %q", s)
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil || !isDigits(s[3:]) {
		return 0, fmt.Errorf("invalid minute: %q", s)
	}
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

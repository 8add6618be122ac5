package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a 24-hour HH:MM string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	s := strings.TrimSpace(value)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time %q: hour out of range", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: minute out of range", value)
	}
	return TimeOfDay(h*60 + m), nil
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Compact renders the time as HHMM, used in generated session ids.
func (t TimeOfDay) Compact() string {
	return fmt.Sprintf("%02d%02d", int(t)/60, int(t)%60)
}

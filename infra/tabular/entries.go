package tabular

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/giordipeperkamp/Megaplanner/core/ingest"
)

// ReadCalendarEntries loads popover submissions: a JSON array of
// {title, date, start, end, roomId?, doctorId?} records.
func ReadCalendarEntries(path string) ([]ingest.CalendarEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []ingest.CalendarEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

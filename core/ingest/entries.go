package ingest

import (
	"fmt"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// CalendarEntry is a single-session submission from the calendar popover.
// The room resolves the location; a doctor id pins the assignment.
type CalendarEntry struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	RoomID   string `json:"roomId,omitempty"`
	DoctorID string `json:"doctorId,omitempty"`
}

// CalendarSessions converts popover entries into ordinary session rows,
// appended to the session set before planning. Entry ids reuse the generated
// id scheme; colliding ids get a numeric suffix against the existing set.
func CalendarSessions(entries []CalendarEntry, existing []model.Session, rooms []model.Room, doctors map[string]struct{}) ([]model.Session, error) {
	roomsByID := make(map[string]model.Room, len(rooms))
	for _, r := range rooms {
		roomsByID[r.ID] = r
	}
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s.ID] = struct{}{}
	}

	var out []model.Session
	for i, e := range entries {
		rowNum := i + 1
		date, err := model.ParseDate(e.Date)
		if err != nil {
			return nil, &InputError{Source: "calendar entries", Row: rowNum, Column: "date", Reason: err.Error()}
		}
		start, err := model.ParseTimeOfDay(e.Start)
		if err != nil {
			return nil, &InputError{Source: "calendar entries", Row: rowNum, Column: "start", Reason: err.Error()}
		}
		end, err := model.ParseTimeOfDay(e.End)
		if err != nil {
			return nil, &InputError{Source: "calendar entries", Row: rowNum, Column: "end", Reason: err.Error()}
		}
		room, ok := roomsByID[e.RoomID]
		if !ok {
			return nil, &ReferenceError{Source: "calendar entries", Row: rowNum, Reason: fmt.Sprintf("unknown roomId %q", e.RoomID)}
		}
		if e.DoctorID != "" {
			if _, ok := doctors[e.DoctorID]; !ok {
				return nil, &ReferenceError{Source: "calendar entries", Row: rowNum, Reason: fmt.Sprintf("unknown doctorId %q", e.DoctorID)}
			}
		}

		id := fmt.Sprintf("%s-%s-%s", date.Format("20060102"), room.LocationID, start.Compact())
		if _, dup := taken[id]; dup {
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s-%d", id, n)
				if _, dup := taken[candidate]; !dup {
					id = candidate
					break
				}
			}
		}
		taken[id] = struct{}{}

		s := model.Session{
			ID:             id,
			Date:           date,
			LocationID:     room.LocationID,
			Start:          start,
			End:            end,
			Room:           room.Name,
			PinnedDoctorID: e.DoctorID,
		}
		if err := s.Validate(); err != nil {
			return nil, &InputError{Source: "calendar entries", Row: rowNum, Column: "start", Reason: err.Error()}
		}
		out = append(out, s)
	}
	return out, nil
}

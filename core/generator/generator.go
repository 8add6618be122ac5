package generator

import (
	"fmt"
	"time"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// Expand emits one session per template per matching calendar day in
// [from, to]. Session ids follow YYYYMMDD-<locationId>-<startHHMM>;
// collisions (two templates on the same slot, or ids already taken by the
// caller) get an increasing -<n> suffix.
func Expand(cfg Config, locations []model.Location, from, to time.Time, taken map[string]struct{}) ([]model.Session, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("date range end %s before start %s", model.FormatDate(to), model.FormatDate(from))
	}
	locsByID := make(map[string]model.Location, len(locations))
	for _, l := range locations {
		locsByID[l.ID] = l
	}

	type slot struct {
		weekday  int
		location model.Location
		start    model.TimeOfDay
		end      model.TimeOfDay
		skill    string
		room     string
	}
	slots := make([]slot, 0, len(cfg.Templates))
	for i, tpl := range cfg.Templates {
		weekday, err := model.ParseWeekday(tpl.Weekday)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i+1, err)
		}
		loc, ok := locsByID[tpl.LocationID]
		if !ok {
			return nil, fmt.Errorf("template %d: unknown location_id %q", i+1, tpl.LocationID)
		}
		start, end := loc.DefaultStart, loc.DefaultEnd
		if tpl.StartTime != "" {
			if start, err = model.ParseTimeOfDay(tpl.StartTime); err != nil {
				return nil, fmt.Errorf("template %d: %w", i+1, err)
			}
		}
		if tpl.EndTime != "" {
			if end, err = model.ParseTimeOfDay(tpl.EndTime); err != nil {
				return nil, fmt.Errorf("template %d: %w", i+1, err)
			}
		}
		if start >= end {
			return nil, fmt.Errorf("template %d: start %s must be before end %s", i+1, start, end)
		}
		slots = append(slots, slot{weekday: weekday, location: loc, start: start, end: end, skill: tpl.RequiredSkill, room: tpl.Room})
	}

	used := make(map[string]struct{}, len(taken))
	for id := range taken {
		used[id] = struct{}{}
	}

	var sessions []model.Session
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		weekday := model.Weekday1to7(day)
		for _, sl := range slots {
			if sl.weekday != weekday {
				continue
			}
			id := fmt.Sprintf("%s-%s-%s", day.Format("20060102"), sl.location.ID, sl.start.Compact())
			if _, dup := used[id]; dup {
				for n := 1; ; n++ {
					candidate := fmt.Sprintf("%s-%d", id, n)
					if _, dup := used[candidate]; !dup {
						id = candidate
						break
					}
				}
			}
			used[id] = struct{}{}
			sessions = append(sessions, model.Session{
				ID:            id,
				Date:          day,
				LocationID:    sl.location.ID,
				Start:         sl.start,
				End:           sl.end,
				RequiredSkill: sl.skill,
				Room:          sl.room,
			})
		}
	}
	return sessions, nil
}

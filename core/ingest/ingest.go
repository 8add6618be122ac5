package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/giordipeperkamp/Megaplanner/core/logger"
	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// Package ingest converts raw tables into typed planning entities. It is the
// only place string-to-typed conversion happens; everything downstream works
// on model types and arena indices.

// Tables bundles the raw inputs of one run. Nil entries are optional tables
// that were not provided.
type Tables struct {
	Doctors     *Table
	Locations   *Table
	Rooms       *Table
	Sessions    *Table
	Preferences *Table
	TravelTimes *Table
	Workdays    *Table
	WeekRules   *Table
}

// Normalize parses every table into model.Inputs. Malformed rows are fatal.
// Rows in ancillary tables referencing unknown ids are skipped with a
// warning; a session with an unresolvable location is fatal.
func Normalize(tbl Tables, log logger.Logger) (*model.Inputs, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	in := &model.Inputs{
		Preferences: make(model.Preferences),
		TravelTimes: make(model.TravelTimes),
		Workdays:    make(model.Workdays),
		WeekRules:   model.NewWeekRules(),
	}

	var err error
	if in.Locations, err = Locations(tbl.Locations); err != nil {
		return nil, err
	}
	if in.Doctors, err = Doctors(tbl.Doctors); err != nil {
		return nil, err
	}
	locs := idSet(len(in.Locations), func(i int) string { return in.Locations[i].ID })
	docs := idSet(len(in.Doctors), func(i int) string { return in.Doctors[i].ID })

	if tbl.Rooms != nil {
		if in.Rooms, err = Rooms(tbl.Rooms, locs, log); err != nil {
			return nil, err
		}
	}
	if in.Sessions, err = Sessions(tbl.Sessions, locs); err != nil {
		return nil, err
	}
	if tbl.Preferences != nil {
		if in.Preferences, err = Preferences(tbl.Preferences, docs, locs, log); err != nil {
			return nil, err
		}
	}
	if tbl.TravelTimes != nil {
		if in.TravelTimes, err = TravelTimes(tbl.TravelTimes, locs, log); err != nil {
			return nil, err
		}
	}
	if tbl.Workdays != nil {
		if in.Workdays, err = Workdays(tbl.Workdays, docs, log); err != nil {
			return nil, err
		}
	}
	if tbl.WeekRules != nil {
		if in.WeekRules, err = WeekRules(tbl.WeekRules, docs, locs, log); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func idSet(n int, id func(int) string) map[string]struct{} {
	set := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		set[id(i)] = struct{}{}
	}
	return set
}

// Doctors parses the doctors table. The optional available_dates column
// lists per-date exceptions to the workday cadence.
func Doctors(t *Table) ([]model.Doctor, error) {
	if t == nil {
		return nil, &InputError{Source: "doctors", Reason: "table is required"}
	}
	cols, err := t.columns("doctor_id", "name", "max_sessions", "unavailable_dates", "skills")
	if err != nil {
		return nil, err
	}
	availCol := t.optionalColumn("available_dates")

	seen := make(map[string]struct{})
	var doctors []model.Doctor
	for i, row := range t.Rows {
		rowNum := i + 1
		id := cell(row, cols["doctor_id"])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "doctor_id", Reason: "duplicate doctor_id " + id}
		}
		seen[id] = struct{}{}

		maxSessions := 0
		if raw := cell(row, cols["max_sessions"]); raw != "" {
			maxSessions, err = strconv.Atoi(raw)
			if err != nil || maxSessions < 0 {
				return nil, &InputError{Source: t.Source, Row: rowNum, Column: "max_sessions", Reason: "must be a non-negative integer"}
			}
		}
		unavailable, err := parseDateSet(cell(row, cols["unavailable_dates"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "unavailable_dates", Reason: err.Error()}
		}
		available, err := parseDateSet(cell(row, availCol))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "available_dates", Reason: err.Error()}
		}
		skills := make(map[string]struct{})
		for _, s := range splitList(cell(row, cols["skills"])) {
			skills[strings.ToLower(s)] = struct{}{}
		}
		name := cell(row, cols["name"])
		if name == "" {
			name = id
		}
		doctors = append(doctors, model.Doctor{
			ID:          id,
			Name:        name,
			MaxSessions: maxSessions,
			Unavailable: unavailable,
			Available:   available,
			Skills:      skills,
		})
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].ID < doctors[j].ID })
	return doctors, nil
}

func parseDateSet(value string) (model.DateSet, error) {
	set := make(model.DateSet)
	for _, raw := range splitList(value) {
		d, err := model.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		set.Add(d)
	}
	return set, nil
}

// Locations parses the locations table. Blank default times fall back to a
// 09:00-17:00 day window.
func Locations(t *Table) ([]model.Location, error) {
	if t == nil {
		return nil, &InputError{Source: "locations", Reason: "table is required"}
	}
	cols, err := t.columns("location_id", "name")
	if err != nil {
		return nil, err
	}
	startCol := t.optionalColumn("default_start_time")
	endCol := t.optionalColumn("default_end_time")

	seen := make(map[string]struct{})
	var locations []model.Location
	for i, row := range t.Rows {
		rowNum := i + 1
		id := cell(row, cols["location_id"])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "location_id", Reason: "duplicate location_id " + id}
		}
		seen[id] = struct{}{}

		loc := model.Location{ID: id, Name: cell(row, cols["name"])}
		if loc.Name == "" {
			loc.Name = id
		}
		loc.DefaultStart, err = parseTimeOrDefault(cell(row, startCol), "09:00")
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "default_start_time", Reason: err.Error()}
		}
		loc.DefaultEnd, err = parseTimeOrDefault(cell(row, endCol), "17:00")
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "default_end_time", Reason: err.Error()}
		}
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })
	return locations, nil
}

func parseTimeOrDefault(value, fallback string) (model.TimeOfDay, error) {
	if value == "" {
		value = fallback
	}
	return model.ParseTimeOfDay(value)
}

// Rooms parses the rooms table. Orphan rooms (unknown location) and
// duplicate (location, name) pairs are skipped with a warning.
func Rooms(t *Table, locations map[string]struct{}, log logger.Logger) ([]model.Room, error) {
	cols, err := t.columns("room_id", "location_id", "name")
	if err != nil {
		return nil, err
	}
	type roomKey struct{ loc, name string }
	seen := make(map[roomKey]struct{})
	var rooms []model.Room
	for i, row := range t.Rows {
		rowNum := i + 1
		id := cell(row, cols["room_id"])
		if id == "" {
			continue
		}
		locID := cell(row, cols["location_id"])
		if _, ok := locations[locID]; !ok {
			log.Warnf("%s row %d: unknown location_id %q, row skipped", t.Source, rowNum, locID)
			continue
		}
		name := cell(row, cols["name"])
		key := roomKey{loc: locID, name: name}
		if _, dup := seen[key]; dup {
			log.Warnf("%s row %d: duplicate room %q at location %q, row skipped", t.Source, rowNum, name, locID)
			continue
		}
		seen[key] = struct{}{}
		rooms = append(rooms, model.Room{ID: id, LocationID: locID, Name: name})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

// Sessions parses the sessions table. An unresolvable location id is fatal.
func Sessions(t *Table, locations map[string]struct{}) ([]model.Session, error) {
	if t == nil {
		return nil, &InputError{Source: "sessions", Reason: "table is required"}
	}
	cols, err := t.columns("session_id", "date", "location_id", "start_time", "end_time")
	if err != nil {
		return nil, err
	}
	skillCol := t.optionalColumn("required_skill")
	roomCol := t.optionalColumn("room")

	seen := make(map[string]struct{})
	var sessions []model.Session
	for i, row := range t.Rows {
		rowNum := i + 1
		id := cell(row, cols["session_id"])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "session_id", Reason: "duplicate session_id " + id}
		}
		seen[id] = struct{}{}

		date, err := model.ParseDate(cell(row, cols["date"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "date", Reason: err.Error()}
		}
		locID := cell(row, cols["location_id"])
		if _, ok := locations[locID]; !ok {
			return nil, &ReferenceError{Source: t.Source, Row: rowNum, Reason: fmt.Sprintf("unknown location_id %q", locID)}
		}
		start, err := model.ParseTimeOfDay(cell(row, cols["start_time"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "start_time", Reason: err.Error()}
		}
		end, err := model.ParseTimeOfDay(cell(row, cols["end_time"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "end_time", Reason: err.Error()}
		}
		s := model.Session{
			ID:            id,
			Date:          date,
			LocationID:    locID,
			Start:         start,
			End:           end,
			RequiredSkill: strings.ToLower(cell(row, skillCol)),
			Room:          cell(row, roomCol),
		}
		if err := s.Validate(); err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "start_time", Reason: err.Error()}
		}
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

// Preferences parses the preferences table. Unknown ids skip the row with a
// warning; a second entry for the same pair is ignored.
func Preferences(t *Table, doctors, locations map[string]struct{}, log logger.Logger) (model.Preferences, error) {
	cols, err := t.columns("doctor_id", "location_id", "score")
	if err != nil {
		return nil, err
	}
	prefs := make(model.Preferences)
	for i, row := range t.Rows {
		rowNum := i + 1
		docID := cell(row, cols["doctor_id"])
		locID := cell(row, cols["location_id"])
		if docID == "" || locID == "" {
			continue
		}
		if _, ok := doctors[docID]; !ok {
			log.Warnf("%s row %d: unknown doctor_id %q, row skipped", t.Source, rowNum, docID)
			continue
		}
		if _, ok := locations[locID]; !ok {
			log.Warnf("%s row %d: unknown location_id %q, row skipped", t.Source, rowNum, locID)
			continue
		}
		score, err := strconv.Atoi(cell(row, cols["score"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "score", Reason: "must be an integer"}
		}
		key := model.PrefKey{DoctorID: docID, LocationID: locID}
		if _, dup := prefs[key]; dup {
			log.Warnf("%s row %d: duplicate preference for (%s, %s), row skipped", t.Source, rowNum, docID, locID)
			continue
		}
		prefs[key] = score
	}
	return prefs, nil
}

// TravelTimes parses the travel table. Minutes must be non-negative.
func TravelTimes(t *Table, locations map[string]struct{}, log logger.Logger) (model.TravelTimes, error) {
	cols, err := t.columns("from_location_id", "to_location_id", "minutes")
	if err != nil {
		return nil, err
	}
	travel := make(model.TravelTimes)
	for i, row := range t.Rows {
		rowNum := i + 1
		from := cell(row, cols["from_location_id"])
		to := cell(row, cols["to_location_id"])
		if from == "" || to == "" {
			continue
		}
		if _, ok := locations[from]; !ok {
			log.Warnf("%s row %d: unknown from_location_id %q, row skipped", t.Source, rowNum, from)
			continue
		}
		if _, ok := locations[to]; !ok {
			log.Warnf("%s row %d: unknown to_location_id %q, row skipped", t.Source, rowNum, to)
			continue
		}
		minutes, err := strconv.Atoi(cell(row, cols["minutes"]))
		if err != nil || minutes < 0 {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "minutes", Reason: "must be a non-negative integer"}
		}
		travel[model.Route{From: from, To: to}] = minutes
	}
	return travel, nil
}

// Workdays parses the workday cadence table.
func Workdays(t *Table, doctors map[string]struct{}, log logger.Logger) (model.Workdays, error) {
	cols, err := t.columns("doctor_id", "weekday")
	if err != nil {
		return nil, err
	}
	workdays := make(model.Workdays)
	for i, row := range t.Rows {
		rowNum := i + 1
		docID := cell(row, cols["doctor_id"])
		if docID == "" {
			continue
		}
		if _, ok := doctors[docID]; !ok {
			log.Warnf("%s row %d: unknown doctor_id %q, row skipped", t.Source, rowNum, docID)
			continue
		}
		weekday, err := model.ParseWeekday(cell(row, cols["weekday"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "weekday", Reason: err.Error()}
		}
		workdays.Add(docID, weekday)
	}
	return workdays, nil
}

// WeekRules parses the week-of-month rule table. Conflicting duplicates for
// the same (doctor, week, weekday) slot are rejected.
func WeekRules(t *Table, doctors, locations map[string]struct{}, log logger.Logger) (*model.WeekRules, error) {
	cols, err := t.columns("doctor_id", "week_of_month", "weekday", "location_id")
	if err != nil {
		return nil, err
	}
	rules := model.NewWeekRules()
	for i, row := range t.Rows {
		rowNum := i + 1
		docID := cell(row, cols["doctor_id"])
		if docID == "" {
			continue
		}
		if _, ok := doctors[docID]; !ok {
			log.Warnf("%s row %d: unknown doctor_id %q, row skipped", t.Source, rowNum, docID)
			continue
		}
		locID := cell(row, cols["location_id"])
		if _, ok := locations[locID]; !ok {
			log.Warnf("%s row %d: unknown location_id %q, row skipped", t.Source, rowNum, locID)
			continue
		}
		weekOfMonth, err := strconv.Atoi(cell(row, cols["week_of_month"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "week_of_month", Reason: "must be an integer 1..5"}
		}
		weekday, err := model.ParseWeekday(cell(row, cols["weekday"]))
		if err != nil {
			return nil, &InputError{Source: t.Source, Row: rowNum, Column: "weekday", Reason: err.Error()}
		}
		rule := model.WeekRule{DoctorID: docID, WeekOfMonth: weekOfMonth, Weekday: weekday, LocationID: locID}
		if err := rules.Add(rule); err != nil {
			return nil, &ReferenceError{Source: t.Source, Row: rowNum, Reason: err.Error()}
		}
	}
	return rules, nil
}

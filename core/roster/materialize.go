package roster

import (
	"fmt"
	"sort"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// Materialize reconstructs the typed schedule from the solver assignment.
// Every session appears, structurally infeasible ones with an empty doctor.
// The summed per-row scores must match the solver objective exactly; a
// mismatch means the pipeline corrupted state somewhere and is fatal.
func Materialize(elig *Eligibility, asn model.Assignment, prefs model.Preferences, defaultScore int, objective int64) (model.Schedule, error) {
	names := make(map[string]string, len(elig.Doctors))
	for _, d := range elig.Doctors {
		names[d.ID] = d.Name
	}

	rows := make([]model.ScheduleRow, 0, len(elig.Sessions)+len(elig.Excluded))
	total := 0
	for _, s := range elig.Sessions {
		row := sessionRow(s)
		doctorID, ok := asn[s.ID]
		if !ok {
			return model.Schedule{}, &InternalError{
				Reason: fmt.Sprintf("session %s missing from assignment", s.ID),
			}
		}
		row.DoctorID = doctorID
		row.DoctorName = names[doctorID]
		row.Score = prefs.Score(doctorID, s.LocationID, defaultScore)
		total += row.Score
		rows = append(rows, row)
	}
	for _, s := range elig.Excluded {
		rows = append(rows, sessionRow(s))
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.SessionID < b.SessionID
	})

	if int64(total) != objective {
		return model.Schedule{}, &InternalError{
			Reason: fmt.Sprintf("materialized score %d disagrees with solver objective %d", total, objective),
		}
	}
	return model.Schedule{Rows: rows, TotalScore: total}, nil
}

func sessionRow(s model.Session) model.ScheduleRow {
	return model.ScheduleRow{
		SessionID:     s.ID,
		Date:          s.Date,
		Start:         s.Start,
		End:           s.End,
		LocationID:    s.LocationID,
		Room:          s.Room,
		RequiredSkill: s.RequiredSkill,
	}
}

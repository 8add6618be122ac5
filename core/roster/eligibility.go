package roster

import (
	"sort"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// Reason classifies which rule removed a candidate doctor from a session.
type Reason string

const (
	ReasonUnavailable Reason = "unavailable"
	ReasonSkill       Reason = "skill"
	ReasonWorkday     Reason = "workday"
	ReasonWeekRule    Reason = "week_rule"
	ReasonPinned      Reason = "pinned"
)

// Diagnostic records, per structurally infeasible session, how many
// candidates each rule class eliminated.
type Diagnostic struct {
	SessionID string
	Removed   map[Reason]int
}

// Eligibility is the preprocessed view of a planning run: doctors and
// sessions in arena order, candidate doctor indices per planned session, and
// the sessions excluded because nobody can take them.
type Eligibility struct {
	// Doctors sorted by id; indices below refer into this slice.
	Doctors []model.Doctor
	// Sessions that enter the model, sorted by (date, start, id).
	Sessions []model.Session
	// Eligible doctor indices per session, parallel to Sessions.
	Eligible [][]int
	// Excluded sessions (empty candidate set), same sort order.
	Excluded []model.Session
	// Diagnostics parallel to Excluded.
	Diagnostics []Diagnostic
}

// ComputeEligibility applies unavailability, skill, workday cadence, week
// rules, and pinning per session. Sessions whose candidate set comes out
// empty are excluded from the model and reported with a reason histogram.
func ComputeEligibility(in *model.Inputs) *Eligibility {
	doctors := make([]model.Doctor, len(in.Doctors))
	copy(doctors, in.Doctors)
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].ID < doctors[j].ID })

	sessions := make([]model.Session, len(in.Sessions))
	copy(sessions, in.Sessions)
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})

	e := &Eligibility{Doctors: doctors}
	for _, s := range sessions {
		weekday := model.Weekday1to7(s.Date)
		weekOfMonth := model.WeekOfMonth(s.Date)
		removed := make(map[Reason]int)
		var cand []int
		for i, d := range doctors {
			switch {
			case s.PinnedDoctorID != "" && d.ID != s.PinnedDoctorID:
				removed[ReasonPinned]++
			case d.UnavailableOn(s.Date):
				removed[ReasonUnavailable]++
			case s.RequiredSkill != "" && !d.HasSkill(s.RequiredSkill):
				removed[ReasonSkill]++
			case !in.Workdays.Allows(d.ID, weekday) && !d.Available.Has(s.Date):
				removed[ReasonWorkday]++
			case weekRuleBlocks(in.WeekRules, d.ID, weekOfMonth, weekday, s.LocationID):
				removed[ReasonWeekRule]++
			default:
				cand = append(cand, i)
			}
		}
		if len(cand) == 0 {
			e.Excluded = append(e.Excluded, s)
			e.Diagnostics = append(e.Diagnostics, Diagnostic{SessionID: s.ID, Removed: removed})
			continue
		}
		e.Sessions = append(e.Sessions, s)
		e.Eligible = append(e.Eligible, cand)
	}
	return e
}

// weekRuleBlocks reports whether a week rule pins the doctor to a different
// location on the session's (week-of-month, weekday) slot. No matching rule
// means no restriction.
func weekRuleBlocks(rules *model.WeekRules, doctorID string, weekOfMonth, weekday int, locationID string) bool {
	required, ok := rules.RequiredLocation(doctorID, weekOfMonth, weekday)
	return ok && required != locationID
}

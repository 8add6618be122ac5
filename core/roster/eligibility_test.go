package roster

import (
	"testing"
	"time"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func tod(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	v, err := model.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return v
}

func baseInputs() *model.Inputs {
	return &model.Inputs{
		Preferences: make(model.Preferences),
		TravelTimes: make(model.TravelTimes),
		Workdays:    make(model.Workdays),
		WeekRules:   model.NewWeekRules(),
	}
}

func doctor(id string, maxSessions int, skills ...string) model.Doctor {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return model.Doctor{
		ID: id, Name: "Dr. " + id, MaxSessions: maxSessions,
		Unavailable: make(model.DateSet), Available: make(model.DateSet), Skills: set,
	}
}

func TestEligibilitySkillFilter(t *testing.T) {
	in := baseInputs()
	in.Doctors = []model.Doctor{doctor("A", 5, "algemeen"), doctor("B", 5, "algemeen", "cardio")}
	in.Locations = []model.Location{{ID: "L1", Name: "Noord"}}
	in.Sessions = []model.Session{{
		ID: "s1", Date: date(t, "2025-06-03"), LocationID: "L1",
		Start: tod(t, "09:00"), End: tod(t, "12:00"), RequiredSkill: "cardio",
	}}

	e := ComputeEligibility(in)
	if len(e.Sessions) != 1 || len(e.Excluded) != 0 {
		t.Fatalf("expected one planned session")
	}
	if len(e.Eligible[0]) != 1 || e.Doctors[e.Eligible[0][0]].ID != "B" {
		t.Fatalf("expected only B eligible, got %v", e.Eligible[0])
	}
}

func TestEligibilityUnavailableWins(t *testing.T) {
	in := baseInputs()
	d := doctor("A", 5)
	d.Unavailable.Add(date(t, "2025-06-03"))
	in.Doctors = []model.Doctor{d}
	in.Sessions = []model.Session{{
		ID: "s1", Date: date(t, "2025-06-03"), LocationID: "L1",
		Start: tod(t, "09:00"), End: tod(t, "12:00"),
	}}

	e := ComputeEligibility(in)
	if len(e.Excluded) != 1 {
		t.Fatalf("expected session excluded")
	}
	if e.Diagnostics[0].Removed[ReasonUnavailable] != 1 {
		t.Fatalf("expected unavailability in histogram, got %v", e.Diagnostics[0].Removed)
	}
}

func TestEligibilityWorkdayCadence(t *testing.T) {
	in := baseInputs()
	in.Doctors = []model.Doctor{doctor("A", 5)}
	in.Workdays.Add("A", 1) // Mondays only
	// 2025-06-03 is a Tuesday.
	in.Sessions = []model.Session{{
		ID: "s1", Date: date(t, "2025-06-03"), LocationID: "L1",
		Start: tod(t, "09:00"), End: tod(t, "12:00"),
	}}

	e := ComputeEligibility(in)
	if len(e.Excluded) != 1 {
		t.Fatalf("expected exclusion by workday rule")
	}
	if e.Diagnostics[0].Removed[ReasonWorkday] != 1 {
		t.Fatalf("expected workday in histogram, got %v", e.Diagnostics[0].Removed)
	}
}

func TestEligibilityAvailableDateOverridesCadence(t *testing.T) {
	in := baseInputs()
	d := doctor("A", 5)
	d.Available.Add(date(t, "2025-06-03"))
	in.Doctors = []model.Doctor{d}
	in.Workdays.Add("A", 1)
	in.Sessions = []model.Session{{
		ID: "s1", Date: date(t, "2025-06-03"), LocationID: "L1",
		Start: tod(t, "09:00"), End: tod(t, "12:00"),
	}}

	e := ComputeEligibility(in)
	if len(e.Sessions) != 1 {
		t.Fatalf("explicit available date must override cadence")
	}
}

func TestEligibilityWeekRule(t *testing.T) {
	in := baseInputs()
	in.Doctors = []model.Doctor{doctor("A", 5)}
	// 2025-06-10 is the second Tuesday of June (day 10, bucket 2).
	if err := in.WeekRules.Add(model.WeekRule{DoctorID: "A", WeekOfMonth: 2, Weekday: 2, LocationID: "L1"}); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	in.Sessions = []model.Session{
		{ID: "s1", Date: date(t, "2025-06-10"), LocationID: "L2", Start: tod(t, "09:00"), End: tod(t, "12:00")},
		{ID: "s2", Date: date(t, "2025-06-10"), LocationID: "L1", Start: tod(t, "13:00"), End: tod(t, "16:00")},
		{ID: "s3", Date: date(t, "2025-06-17"), LocationID: "L2", Start: tod(t, "09:00"), End: tod(t, "12:00")},
	}

	e := ComputeEligibility(in)
	if len(e.Excluded) != 1 || e.Excluded[0].ID != "s1" {
		t.Fatalf("expected s1 excluded by week rule, got %+v", e.Excluded)
	}
	if e.Diagnostics[0].Removed[ReasonWeekRule] != 1 {
		t.Fatalf("expected week_rule in histogram, got %v", e.Diagnostics[0].Removed)
	}
	// s2 matches the required location; s3 is outside the rule's week.
	if len(e.Sessions) != 2 {
		t.Fatalf("expected s2 and s3 planned")
	}
}

func TestEligibilityPinnedDoctor(t *testing.T) {
	in := baseInputs()
	in.Doctors = []model.Doctor{doctor("A", 5), doctor("B", 5)}
	in.Sessions = []model.Session{{
		ID: "s1", Date: date(t, "2025-06-03"), LocationID: "L1",
		Start: tod(t, "09:00"), End: tod(t, "12:00"), PinnedDoctorID: "B",
	}}

	e := ComputeEligibility(in)
	if len(e.Eligible[0]) != 1 || e.Doctors[e.Eligible[0][0]].ID != "B" {
		t.Fatalf("expected pin to B, got %v", e.Eligible[0])
	}
}

func TestEligibilityMonotoneUnderRuleRemoval(t *testing.T) {
	in := baseInputs()
	d := doctor("A", 5)
	d.Unavailable.Add(date(t, "2025-06-03"))
	in.Doctors = []model.Doctor{d, doctor("B", 5)}
	in.Workdays.Add("B", 1)
	in.Sessions = []model.Session{{
		ID: "s1", Date: date(t, "2025-06-03"), LocationID: "L1",
		Start: tod(t, "09:00"), End: tod(t, "12:00"),
	}}

	restricted := ComputeEligibility(in)

	// Remove every rule: eligibility may only grow.
	in.Doctors[0].Unavailable = make(model.DateSet)
	in.Workdays = make(model.Workdays)
	relaxed := ComputeEligibility(in)

	restrictedCount := 0
	if len(restricted.Sessions) > 0 {
		restrictedCount = len(restricted.Eligible[0])
	}
	if len(relaxed.Sessions) != 1 {
		t.Fatalf("relaxed run must keep the session")
	}
	if len(relaxed.Eligible[0]) < restrictedCount {
		t.Fatalf("eligibility shrank after removing rules")
	}
	if len(relaxed.Eligible[0]) != 2 {
		t.Fatalf("expected both doctors eligible, got %d", len(relaxed.Eligible[0]))
	}
}

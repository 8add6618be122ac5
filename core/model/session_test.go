package model

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return tod
}

func TestParseTimeOfDay(t *testing.T) {
	if got := mustTime(t, "09:30"); got != TimeOfDay(9*60+30) {
		t.Fatalf("expected 570 got %d", got)
	}
	if s := mustTime(t, "09:05").String(); s != "09:05" {
		t.Fatalf("expected 09:05 got %s", s)
	}
	if c := mustTime(t, "14:00").Compact(); c != "1400" {
		t.Fatalf("expected 1400 got %s", c)
	}
	for _, in := range []string{"", "9h30", "24:00", "12:60", "12"} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Fatalf("ParseTimeOfDay(%q): expected error", in)
		}
	}
}

func TestSessionOverlap(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	base := Session{ID: "a", Date: day, Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")}

	overlapping := Session{ID: "b", Date: day, Start: mustTime(t, "09:30"), End: mustTime(t, "10:30")}
	if !base.Overlaps(overlapping) || !overlapping.Overlaps(base) {
		t.Fatalf("expected overlap")
	}

	adjacent := Session{ID: "c", Date: day, Start: mustTime(t, "10:00"), End: mustTime(t, "11:00")}
	if base.Overlaps(adjacent) {
		t.Fatalf("touching intervals must not overlap")
	}

	otherDay := Session{ID: "d", Date: day.AddDate(0, 0, 1), Start: base.Start, End: base.End}
	if base.Overlaps(otherDay) {
		t.Fatalf("different days must not overlap")
	}
}

func TestSessionValidate(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	bad := Session{ID: "s", Date: day, Start: mustTime(t, "10:00"), End: mustTime(t, "09:00")}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for end before start")
	}
}

func TestWeekRulesConflict(t *testing.T) {
	rules := NewWeekRules()
	rule := WeekRule{DoctorID: "d1", WeekOfMonth: 2, Weekday: 2, LocationID: "L1"}
	if err := rules.Add(rule); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Identical duplicate is idempotent.
	if err := rules.Add(rule); err != nil {
		t.Fatalf("idempotent add: %v", err)
	}
	// Same slot, different location is a conflict.
	rule.LocationID = "L2"
	if err := rules.Add(rule); err == nil {
		t.Fatalf("expected conflict error")
	}
	if loc, ok := rules.RequiredLocation("d1", 2, 2); !ok || loc != "L1" {
		t.Fatalf("expected L1 got %q ok=%v", loc, ok)
	}
	if _, ok := rules.RequiredLocation("d1", 3, 2); ok {
		t.Fatalf("unexpected rule match")
	}
}

func TestWorkdaysAllows(t *testing.T) {
	w := make(Workdays)
	if !w.Allows("d1", 6) {
		t.Fatalf("no rules must allow every weekday")
	}
	w.Add("d1", 1)
	w.Add("d1", 2)
	if w.Allows("d1", 6) {
		t.Fatalf("saturday not listed, must be blocked")
	}
	if !w.Allows("d1", 2) {
		t.Fatalf("tuesday listed, must be allowed")
	}
	if !w.Allows("d2", 6) {
		t.Fatalf("other doctors unrestricted")
	}
}

func TestPreferencesScoreDefault(t *testing.T) {
	p := Preferences{{DoctorID: "d1", LocationID: "L1"}: 5}
	if got := p.Score("d1", "L1", 0); got != 5 {
		t.Fatalf("expected 5 got %d", got)
	}
	if got := p.Score("d1", "L2", -1); got != -1 {
		t.Fatalf("expected default -1 got %d", got)
	}
}

func TestTravelTimesReverseLookup(t *testing.T) {
	tt := TravelTimes{{From: "L1", To: "L2"}: 25}
	if m, ok := tt.Minutes("L1", "L2"); !ok || m != 25 {
		t.Fatalf("forward lookup failed")
	}
	if m, ok := tt.Minutes("L2", "L1"); !ok || m != 25 {
		t.Fatalf("reverse lookup failed")
	}
	if _, ok := tt.Minutes("L1", "L3"); ok {
		t.Fatalf("unexpected route")
	}
}

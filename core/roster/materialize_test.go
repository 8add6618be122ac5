package roster

import (
	"errors"
	"testing"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

func TestMaterializeSortsAndSums(t *testing.T) {
	in := baseInputs()
	in.Doctors = []model.Doctor{doctor("A", 5)}
	in.Preferences[model.PrefKey{DoctorID: "A", LocationID: "L1"}] = 2
	in.Sessions = []model.Session{
		{ID: "s2", Date: date(t, "2025-06-03"), LocationID: "L1", Start: tod(t, "09:00"), End: tod(t, "10:00")},
		{ID: "s1", Date: date(t, "2025-06-02"), LocationID: "L1", Start: tod(t, "13:00"), End: tod(t, "14:00")},
		{ID: "s0", Date: date(t, "2025-06-02"), LocationID: "L1", Start: tod(t, "09:00"), End: tod(t, "10:00")},
	}
	e := ComputeEligibility(in)
	asn := model.Assignment{"s0": "A", "s1": "A", "s2": "A"}

	sched, err := Materialize(e, asn, in.Preferences, 0, 6)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	order := []string{"s0", "s1", "s2"}
	for i, want := range order {
		if sched.Rows[i].SessionID != want {
			t.Fatalf("row %d: expected %s got %s", i, want, sched.Rows[i].SessionID)
		}
	}
	if sched.TotalScore != 6 {
		t.Fatalf("expected total 6 got %d", sched.TotalScore)
	}
	if sched.Rows[0].DoctorName != "Dr. A" {
		t.Fatalf("expected display name, got %q", sched.Rows[0].DoctorName)
	}
}

func TestMaterializeObjectiveMismatch(t *testing.T) {
	in := baseInputs()
	in.Doctors = []model.Doctor{doctor("A", 5)}
	in.Sessions = []model.Session{
		{ID: "s1", Date: date(t, "2025-06-02"), LocationID: "L1", Start: tod(t, "09:00"), End: tod(t, "10:00")},
	}
	e := ComputeEligibility(in)
	asn := model.Assignment{"s1": "A"}

	_, err := Materialize(e, asn, in.Preferences, 0, 99)
	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Fatalf("expected InternalError got %v", err)
	}
}

func TestMaterializeMissingAssignment(t *testing.T) {
	in := baseInputs()
	in.Doctors = []model.Doctor{doctor("A", 5)}
	in.Sessions = []model.Session{
		{ID: "s1", Date: date(t, "2025-06-02"), LocationID: "L1", Start: tod(t, "09:00"), End: tod(t, "10:00")},
	}
	e := ComputeEligibility(in)

	_, err := Materialize(e, model.Assignment{}, in.Preferences, 0, 0)
	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Fatalf("expected InternalError got %v", err)
	}
}

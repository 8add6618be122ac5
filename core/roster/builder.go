package roster

import (
	"fmt"

	"github.com/giordipeperkamp/Megaplanner/core/cpsat"
	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// varKey addresses the decision variable for (session index, doctor index).
type varKey struct {
	session int
	doctor  int
}

// BuiltModel pairs a populated solver model with the variable map needed to
// read the assignment back out.
type BuiltModel struct {
	Model cpsat.Model
	Vars  map[varKey]cpsat.Var
	Elig  *Eligibility
}

// BuildModel constructs the integer program: one binary variable per
// (session, eligible doctor) pair, exactly-one per session, a capacity cap
// per doctor, and a pairwise exclusion for same-day overlapping sessions.
// Skills, unavailability, and cadence rules are already handled by variable
// elimination in the preprocessor, which keeps the model compact.
func BuildModel(m cpsat.Model, elig *Eligibility, prefs model.Preferences, defaultScore int) *BuiltModel {
	b := &BuiltModel{Model: m, Vars: make(map[varKey]cpsat.Var), Elig: elig}

	for sIdx, cand := range elig.Eligible {
		s := elig.Sessions[sIdx]
		for _, dIdx := range cand {
			name := fmt.Sprintf("x_%s_%s", elig.Doctors[dIdx].ID, s.ID)
			b.Vars[varKey{session: sIdx, doctor: dIdx}] = m.AddBinaryVar(name)
		}
	}

	ones := func(n int) []int64 {
		c := make([]int64, n)
		for i := range c {
			c[i] = 1
		}
		return c
	}

	// Exactly one doctor per session.
	for sIdx, cand := range elig.Eligible {
		vars := make([]cpsat.Var, len(cand))
		for k, dIdx := range cand {
			vars[k] = b.Vars[varKey{session: sIdx, doctor: dIdx}]
		}
		m.AddLinearEq(vars, ones(len(vars)), 1)
	}

	// Monthly capacity per doctor. All sessions in the horizon count.
	byDoctor := make([][]cpsat.Var, len(elig.Doctors))
	for sIdx, cand := range elig.Eligible {
		for _, dIdx := range cand {
			byDoctor[dIdx] = append(byDoctor[dIdx], b.Vars[varKey{session: sIdx, doctor: dIdx}])
		}
	}
	for dIdx, vars := range byDoctor {
		if len(vars) == 0 {
			continue
		}
		m.AddLinearLeq(vars, ones(len(vars)), int64(elig.Doctors[dIdx].MaxSessions))
	}

	// No same-day time overlap per doctor. Sessions are sorted by date, so
	// overlap candidates are consecutive runs sharing a date.
	eligibleSet := make([]map[int]struct{}, len(elig.Sessions))
	for sIdx, cand := range elig.Eligible {
		set := make(map[int]struct{}, len(cand))
		for _, dIdx := range cand {
			set[dIdx] = struct{}{}
		}
		eligibleSet[sIdx] = set
	}
	for i := 0; i < len(elig.Sessions); i++ {
		for j := i + 1; j < len(elig.Sessions); j++ {
			if !elig.Sessions[j].Date.Equal(elig.Sessions[i].Date) {
				break
			}
			if !elig.Sessions[i].Overlaps(elig.Sessions[j]) {
				continue
			}
			for _, dIdx := range elig.Eligible[i] {
				if _, ok := eligibleSet[j][dIdx]; !ok {
					continue
				}
				m.AddLinearLeq(
					[]cpsat.Var{
						b.Vars[varKey{session: i, doctor: dIdx}],
						b.Vars[varKey{session: j, doctor: dIdx}],
					},
					[]int64{1, 1}, 1)
			}
		}
	}

	// Objective: maximize summed preference scores. Zero-score terms are
	// skipped; they cannot move the optimum.
	var objVars []cpsat.Var
	var objCoeffs []int64
	for sIdx, cand := range elig.Eligible {
		s := elig.Sessions[sIdx]
		for _, dIdx := range cand {
			score := prefs.Score(elig.Doctors[dIdx].ID, s.LocationID, defaultScore)
			if score == 0 {
				continue
			}
			objVars = append(objVars, b.Vars[varKey{session: sIdx, doctor: dIdx}])
			objCoeffs = append(objCoeffs, int64(score))
		}
	}
	m.SetObjectiveMax(objVars, objCoeffs)

	return b
}

// Assignment reads the solved variable values back into a session -> doctor
// mapping.
func (b *BuiltModel) Assignment(sol cpsat.Solution) model.Assignment {
	asn := make(model.Assignment, len(b.Elig.Sessions))
	for key, v := range b.Vars {
		if sol.Value(v) {
			asn[b.Elig.Sessions[key.session].ID] = b.Elig.Doctors[key.doctor].ID
		}
	}
	return asn
}

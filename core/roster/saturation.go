package roster

import (
	"sort"
	"time"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// SaturationWitness explains infeasibility: a scope (a date, or "horizon"),
// the sessions that must be covered there, and the capacity the eligible
// doctors can actually supply.
type SaturationWitness struct {
	Scope    string
	Required int
	Capacity int
}

// ComputeWitness finds the tightest over-saturated scope, greedily from the
// eligibility sets. It checks every session date and the whole horizon; the
// scope with the largest shortfall wins, the horizon on a tie. A model can be
// infeasible without any scope showing a shortfall (overlap interactions);
// the horizon triple is still returned as the best available explanation.
func ComputeWitness(e *Eligibility) SaturationWitness {
	horizon := SaturationWitness{Scope: "horizon", Required: len(e.Sessions)}
	perDoctor := make([]int, len(e.Doctors))
	for _, cand := range e.Eligible {
		for _, dIdx := range cand {
			perDoctor[dIdx]++
		}
	}
	for dIdx, n := range perDoctor {
		if n == 0 {
			continue
		}
		horizon.Capacity += min(n, e.Doctors[dIdx].MaxSessions)
	}

	best := horizon
	bestDeficit := horizon.Required - horizon.Capacity

	for _, date := range sessionDates(e.Sessions) {
		w := dateWitness(e, date)
		if d := w.Required - w.Capacity; d > bestDeficit {
			best, bestDeficit = w, d
		}
	}
	return best
}

func sessionDates(sessions []model.Session) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, s := range sessions {
		if _, ok := seen[s.Date]; ok {
			continue
		}
		seen[s.Date] = struct{}{}
		dates = append(dates, s.Date)
	}
	return dates
}

// dateWitness computes required vs. available capacity for one date. Each
// doctor contributes at most their monthly cap and at most the size of a
// maximal non-overlapping subset of the sessions they are eligible for.
func dateWitness(e *Eligibility, date time.Time) SaturationWitness {
	w := SaturationWitness{Scope: model.FormatDate(date)}
	perDoctor := make([][]model.Session, len(e.Doctors))
	for sIdx, s := range e.Sessions {
		if !s.Date.Equal(date) {
			continue
		}
		w.Required++
		for _, dIdx := range e.Eligible[sIdx] {
			perDoctor[dIdx] = append(perDoctor[dIdx], s)
		}
	}
	for dIdx, sessions := range perDoctor {
		if len(sessions) == 0 {
			continue
		}
		w.Capacity += min(maxNonOverlapping(sessions), e.Doctors[dIdx].MaxSessions)
	}
	return w
}

// maxNonOverlapping is the classic earliest-end greedy count of mutually
// compatible intervals.
func maxNonOverlapping(sessions []model.Session) int {
	sorted := make([]model.Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].End < sorted[j].End })
	count := 0
	var lastEnd model.TimeOfDay = -1
	for _, s := range sorted {
		if s.Start >= lastEnd || lastEnd < 0 {
			count++
			lastEnd = s.End
		}
	}
	return count
}

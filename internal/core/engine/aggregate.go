package engine

import "github.com/example/tkitrace/internal/core/stage"

// Summary holds population-level aggregates of one snapshot.
type Summary struct {
	Total       int
	Dropped     int
	StageCounts [stage.Count]int
	Means       [TransitionCount]Mean
}

// Count returns the number of records currently at s.
func (s Summary) Count(st stage.Stage) int {
	if !st.Valid() {
		return 0
	}
	return s.StageCounts[st]
}

// Mean returns the mean duration of a transition.
func (s Summary) Mean(t Transition) Mean {
	if t < 0 || int(t) >= TransitionCount {
		return Mean{}
	}
	return s.Means[t]
}

// Aggregate counts records per stage and averages each duration over the
// records where it is present. Absent durations are excluded from both the
// sum and the divisor.
func Aggregate(records []DeviceRecord) Summary {
	var (
		summary = Summary{Total: len(records)}
		sums    [TransitionCount]int
		samples [TransitionCount]int
	)

	for _, r := range records {
		if r.Stage.Valid() {
			summary.StageCounts[r.Stage]++
		}
		for _, t := range Transitions {
			if d := r.Durations.Get(t); d.Valid {
				sums[t] += d.Value
				samples[t]++
			}
		}
	}

	for _, t := range Transitions {
		if samples[t] == 0 {
			continue
		}
		summary.Means[t] = Mean{
			Value:   float64(sums[t]) / float64(samples[t]),
			Samples: samples[t],
			Valid:   true,
		}
	}

	return summary
}

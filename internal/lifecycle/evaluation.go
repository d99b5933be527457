package lifecycle

import (
	"time"

	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/policy"
)

// StakeOutcome says what happens to the stake given the current status.
type StakeOutcome string

const (
	StakeNone      StakeOutcome = "none"
	StakePending   StakeOutcome = "pending"
	StakeAtRisk    StakeOutcome = "at_risk"
	StakeLost      StakeOutcome = "lost"
	StakeRecovered StakeOutcome = "recovered"
)

// Evaluation is the status plus the figures the dashboard shows next to it.
type Evaluation struct {
	Status         model.CommitmentStatus
	Misses         int
	AllowedMisses  int
	MissesLeft     int
	CheckedInToday bool
	// InDanger: active and today's check-in is still missing.
	InDanger     bool
	StakeOutcome StakeOutcome
}

// Evaluate runs Compute and collects the miss accounting for display.
// Misses counts every missed day of the required range, so it may exceed
// AllowedMisses by more than one on a failed commitment.
func Evaluate(in Input, now time.Time, stakeCents int64) Evaluation {
	today := Day(now)
	start := Day(in.StartDate)
	done := successDays(in.CheckIns)

	ev := Evaluation{
		Status:        Compute(in, now),
		AllowedMisses: policy.AllowedMisses(in.TaskType),
	}
	_, ev.CheckedInToday = done[today.Unix()]

	if !today.Before(start) {
		until, _ := requiredUntil(today, Day(in.EndDate))
		for d := start; !d.After(until); d = d.AddDate(0, 0, 1) {
			if _, ok := done[d.Unix()]; !ok {
				ev.Misses++
			}
		}
	}

	if left := ev.AllowedMisses - ev.Misses; left > 0 {
		ev.MissesLeft = left
	}
	ev.InDanger = ev.Status == model.StatusActive && !ev.CheckedInToday
	ev.StakeOutcome = OutcomeOf(ev.Status, stakeCents)
	return ev
}

// OutcomeOf maps a status to what it means for a stake of stakeCents.
func OutcomeOf(status model.CommitmentStatus, stakeCents int64) StakeOutcome {
	if stakeCents <= 0 {
		return StakeNone
	}
	switch status {
	case model.StatusFailed:
		return StakeLost
	case model.StatusCompleted:
		return StakeRecovered
	case model.StatusActive:
		return StakeAtRisk
	default:
		return StakePending
	}
}

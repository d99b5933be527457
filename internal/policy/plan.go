// Package policy maps subscription plans to the limits enforced when a
// commitment is created, and task types to their miss tolerance.
package policy

import (
	"github.com/qs3c/lifedebt_server/internal/model"
)

// Unlimited marks a limit that never binds.
const Unlimited = -1

// Limits is what a plan allows.
type Limits struct {
	Plan           model.Plan
	MaxActive      int   // concurrent created+active commitments
	MaxStakeCents  int64 // minor currency units
	AllowDailyHard bool
}

var table = map[model.Plan]Limits{
	model.PlanStudent: {
		Plan:           model.PlanStudent,
		MaxActive:      1,
		MaxStakeCents:  1000,
		AllowDailyHard: false,
	},
	model.PlanBuilder: {
		Plan:           model.PlanBuilder,
		MaxActive:      3,
		MaxStakeCents:  3000,
		AllowDailyHard: true,
	},
	model.PlanHardcore: {
		Plan:           model.PlanHardcore,
		MaxActive:      Unlimited,
		MaxStakeCents:  Unlimited,
		AllowDailyHard: true,
	},
}

// For returns the limits of plan. Anything outside the enumeration gets the
// student limits.
func For(plan model.Plan) Limits {
	if l, ok := table[plan]; ok {
		return l
	}
	return table[model.PlanStudent]
}

// CanOpen reports whether another commitment may be opened while open are
// already running.
func (l Limits) CanOpen(open int) bool {
	return l.MaxActive == Unlimited || open < l.MaxActive
}

func (l Limits) AllowsStake(cents int64) bool {
	return l.MaxStakeCents == Unlimited || cents <= l.MaxStakeCents
}

func (l Limits) AllowsTaskType(t model.TaskType) bool {
	if t == model.TaskDailyHard {
		return l.AllowDailyHard
	}
	return true
}

// AllowedMisses is the number of missed days a commitment of type t
// tolerates before it fails.
func AllowedMisses(t model.TaskType) int {
	switch t {
	case model.TaskDailyHard:
		return 0
	case model.TaskSessionsWeekly:
		return 2
	default:
		return 1
	}
}

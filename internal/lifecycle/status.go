// Package lifecycle derives a commitment's status from its date range and
// check-in history.
//
// All calendar arithmetic is done on UTC days: start and end dates, check-in
// dates and "today" are truncated with Day before they are compared.
package lifecycle

import (
	"time"

	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/policy"
)

// CheckIn is the part of a check-in record the engine looks at.
type CheckIn struct {
	Date    time.Time
	Success bool
}

// Input describes one commitment.
type Input struct {
	TaskType  model.TaskType
	StartDate time.Time
	EndDate   time.Time
	Status    model.CommitmentStatus
	CheckIns  []CheckIn
}

// FromModel builds an Input from a stored commitment and its preloaded
// check-ins.
func FromModel(c *model.Commitment) Input {
	in := Input{
		TaskType:  c.TaskType,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Status:    model.ParseStatus(string(c.Status)),
		CheckIns:  make([]CheckIn, 0, len(c.CheckIns)),
	}
	for _, ci := range c.CheckIns {
		in.CheckIns = append(in.CheckIns, CheckIn{Date: ci.Date, Success: ci.Success})
	}
	return in
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Compute returns the status that holds for in at instant now.
func Compute(in Input, now time.Time) model.CommitmentStatus {
	if in.Status.Terminal() {
		return in.Status
	}

	today := Day(now)
	start := Day(in.StartDate)
	if today.Before(start) {
		return model.StatusCreated
	}

	until, finished := requiredUntil(today, Day(in.EndDate))
	if until.Before(start) {
		return closing(finished)
	}

	budget := policy.AllowedMisses(in.TaskType)
	done := successDays(in.CheckIns)

	misses := 0
	for d := start; !d.After(until); d = d.AddDate(0, 0, 1) {
		if _, ok := done[d.Unix()]; ok {
			continue
		}
		misses++
		if misses > budget {
			return model.StatusFailed
		}
	}

	return closing(finished)
}

// requiredUntil is the last day that must carry a successful check-in.
// Today stays checkable until the period is over.
func requiredUntil(today, end time.Time) (time.Time, bool) {
	if today.After(end) {
		return end, true
	}
	return today.AddDate(0, 0, -1), false
}

func closing(finished bool) model.CommitmentStatus {
	if finished {
		return model.StatusCompleted
	}
	return model.StatusActive
}

func successDays(checkIns []CheckIn) map[int64]struct{} {
	days := make(map[int64]struct{}, len(checkIns))
	for _, ci := range checkIns {
		if ci.Success {
			days[Day(ci.Date).Unix()] = struct{}{}
		}
	}
	return days
}

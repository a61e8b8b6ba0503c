// Package domain contains pure business types with ZERO infrastructure imports.
// It imports no other package of this module.
package domain

import (
	"math"
	"time"
)

// ─── Journey Types ──────────────────────────────────────────────────────────

// JourneyID is the dense, creation-ordered journey identifier (starts at 0).
type JourneyID int64

// Amount is a non-negative quantity of the custodied unit of value.
type Amount int64

// MaxAmount is the largest representable balance or deposit.
const MaxAmount Amount = math.MaxInt64

// DefaultDayLength is the logical length of one journey day.
const DefaultDayLength = 24 * time.Hour

// Journey is a single accountability pledge.
type Journey struct {
	ID          JourneyID `json:"id"`
	Creator     Identity  `json:"creator"`
	Action      string    `json:"action"`
	Format      string    `json:"format"`
	Duration    int64     `json:"duration"`    // whole days
	DailyValue  int64     `json:"daily_value"` // per-day progress target
	Description string    `json:"description"`
	Sink        Identity  `json:"sink"` // receives the deposit on failure
	StartDate   time.Time `json:"start_date"`

	CurrentValue int64  `json:"current_value"`
	Deposit      Amount `json:"deposit"`
	Completed    bool   `json:"completed"`
}

// Target is the cumulative progress needed for success.
// Creation guarantees DailyValue*Duration does not overflow.
func (j Journey) Target() int64 {
	return j.DailyValue * j.Duration
}

// EndsAt returns the instant the commitment window closes.
func (j Journey) EndsAt(dayLength time.Duration) time.Time {
	return j.StartDate.Add(time.Duration(j.Duration) * dayLength)
}

// IsOpen reports whether progress may still be recorded at now.
func (j Journey) IsOpen(now time.Time, dayLength time.Duration) bool {
	return now.Before(j.EndsAt(dayLength))
}

// Succeeded reports whether the recorded progress meets the target.
func (j Journey) Succeeded() bool {
	return j.CurrentValue >= j.Target()
}

// Payee is the identity that receives the deposit at settlement.
func (j Journey) Payee() Identity {
	if j.Succeeded() {
		return j.Creator
	}
	return j.Sink
}

// JourneyParams are the caller-supplied creation inputs.
type JourneyParams struct {
	Action      string   `json:"action"`
	Format      string   `json:"format"`
	Duration    int64    `json:"duration"`
	DailyValue  int64    `json:"daily_value"`
	Description string   `json:"description"`
	Sink        Identity `json:"sink"`
	Fee         Amount   `json:"fee"`
	Attached    Amount   `json:"attached"`
}

// Outcome is the settlement result of a journey.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Settlement describes a completed journey's fund movement.
type Settlement struct {
	JourneyID JourneyID `json:"journey_id"`
	Outcome   Outcome   `json:"outcome"`
	Payee     Identity  `json:"payee"`
	Amount    Amount    `json:"amount"`
	SettledAt time.Time `json:"settled_at"`
}

package decision

import "github.com/shopspring/decimal"

// Status is the lifecycle state of a loan application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	// StatusRejected is part of the data model but Decide never returns it.
	StatusRejected Status = "rejected"
)

// Reason accompanies every automated decision.
const Reason = "Automated decision based on initial criteria"

const (
	seniorAge    = 60
	fastTrackAge = 25
)

var (
	largeExposure  = decimal.NewFromInt(1_000_000)
	fastTrackLimit = decimal.NewFromInt(50_000)
)

// Active reports whether the status blocks a new submission by the same applicant.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Decide maps a validated applicant's age and requested amount to a status. The
// rules are evaluated in order and the first match wins.
func Decide(age int, amount decimal.Decimal) Status {
	switch {
	case amount.GreaterThanOrEqual(largeExposure):
		return StatusPending
	case age >= seniorAge:
		return StatusPending
	case amount.LessThan(fastTrackLimit) && age >= fastTrackAge && age < seniorAge:
		return StatusApproved
	default:
		// Young applicants and mid-sized loans land here; there is no manual
		// review tier yet.
		return StatusApproved
	}
}

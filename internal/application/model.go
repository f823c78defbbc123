package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/loandesk/loandesk/internal/decision"
)

// Application is a submitted loan application. There is at most one per phone
// number and it is never edited after the decision.
type Application struct {
	ID             string
	Phone          string
	FullName       string
	NationalID     string
	Email          string
	DateOfBirth    string
	LoanAmount     decimal.Decimal
	LoanTerm       int
	Purpose        string
	Status         decision.Status
	DecisionReason string
	SubmittedAt    time.Time
}

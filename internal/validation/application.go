package validation

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationInput carries the raw submitted fields. LoanAmount and LoanTerm are
// left untyped so that numbers and numeric strings are both coerced here.
type ApplicationInput struct {
	FullName    string
	NationalID  string
	Email       string
	DateOfBirth string
	LoanAmount  any
	LoanTerm    any
	Purpose     string
}

// Application is the normalized form of an input that passed every check.
type Application struct {
	FullName    string
	NationalID  string
	Email       string
	DateOfBirth string
	BirthDate   time.Time
	Age         int
	LoanAmount  decimal.Decimal
	LoanTerm    int
	Purpose     string
}

// ValidateApplication runs every field check and returns all failures together as
// Errors. The returned Application is only meaningful when err is nil.
func ValidateApplication(in ApplicationInput, now time.Time) (Application, error) {
	errs := Errors{}
	var (
		out Application
		err error
	)

	out.FullName, err = FullName(in.FullName)
	errs.add(FieldFullName, err)

	out.NationalID, err = NationalID(in.NationalID)
	errs.add(FieldNationalID, err)

	out.BirthDate, out.Age, err = DateOfBirth(in.DateOfBirth, now)
	errs.add(FieldDateOfBirth, err)
	out.DateOfBirth = out.BirthDate.Format(DateLayout)

	out.Email, err = Email(in.Email)
	errs.add(FieldEmail, err)

	out.LoanAmount, err = LoanAmount(in.LoanAmount)
	errs.add(FieldLoanAmount, err)

	out.LoanTerm, err = LoanTerm(in.LoanTerm)
	errs.add(FieldLoanTerm, err)

	out.Purpose, err = Purpose(in.Purpose)
	errs.add(FieldPurpose, err)

	if len(errs) > 0 {
		return Application{}, errs
	}
	return out, nil
}

package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var today = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func TestPhoneNumber(t *testing.T) {
	cases := []struct {
		raw   string
		valid bool
	}{
		{"+256700000001", true},
		{"256700000002", true},
		{"0700000003", true},
		{"+256 700 000 004", true},
		{"0700-000-005", true},
		{"123456789", true},
		{"123456789012345", true},
		{"12345678", false},
		{"1234567890123456", false},
		{"invalid", false},
		{"", false},
		{"+256(700)000001", false},
		{"256.700.000.001", false},
		{"+-+ - ", false},
	}
	for _, tc := range cases {
		digits, err := PhoneNumber(tc.raw)
		if tc.valid && err != nil {
			t.Fatalf("%q: expected valid, got %v", tc.raw, err)
		}
		if !tc.valid && !errors.Is(err, ErrPhoneFormat) {
			t.Fatalf("%q: expected ErrPhoneFormat, got %v (digits %q)", tc.raw, err, digits)
		}
	}

	digits, _ := PhoneNumber("+256 700-000 004")
	if digits != "256700000004" {
		t.Fatalf("unexpected digits %q", digits)
	}
}

func TestLoanAmountBounds(t *testing.T) {
	cases := []struct {
		raw  any
		want error
	}{
		{json.Number("1000"), nil},
		{json.Number("5000000"), nil},
		{json.Number("999"), ErrAmountTooSmall},
		{json.Number("5000001"), ErrAmountTooLarge},
		{json.Number("5000000.01"), ErrAmountTooLarge},
		{json.Number("0"), ErrAmountNotPos},
		{json.Number("-10"), ErrAmountNotPos},
		{45000.0, nil},
		{"2500.50", nil},
		{" 1000 ", nil},
		{"abc", ErrAmountInvalid},
		{"", ErrAmountInvalid},
		{nil, ErrAmountInvalid},
		{true, ErrAmountInvalid},
		{map[string]any{}, ErrAmountInvalid},
		{json.Number("1e100000000"), ErrAmountTooLarge},
		{json.Number("-1e100000000"), ErrAmountNotPos},
		{json.Number("1e-100000000"), ErrAmountNotPos},
		{"1e7", ErrAmountTooLarge},
		{"5e-1", ErrAmountTooSmall},
		{"Infinity", ErrAmountInvalid},
		{"NaN", ErrAmountInvalid},
		{"0x1p12", ErrAmountInvalid},
		{"1_000", ErrAmountInvalid},
		{"1000." + strings.Repeat("0", 80), ErrAmountInvalid},
		{1e300, ErrAmountTooLarge},
		{1e-300, ErrAmountTooSmall},
	}
	for _, tc := range cases {
		_, err := LoanAmount(tc.raw)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%v: expected %v, got %v", tc.raw, tc.want, err)
		}
	}

	amount, err := LoanAmount(json.Number("45000"))
	if err != nil || !amount.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("unexpected amount %s (%v)", amount, err)
	}
	amount, err = LoanAmount(json.Number("1000.005"))
	if err != nil || amount.String() != "1000.005" {
		t.Fatalf("expected sub-cent precision kept, got %s (%v)", amount, err)
	}
	if ErrAmountTooLarge.Error() != "Loan amount cannot exceed 5000000" {
		t.Fatalf("unexpected message %q", ErrAmountTooLarge.Error())
	}
}

func TestLoanTerm(t *testing.T) {
	for _, term := range []any{15, json.Number("30"), 45.0, "60"} {
		if _, err := LoanTerm(term); err != nil {
			t.Fatalf("%v: expected valid term, got %v", term, err)
		}
	}
	for _, term := range []any{0, 14, 16, 31, 90, json.Number("-30")} {
		if _, err := LoanTerm(term); !errors.Is(err, ErrTermNotAllowed) {
			t.Fatalf("%v: expected ErrTermNotAllowed, got %v", term, err)
		}
	}
	for _, term := range []any{nil, "thirty", "30.0", true} {
		if _, err := LoanTerm(term); !errors.Is(err, ErrTermInvalid) {
			t.Fatalf("%v: expected ErrTermInvalid, got %v", term, err)
		}
	}
	if got, err := LoanTerm(30.9); err != nil || got != 30 {
		t.Fatalf("expected fractional term to truncate to 30, got %d (%v)", got, err)
	}
	if ErrTermNotAllowed.Error() != "Loan term must be one of: 15, 30, 45, 60" {
		t.Fatalf("unexpected message %q", ErrTermNotAllowed.Error())
	}
}

func TestDateOfBirthAge(t *testing.T) {
	yesterday18 := today.AddDate(-18, 0, -1).Format(DateLayout)
	if _, age, err := DateOfBirth(yesterday18, today); err != nil || age != 18 {
		t.Fatalf("expected age 18 accepted, got %d (%v)", age, err)
	}

	tomorrow18 := today.AddDate(-18, 0, 1).Format(DateLayout)
	if _, age, err := DateOfBirth(tomorrow18, today); !errors.Is(err, ErrUnderage) || age != 17 {
		t.Fatalf("expected age 17 rejected, got %d (%v)", age, err)
	}

	if _, age, err := DateOfBirth("2007-06-15", today); err != nil || age != 18 {
		t.Fatalf("expected birthday today to count, got %d (%v)", age, err)
	}

	dob, _, err := DateOfBirth("1990-1-5", today)
	if err != nil || dob.Format(DateLayout) != "1990-01-05" {
		t.Fatalf("expected single-digit month and day accepted, got %s (%v)", dob, err)
	}

	for _, raw := range []string{"", "15/06/1990", "1990-13-01", "1990-02-30", "not-a-date"} {
		if _, _, err := DateOfBirth(raw, today); !errors.Is(err, ErrDateFormat) {
			t.Fatalf("%q: expected ErrDateFormat, got %v", raw, err)
		}
	}

	if _, _, err := DateOfBirth("2030-01-01", today); !errors.Is(err, ErrUnderage) {
		t.Fatalf("expected future date rejected as underage, got %v", err)
	}
}

func TestEmail(t *testing.T) {
	for _, raw := range []string{"", "   ", "john.doe@example.com", "a+b@mail.co"} {
		if _, err := Email(raw); err != nil {
			t.Fatalf("%q: expected valid, got %v", raw, err)
		}
	}
	for _, raw := range []string{"invalid-email", "a@b", "a@b.c", "@example.com", "john@exa mple.com"} {
		if _, err := Email(raw); !errors.Is(err, ErrEmailFormat) {
			t.Fatalf("%q: expected ErrEmailFormat, got %v", raw, err)
		}
	}
}

func TestTextFields(t *testing.T) {
	if _, err := FullName(" A "); !errors.Is(err, ErrFullName) {
		t.Fatalf("expected short name rejected, got %v", err)
	}
	if name, err := FullName("  Jo "); err != nil || name != "Jo" {
		t.Fatalf("expected trimmed name, got %q (%v)", name, err)
	}
	if _, err := NationalID("CM12"); !errors.Is(err, ErrNationalID) {
		t.Fatalf("expected short id rejected, got %v", err)
	}
	if _, err := NationalID("CM123"); err != nil {
		t.Fatalf("expected 5 char id accepted, got %v", err)
	}
	if _, err := Purpose("   "); !errors.Is(err, ErrPurposeRequired) {
		t.Fatalf("expected blank purpose rejected, got %v", err)
	}
}

func TestValidateApplicationCollectsEveryFailure(t *testing.T) {
	_, err := ValidateApplication(ApplicationInput{FullName: "John Doe"}, today)
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %v", err)
	}
	for _, field := range []string{FieldNationalID, FieldDateOfBirth, FieldLoanAmount, FieldLoanTerm, FieldPurpose} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
	if _, ok := errs[FieldFullName]; ok {
		t.Fatalf("full_name should be valid: %v", errs)
	}
	if _, ok := errs[FieldEmail]; ok {
		t.Fatalf("empty email should be valid: %v", errs)
	}
}

func TestValidateApplicationNormalizes(t *testing.T) {
	app, err := ValidateApplication(ApplicationInput{
		FullName:    " John Doe ",
		NationalID:  "CM12345",
		Email:       "",
		DateOfBirth: "1990-1-1",
		LoanAmount:  json.Number("45000"),
		LoanTerm:    json.Number("30"),
		Purpose:     " business ",
	}, today)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if app.DateOfBirth != "1990-01-01" {
		t.Fatalf("expected canonical date_of_birth, got %q", app.DateOfBirth)
	}
	if app.FullName != "John Doe" || app.Purpose != "business" {
		t.Fatalf("expected trimmed text fields, got %+v", app)
	}
	if app.Age != 35 || app.LoanTerm != 30 || !app.LoanAmount.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("unexpected normalized values: %+v", app)
	}
}

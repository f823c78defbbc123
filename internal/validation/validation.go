package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field names as they appear in request and error payloads.
const (
	FieldPhoneNumber = "phone_number"
	FieldFullName    = "full_name"
	FieldNationalID  = "national_id"
	FieldEmail       = "email"
	FieldDateOfBirth = "date_of_birth"
	FieldLoanAmount  = "loan_amount"
	FieldLoanTerm    = "loan_term"
	FieldPurpose     = "purpose"
)

const (
	// MinAge is the youngest accepted applicant age in whole years.
	MinAge = 18
	// DateLayout is the only accepted date_of_birth format.
	DateLayout = "2006-01-02"

	minPhoneDigits = 9
	maxPhoneDigits = 15

	// dobParseLayout also accepts single-digit months and days.
	dobParseLayout = "2006-1-2"

	maxAmountLen = 64
	minLoanFloat = 1_000.0
	maxLoanFloat = 5_000_000.0
)

var (
	// MinLoanAmount and MaxLoanAmount are inclusive bounds.
	MinLoanAmount = decimal.NewFromInt(1_000)
	MaxLoanAmount = decimal.NewFromInt(5_000_000)

	// AllowedLoanTerms lists the accepted terms, in days.
	AllowedLoanTerms = []int{15, 30, 45, 60}

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneStrip   = strings.NewReplacer("+", "", " ", "", "-", "")
)

var (
	ErrPhoneFormat     = errors.New("Invalid phone number format")
	ErrFullName        = errors.New("Full name must be at least 2 characters")
	ErrNationalID      = errors.New("Invalid national ID")
	ErrDateFormat      = errors.New("Invalid date format (use YYYY-MM-DD)")
	ErrUnderage        = fmt.Errorf("Must be at least %d years old", MinAge)
	ErrEmailFormat     = errors.New("Invalid email format")
	ErrAmountInvalid   = errors.New("Invalid loan amount")
	ErrAmountNotPos    = errors.New("Loan amount must be greater than zero")
	ErrAmountTooSmall  = fmt.Errorf("Loan amount must be at least %s", MinLoanAmount)
	ErrAmountTooLarge  = fmt.Errorf("Loan amount cannot exceed %s", MaxLoanAmount)
	ErrTermInvalid     = errors.New("Invalid loan term")
	ErrTermNotAllowed  = fmt.Errorf("Loan term must be one of: %s", joinInts(AllowedLoanTerms, ", "))
	ErrPurposeRequired = errors.New("Purpose is required")
)

// Errors maps a field name to the reason it was rejected.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) add(field string, err error) {
	if err != nil {
		e[field] = err.Error()
	}
}

// PhoneNumber reports whether raw is an acceptable phone number and returns its
// digits. Callers keep using the raw string as the identity key.
func PhoneNumber(raw string) (string, error) {
	if raw == "" {
		return "", ErrPhoneFormat
	}
	digits := phoneStrip.Replace(raw)
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", ErrPhoneFormat
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", ErrPhoneFormat
		}
	}
	return digits, nil
}

// Email accepts an empty value; anything else must look like local@domain.tld.
func Email(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", nil
	}
	if !emailPattern.MatchString(email) {
		return "", ErrEmailFormat
	}
	return email, nil
}

// Age returns the number of whole years between dob and now. A birthday later in
// the year than today's month/day has not counted yet.
func Age(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// DateOfBirth parses raw and checks the applicant is old enough. Single-digit
// months and days are accepted; callers store the date in DateLayout.
func DateOfBirth(raw string, now time.Time) (time.Time, int, error) {
	dob, err := time.Parse(dobParseLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, 0, ErrDateFormat
	}
	age := Age(dob, now)
	if age < MinAge {
		return dob, age, ErrUnderage
	}
	return dob, age, nil
}

func NationalID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if utf8.RuneCountInString(id) < 5 {
		return "", ErrNationalID
	}
	return id, nil
}

func FullName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) < 2 {
		return "", ErrFullName
	}
	return name, nil
}

func Purpose(raw string) (string, error) {
	purpose := strings.TrimSpace(raw)
	if purpose == "" {
		return "", ErrPurposeRequired
	}
	return purpose, nil
}

// LoanAmount coerces raw to a decimal and checks the inclusive bounds.
func LoanAmount(raw any) (decimal.Decimal, error) {
	amount, err := toDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	switch {
	case !amount.IsPositive():
		return amount, ErrAmountNotPos
	case amount.LessThan(MinLoanAmount):
		return amount, ErrAmountTooSmall
	case amount.GreaterThan(MaxLoanAmount):
		return amount, ErrAmountTooLarge
	}
	return amount, nil
}

// LoanTerm coerces raw to an integer number of days from the allowed set.
func LoanTerm(raw any) (int, error) {
	term, ok := toInt(raw)
	if !ok {
		return 0, ErrTermInvalid
	}
	for _, allowed := range AllowedLoanTerms {
		if term == allowed {
			return term, nil
		}
	}
	return term, ErrTermNotAllowed
}

// toDecimal screens the magnitude as a float64 before building the decimal, so
// literals such as 1e100000000 are rejected without big-number arithmetic. The
// bounds are exactly representable, which keeps the float comparisons exact.
func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case json.Number:
		return parseAmount(v.String())
	case string:
		return parseAmount(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, ErrAmountInvalid
		}
		if err := amountBounds(v); err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		return toDecimal(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	}
	return decimal.Zero, ErrAmountInvalid
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen || strings.ContainsAny(s, "xX_") {
		return decimal.Zero, ErrAmountInvalid
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			return decimal.Zero, ErrAmountInvalid
		}
		// Only overflow reports ErrRange; underflow parses as zero.
		if math.IsInf(f, 1) {
			return decimal.Zero, ErrAmountTooLarge
		}
		return decimal.Zero, ErrAmountNotPos
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrAmountInvalid
	}
	if err := amountBounds(f); err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmountInvalid
	}
	return d, nil
}

func amountBounds(f float64) error {
	switch {
	case f <= 0:
		return ErrAmountNotPos
	case f < minLoanFloat:
		return ErrAmountTooSmall
	case f > maxLoanFloat:
		return ErrAmountTooLarge
	}
	return nil
}

// toInt follows int() coercion: fractional numbers truncate toward zero, strings
// must be base-10 integers.
func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case float32:
		return toInt(float64(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

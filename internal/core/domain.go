package core

import (
	"errors"
)

const (
	MinYears   = 1
	MaxYears   = 60
	MaxRatePct = 20.0
)

const (
	FieldDeposit  Field = "deposit"
	FieldYears    Field = "years"
	FieldRate     Field = "rate"
	FieldStarting Field = "starting"
)

// Fields lists every input field in display order.
var Fields = []Field{FieldDeposit, FieldYears, FieldRate, FieldStarting}

type (
	Field string

	// RawInput holds the four form values exactly as typed.
	RawInput struct {
		MonthlyDeposit string
		Years          string
		ReturnRate     string
		StartingAmount string
	}

	InputSet struct {
		MonthlyDeposit          float64 `json:"monthly_deposit"`
		Years                   int     `json:"years"`
		AnnualReturnRatePercent float64 `json:"annual_return_rate_percent"`
		StartingAmount          float64 `json:"starting_amount"`
	}

	ProjectionPoint struct {
		Year    int     `json:"year"`
		Balance float64 `json:"balance"`
	}

	ProjectionResult struct {
		FutureValue      float64           `json:"future_value"`
		TotalContributed float64           `json:"total_contributed"`
		TotalGrowth      float64           `json:"total_growth"`
		Series           []ProjectionPoint `json:"series"`
	}
)

var (
	ErrInvalidInput = errors.New("invalid input")

	msgNonNegative = "must be 0 or more"
	msgMinYears    = "must be at least 1 year"
	msgMaxYears    = "maximum is 60 years"
	msgMaxRate     = "maximum is 20%"
)

// FieldError reports a single out-of-range input field.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string {
	return string(e.Field) + ": " + e.Message
}

// Unwrap lets callers match any field error with errors.Is(err, ErrInvalidInput).
func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// FieldErrors maps each failing field to its error. A nil or empty map means valid.
type FieldErrors map[Field]*FieldError

// Message returns the advisory text for a field, or "" when the field is fine.
func (fe FieldErrors) Message(f Field) string {
	if e, ok := fe[f]; ok {
		return e.Message
	}
	return ""
}

// Err joins the field errors in display order, or returns nil.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	errs := make([]error, 0, len(fe))
	for _, f := range Fields {
		if e, ok := fe[f]; ok {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}

// Strings flattens the errors for JSON responses.
func (fe FieldErrors) Strings() map[string]string {
	out := make(map[string]string, len(fe))
	for f, e := range fe {
		out[string(f)] = e.Message
	}
	return out
}

// Package core holds the investment projection engine and its input rules.
//
// This file parses raw form values the lenient way a browser form does:
// a leading numeric prefix is accepted and anything unparsable reads as zero.
// Range checks never rewrite a value; they only report it.
package core

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	hexPrefix   = regexp.MustCompile(`^([+-]?)0[xX]([0-9a-fA-F]+)`)
)

// Validation is the outcome of ParseInputs.
type Validation struct {
	Input  InputSet
	Valid  bool
	Errors FieldErrors
}

// ParseInputs parses the four raw values and range-checks each one
// independently, so every failing field carries its own message.
func ParseInputs(raw RawInput) Validation {
	in := InputSet{
		MonthlyDeposit:          ParseLooseFloat(raw.MonthlyDeposit),
		Years:                   ParseLooseInt(raw.Years),
		AnnualReturnRatePercent: ParseLooseFloat(raw.ReturnRate),
		StartingAmount:          ParseLooseFloat(raw.StartingAmount),
	}
	errs := in.check()
	return Validation{Input: in, Valid: len(errs) == 0, Errors: errs}
}

// Validate applies the range rules to an already-typed set.
func (in InputSet) Validate() error {
	return in.check().Err()
}

// FieldErrors returns the per-field report for an already-typed set.
func (in InputSet) FieldErrors() FieldErrors {
	return in.check()
}

func (in InputSet) check() FieldErrors {
	errs := FieldErrors{}
	add := func(f Field, msg string) {
		errs[f] = &FieldError{Field: f, Message: msg}
	}

	if in.MonthlyDeposit < 0 || math.IsNaN(in.MonthlyDeposit) {
		add(FieldDeposit, msgNonNegative)
	}

	switch {
	case in.Years < MinYears:
		add(FieldYears, msgMinYears)
	case in.Years > MaxYears:
		add(FieldYears, msgMaxYears)
	}

	switch {
	case in.AnnualReturnRatePercent < 0 || math.IsNaN(in.AnnualReturnRatePercent):
		add(FieldRate, msgNonNegative)
	case in.AnnualReturnRatePercent > MaxRatePct:
		add(FieldRate, msgMaxRate)
	}

	if in.StartingAmount < 0 || math.IsNaN(in.StartingAmount) {
		add(FieldStarting, msgNonNegative)
	}

	return errs
}

// ParseLooseFloat reads the longest numeric prefix of s. Empty or
// unparsable input reads as 0. "Infinity" and out-of-range exponents
// ("1e400") read as ±Inf; NaN is never produced.
func ParseLooseFloat(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return v
}

// ParseLooseInt reads the leading integer digits of s ("7.9" is 7).
// A 0x prefix switches to hexadecimal ("0x1A" is 26).
func ParseLooseInt(s string) int {
	s = strings.TrimSpace(s)
	base, m := 10, intPrefix.FindString(s)
	if h := hexPrefix.FindStringSubmatch(s); h != nil {
		base, m = 16, h[1]+h[2]
	}
	if m == "" {
		return 0
	}
	v, err := strconv.ParseInt(m, base, 0)
	if err != nil {
		// overflow: the value is far outside any valid range either way
		if strings.HasPrefix(m, "-") {
			return math.MinInt32
		}
		return math.MaxInt32
	}
	return int(v)
}

package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseLooseFloat(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"", 0},
		{"abc", 0},
		{"500", 500},
		{" 7.5 ", 7.5},
		{"12abc", 12},
		{".5", 0.5},
		{"5.", 5},
		{"-3", -3},
		{"+4", 4},
		{"1e3", 1000},
		{"1e", 1},
		{"1.2.3", 1.2},
		{"NaN", 0},
		{"1e-999", 0},
	}
	for _, tc := range cases {
		if got := ParseLooseFloat(tc.in); got != tc.out {
			t.Fatalf("ParseLooseFloat(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestParseLooseFloat_Infinite(t *testing.T) {
	cases := []struct {
		in   string
		sign int
	}{
		{"Infinity", 1},
		{"+Infinity", 1},
		{"-Infinity", -1},
		{"Infinity dollars", 1},
		{"1e400", 1},
		{"-1e400", -1},
	}
	for _, tc := range cases {
		if got := ParseLooseFloat(tc.in); !math.IsInf(got, tc.sign) {
			t.Fatalf("ParseLooseFloat(%q) = %v, want Inf(%d)", tc.in, got, tc.sign)
		}
	}
	for _, in := range []string{"infinity", "Inf", "NaN"} {
		if got := ParseLooseFloat(in); got != 0 {
			t.Fatalf("ParseLooseFloat(%q) = %v, want 0", in, got)
		}
	}

	v := ParseInputs(RawInput{MonthlyDeposit: "Infinity", Years: "5", ReturnRate: "7", StartingAmount: "-Infinity"})
	if v.Valid || v.Errors.Message(FieldStarting) != msgNonNegative || v.Errors.Message(FieldDeposit) != "" {
		t.Fatalf("unexpected validation %+v", v.Errors)
	}
}

func TestParseLooseInt(t *testing.T) {
	cases := []struct {
		in  string
		out int
	}{
		{"", 0},
		{"x", 0},
		{"30", 30},
		{"7.9", 7},
		{" 12 years", 12},
		{"-1", -1},
		{"0x1A", 26},
		{"-0x10", -16},
		{"0x", 0},
		{"0xg", 0},
		{"Infinity", 0},
		{"99999999999999999999", math.MaxInt32},
	}
	for _, tc := range cases {
		if got := ParseLooseInt(tc.in); got != tc.out {
			t.Fatalf("ParseLooseInt(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestParseInputs_Boundaries(t *testing.T) {
	cases := []struct {
		name      string
		raw       RawInput
		ok        bool
		badFields []Field
	}{
		{"years 1", RawInput{"100", "1", "5", "0"}, true, nil},
		{"years 60", RawInput{"100", "60", "5", "0"}, true, nil},
		{"years 0", RawInput{"100", "0", "5", "0"}, false, []Field{FieldYears}},
		{"years 61", RawInput{"100", "61", "5", "0"}, false, []Field{FieldYears}},
		{"years empty", RawInput{"100", "", "5", "0"}, false, []Field{FieldYears}},
		{"rate 0", RawInput{"100", "10", "0", "0"}, true, nil},
		{"rate 20", RawInput{"100", "10", "20", "0"}, true, nil},
		{"rate 20.0001", RawInput{"100", "10", "20.0001", "0"}, false, []Field{FieldRate}},
		{"rate negative", RawInput{"100", "10", "-0.5", "0"}, false, []Field{FieldRate}},
		{"empty deposit reads zero", RawInput{"", "10", "5", ""}, true, nil},
		{"all bad", RawInput{"-1", "99", "-2", "-3"}, false, []Field{FieldDeposit, FieldYears, FieldRate, FieldStarting}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ParseInputs(tc.raw)
			if v.Valid != tc.ok {
				t.Fatalf("valid = %v, want %v (errors %v)", v.Valid, tc.ok, v.Errors.Err())
			}
			if len(v.Errors) != len(tc.badFields) {
				t.Fatalf("got %d field errors, want %d: %v", len(v.Errors), len(tc.badFields), v.Errors.Err())
			}
			for _, f := range tc.badFields {
				if v.Errors.Message(f) == "" {
					t.Fatalf("expected an error on %s", f)
				}
			}
		})
	}
}

func TestParseInputs_MessagesAndNoClamping(t *testing.T) {
	v := ParseInputs(RawInput{MonthlyDeposit: "-5", Years: "61", ReturnRate: "25", StartingAmount: "-1"})

	want := map[Field]string{
		FieldDeposit:  "must be 0 or more",
		FieldYears:    "maximum is 60 years",
		FieldRate:     "maximum is 20%",
		FieldStarting: "must be 0 or more",
	}
	for f, msg := range want {
		if got := v.Errors.Message(f); got != msg {
			t.Fatalf("%s message = %q, want %q", f, got, msg)
		}
	}
	if v.Input.MonthlyDeposit != -5 || v.Input.Years != 61 || v.Input.AnnualReturnRatePercent != 25 {
		t.Fatalf("parsed values must not be clamped: %+v", v.Input)
	}

	low := ParseInputs(RawInput{Years: "0", ReturnRate: "-1"})
	if got := low.Errors.Message(FieldYears); got != "must be at least 1 year" {
		t.Fatalf("years message = %q", got)
	}
	if got := low.Errors.Message(FieldRate); got != "must be 0 or more" {
		t.Fatalf("rate message = %q", got)
	}
}

func TestInputSetValidate(t *testing.T) {
	good := InputSet{MonthlyDeposit: 1, Years: 1, AnnualReturnRatePercent: 0, StartingAmount: 0}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := InputSet{MonthlyDeposit: -1, Years: 0}
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput in chain, got %v", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != FieldDeposit {
		t.Fatalf("expected first field error on deposit, got %v", err)
	}
}

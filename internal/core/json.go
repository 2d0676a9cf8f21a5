package core

import (
	"encoding/json"
	"math"
)

// Inputs near the float64 limit overflow to ±Inf or NaN, which encoding/json
// refuses. These marshalers write such figures as null.

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Overflowed reports whether any figure of r left the float64 range.
func (r ProjectionResult) Overflowed() bool {
	if finite(r.FutureValue) == nil || finite(r.TotalContributed) == nil || finite(r.TotalGrowth) == nil {
		return true
	}
	for _, p := range r.Series {
		if finite(p.Balance) == nil {
			return true
		}
	}
	return false
}

func (in InputSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MonthlyDeposit          *float64 `json:"monthly_deposit"`
		Years                   int      `json:"years"`
		AnnualReturnRatePercent *float64 `json:"annual_return_rate_percent"`
		StartingAmount          *float64 `json:"starting_amount"`
	}{
		MonthlyDeposit:          finite(in.MonthlyDeposit),
		Years:                   in.Years,
		AnnualReturnRatePercent: finite(in.AnnualReturnRatePercent),
		StartingAmount:          finite(in.StartingAmount),
	})
}

func (p ProjectionPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Year    int      `json:"year"`
		Balance *float64 `json:"balance"`
	}{p.Year, finite(p.Balance)})
}

func (r ProjectionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FutureValue      *float64          `json:"future_value"`
		TotalContributed *float64          `json:"total_contributed"`
		TotalGrowth      *float64          `json:"total_growth"`
		Overflow         bool              `json:"overflow,omitempty"`
		Series           []ProjectionPoint `json:"series"`
	}{
		FutureValue:      finite(r.FutureValue),
		TotalContributed: finite(r.TotalContributed),
		TotalGrowth:      finite(r.TotalGrowth),
		Overflow:         r.Overflowed(),
		Series:           r.Series,
	})
}

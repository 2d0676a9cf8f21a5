package core

import "math"

const monthsPerYear = 12

// Project returns the balance after years of monthly compounding with a
// deposit at the end of every month. A zero rate takes the linear branch,
// which is the limit of the general formula as the rate goes to 0.
func Project(in InputSet, years int) float64 {
	if years == 0 {
		return in.StartingAmount
	}
	months := float64(years * monthsPerYear)

	if in.AnnualReturnRatePercent == 0 {
		return in.StartingAmount + in.MonthlyDeposit*months
	}

	monthlyRate := in.AnnualReturnRatePercent / 100 / monthsPerYear
	// growth is (1+r)^n - 1; expm1/log1p keep it exact for rates near 0
	growth := math.Expm1(months * math.Log1p(monthlyRate))
	compoundFactor := growth + 1

	fromStart := in.StartingAmount * compoundFactor
	fromDeposits := in.MonthlyDeposit * (growth / monthlyRate)
	return fromStart + fromDeposits
}

// ProjectAll computes the yearly series and the three summary figures.
// Invalid inputs or a zero horizon give a zero result with an empty series.
func ProjectAll(in InputSet) ProjectionResult {
	if in.Years == 0 || in.Validate() != nil {
		return ProjectionResult{Series: []ProjectionPoint{}}
	}

	series := make([]ProjectionPoint, 0, in.Years+1)
	for y := 0; y <= in.Years; y++ {
		series = append(series, ProjectionPoint{Year: y, Balance: Project(in, y)})
	}

	futureValue := Project(in, in.Years)
	totalContributed := in.StartingAmount + in.MonthlyDeposit*float64(in.Years*monthsPerYear)

	return ProjectionResult{
		FutureValue:      futureValue,
		TotalContributed: totalContributed,
		TotalGrowth:      futureValue - totalContributed,
		Series:           series,
	}
}

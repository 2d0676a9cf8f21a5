package core

import "fmt"

// Summary builds the one-line text offered for copying. It reports false
// when the inputs cannot be projected.
func Summary(in InputSet) (string, bool) {
	if in.Years == 0 || in.Validate() != nil {
		return "", false
	}
	fv := Project(in, in.Years)
	return fmt.Sprintf("Monthly: $%s, Years: %d, Return: %s%% → Future: %s",
		formatPlain(in.MonthlyDeposit),
		in.Years,
		formatPlain(in.AnnualReturnRatePercent),
		FormatCurrency(fv),
	), true
}

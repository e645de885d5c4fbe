package declaration

import "math"

// CreditColumns holds the computed statutory credit amounts, columns 17
// through 32 of a declaration row. The destination of a credit is decided by
// generation window (pre-2020 vs 2020 onward), restitution obligation and
// refund right; a given credit lands in exactly one column.
//
// The legacy pre-2017 accumulation slots (26-30), the additional-tax credit
// (31) and the capital-return credit (32) have no formula in the current
// model and are always emitted as zero. Same for the voluntary credit slot
// (25). These are deliberate no-ops pending the missing fiscal rules, not
// columns this package may repurpose.
type CreditColumns struct {
	Pre2020NoRefund     int64 // column 17, generated 2017-2019
	Pre2020Refund       int64 // column 18
	CurrentNoRefund     int64 // column 19, generated 2020 onward
	CurrentRefund       int64 // column 20
	RestitutionNoRefund int64 // column 21
	RestitutionRefund   int64 // column 22
	ExemptNoRefund      int64 // column 23
	ExemptRefund        int64 // column 24
	VoluntaryCreditTax  int64 // column 25, unimplemented upstream
	LegacyNoRefund      int64 // column 26, pre-2017 accumulation, unimplemented
	LegacyRefund        int64 // column 27, unimplemented
	LegacyExempt        int64 // column 28, unimplemented
	LegacyVoluntary     int64 // column 29, unimplemented
	LegacyOther         int64 // column 30, unimplemented
	AdditionalTax       int64 // column 31, unimplemented
	CapitalReturnCredit int64 // column 32, unimplemented
}

// CreditsOnTaxableIncome derives the credit associated with the
// credit-eligible income buckets and routes it to its destination column.
// A zero credit base short-circuits to all-zero columns without evaluating
// the rate, so an empty record never trips regime validation.
func CreditsOnTaxableIncome(a CategoryAmounts, cfg RegimeConfig) (CreditColumns, error) {
	var out CreditColumns
	base := a.CreditBase()
	if base == 0 {
		return out, nil
	}
	rate, err := CreditRate(cfg)
	if err != nil {
		return out, err
	}
	credit := int64(math.Round(float64(base) * rate))
	switch {
	case cfg.SubjectToRestitution:
		if cfg.HasRefundRight {
			out.RestitutionRefund = credit
		} else {
			out.RestitutionNoRefund = credit
		}
	case cfg.FiscalYear >= RestitutionBoundaryYear:
		if cfg.HasRefundRight {
			out.CurrentRefund = credit
		} else {
			out.CurrentNoRefund = credit
		}
	default:
		if cfg.HasRefundRight {
			out.Pre2020Refund = credit
		} else {
			out.Pre2020NoRefund = credit
		}
	}
	return out, nil
}

// CreditsOnExemptIncome derives the credit associated with the exempt-income
// bucket. Only the refund right selects the destination; exempt-income
// credits carry no restitution branch in the current model.
func CreditsOnExemptIncome(exempt int64, cfg RegimeConfig) (CreditColumns, error) {
	var out CreditColumns
	if exempt == 0 {
		return out, nil
	}
	rate, err := CreditRate(cfg)
	if err != nil {
		return out, err
	}
	credit := int64(math.Round(float64(exempt) * rate))
	if cfg.HasRefundRight {
		out.ExemptRefund = credit
	} else {
		out.ExemptNoRefund = credit
	}
	return out, nil
}

// ComputeCredits combines the taxable-income and exempt-income credit
// derivations for one row.
func ComputeCredits(a CategoryAmounts, cfg RegimeConfig) (CreditColumns, error) {
	taxable, err := CreditsOnTaxableIncome(a, cfg)
	if err != nil {
		return CreditColumns{}, err
	}
	exempt, err := CreditsOnExemptIncome(a.ExemptIncome, cfg)
	if err != nil {
		return CreditColumns{}, err
	}
	taxable.ExemptNoRefund = exempt.ExemptNoRefund
	taxable.ExemptRefund = exempt.ExemptRefund
	return taxable, nil
}

// Values returns the credits in declaration column order 17..32.
func (c CreditColumns) Values() [16]int64 {
	return [16]int64{
		c.Pre2020NoRefund, c.Pre2020Refund, c.CurrentNoRefund, c.CurrentRefund,
		c.RestitutionNoRefund, c.RestitutionRefund, c.ExemptNoRefund, c.ExemptRefund,
		c.VoluntaryCreditTax, c.LegacyNoRefund, c.LegacyRefund, c.LegacyExempt,
		c.LegacyVoluntary, c.LegacyOther, c.AdditionalTax, c.CapitalReturnCredit,
	}
}

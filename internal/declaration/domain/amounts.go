package declaration

import "math"

// AllocationFactors are the nine per-category fractions attached to a
// qualification record. Each factor is in [0,1] and their sum does not
// exceed 1; that invariant is enforced upstream before a record reaches
// this package.
type AllocationFactors struct {
	NoCreditRight    float64
	ExemptIncome     float64
	NonIncomeRevenue float64
	SubstituteTax    float64
	CapitalReturn    float64
	ExemptAdditional float64
	FullyTaxed       float64
	LegacyFund       float64
	OtherAmounts     float64
}

// CategoryAmounts are the declaration's monetary buckets, columns 5 through 16
// of a declaration row, in integer units of the filing currency.
//
// CreditablePrior and VoluntaryCredit have no allocation factor in the current
// qualification model and are always zero; the fields exist because the row
// schema and the credit base both reference them.
type CategoryAmounts struct {
	CreditableCurrent int64 // column 5, derived: total minus explicit allocations
	CreditablePrior   int64 // column 6
	VoluntaryCredit   int64 // column 7
	NoCreditRight     int64 // column 8
	ExemptIncome      int64 // column 9
	NonIncomeRevenue  int64 // column 10
	SubstituteTax     int64 // column 11
	CapitalReturn     int64 // column 12
	ExemptAdditional  int64 // column 13
	FullyTaxed        int64 // column 14
	LegacyFund        int64 // column 15
	OtherAmounts      int64 // column 16
}

// AmountsFromFactors applies the nine allocation factors to a total amount and
// derives the default creditable bucket as whatever the factors leave
// unallocated. Every bucket is rounded to the nearest integer currency unit.
func AmountsFromFactors(total float64, f AllocationFactors) CategoryAmounts {
	allocated := total * (f.NoCreditRight + f.ExemptIncome + f.NonIncomeRevenue +
		f.SubstituteTax + f.CapitalReturn + f.ExemptAdditional +
		f.FullyTaxed + f.LegacyFund + f.OtherAmounts)
	return CategoryAmounts{
		CreditableCurrent: roundAmount(math.Max(0, total-allocated)),
		NoCreditRight:     roundAmount(total * f.NoCreditRight),
		ExemptIncome:      roundAmount(total * f.ExemptIncome),
		NonIncomeRevenue:  roundAmount(total * f.NonIncomeRevenue),
		SubstituteTax:     roundAmount(total * f.SubstituteTax),
		CapitalReturn:     roundAmount(total * f.CapitalReturn),
		ExemptAdditional:  roundAmount(total * f.ExemptAdditional),
		FullyTaxed:        roundAmount(total * f.FullyTaxed),
		LegacyFund:        roundAmount(total * f.LegacyFund),
		OtherAmounts:      roundAmount(total * f.OtherAmounts),
	}
}

// CreditBase is the sum of the credit-eligible buckets. The no-credit-right
// bucket and the exemption buckets contribute nothing.
func (a CategoryAmounts) CreditBase() int64 {
	return a.CreditableCurrent + a.CreditablePrior + a.VoluntaryCredit
}

// Values returns the buckets in declaration column order 5..16.
func (a CategoryAmounts) Values() [12]int64 {
	return [12]int64{
		a.CreditableCurrent, a.CreditablePrior, a.VoluntaryCredit, a.NoCreditRight,
		a.ExemptIncome, a.NonIncomeRevenue, a.SubstituteTax, a.CapitalReturn,
		a.ExemptAdditional, a.FullyTaxed, a.LegacyFund, a.OtherAmounts,
	}
}

func roundAmount(v float64) int64 {
	return int64(math.Round(v))
}

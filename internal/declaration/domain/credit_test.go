package declaration

import (
	"errors"
	"math"
	"testing"
)

func validRegime() RegimeConfig {
	return RegimeConfig{
		TaxRegime:        TaxRegimeGeneral,
		CorporateTaxRate: 0.27,
		FiscalYear:       2024,
	}
}

func TestCreditRate_Valid(t *testing.T) {
	rate, err := CreditRate(validRegime())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.27 / 0.73
	if math.Abs(rate-want) > 1e-12 {
		t.Fatalf("expected rate %v, got %v", want, rate)
	}
}

func TestCreditRate_Invalid(t *testing.T) {
	cases := []struct {
		name string
		cfg  RegimeConfig
	}{
		{"zero rate", RegimeConfig{TaxRegime: TaxRegimeGeneral, CorporateTaxRate: 0, FiscalYear: 2024}},
		{"unit rate", RegimeConfig{TaxRegime: TaxRegimeGeneral, CorporateTaxRate: 1, FiscalYear: 2024}},
		{"negative rate", RegimeConfig{TaxRegime: TaxRegimeGeneral, CorporateTaxRate: -0.1, FiscalYear: 2024}},
		{"year before regime", RegimeConfig{TaxRegime: TaxRegimeGeneral, CorporateTaxRate: 0.25, FiscalYear: 2016}},
		{"missing regime tag", RegimeConfig{CorporateTaxRate: 0.25, FiscalYear: 2024}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CreditRate(tc.cfg); !errors.Is(err, ErrInvalidRegimeConfig) {
				t.Fatalf("expected ErrInvalidRegimeConfig, got %v", err)
			}
		})
	}
}

func TestCreditsOnTaxableIncome_ZeroBaseSkipsValidation(t *testing.T) {
	// Regime is broken on purpose: an empty base must not evaluate the rate.
	broken := RegimeConfig{CorporateTaxRate: 5, FiscalYear: 1999}
	got, err := CreditsOnTaxableIncome(CategoryAmounts{NoCreditRight: 1000}, broken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (CreditColumns{}) {
		t.Fatalf("expected all-zero credits, got %+v", got)
	}
}

func TestCreditsOnTaxableIncome_DecisionTable(t *testing.T) {
	amounts := CategoryAmounts{CreditableCurrent: 500000}
	credit := int64(184932) // round(500000 * 0.27/0.73)

	cases := []struct {
		name        string
		year        int
		refund      bool
		restitution bool
		want        func(CreditColumns) int64
	}{
		{"restitution no refund", 2024, false, true, func(c CreditColumns) int64 { return c.RestitutionNoRefund }},
		{"restitution refund", 2024, true, true, func(c CreditColumns) int64 { return c.RestitutionRefund }},
		{"current no refund", 2024, false, false, func(c CreditColumns) int64 { return c.CurrentNoRefund }},
		{"current refund", 2020, true, false, func(c CreditColumns) int64 { return c.CurrentRefund }},
		{"pre-2020 no refund", 2019, false, false, func(c CreditColumns) int64 { return c.Pre2020NoRefund }},
		{"pre-2020 refund", 2017, true, false, func(c CreditColumns) int64 { return c.Pre2020Refund }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := RegimeConfig{
				TaxRegime:            TaxRegimeGeneral,
				CorporateTaxRate:     0.27,
				FiscalYear:           tc.year,
				HasRefundRight:       tc.refund,
				SubjectToRestitution: tc.restitution,
			}
			got, err := CreditsOnTaxableIncome(amounts, cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want(got) != credit {
				t.Fatalf("expected destination column %d, got %+v", credit, got)
			}
			if n := nonZeroCount(got); n != 1 {
				t.Fatalf("expected exactly one non-zero credit column, got %d in %+v", n, got)
			}
		})
	}
}

func TestCreditsOnExemptIncome(t *testing.T) {
	cfg := RegimeConfig{TaxRegime: TaxRegimeSimplified, CorporateTaxRate: 0.25, FiscalYear: 2023}
	got, err := CreditsOnExemptIncome(200000, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ExemptNoRefund != 66667 {
		t.Fatalf("expected 66667 without refund right, got %+v", got)
	}

	cfg.HasRefundRight = true
	got, err = CreditsOnExemptIncome(200000, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ExemptRefund != 66667 || got.ExemptNoRefund != 0 {
		t.Fatalf("expected 66667 with refund right, got %+v", got)
	}
}

func TestComputeCredits_CombinesTaxableAndExempt(t *testing.T) {
	amounts := CategoryAmounts{CreditableCurrent: 500000, ExemptIncome: 200000}
	cfg := validRegime()
	got, err := ComputeCredits(amounts, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentNoRefund != 184932 {
		t.Fatalf("expected taxable credit 184932, got %+v", got)
	}
	if got.ExemptNoRefund != 73973 { // round(200000 * 0.27/0.73)
		t.Fatalf("expected exempt credit 73973, got %+v", got)
	}
}

func TestComputeCredits_LegacySlotsStayZero(t *testing.T) {
	got, err := ComputeCredits(CategoryAmounts{CreditableCurrent: 1000000}, validRegime())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values := got.Values()
	// Columns 25-32 carry no formula yet and must stay zero.
	for i := 8; i < len(values); i++ {
		if values[i] != 0 {
			t.Fatalf("expected column %d to be zero, got %d", 17+i, values[i])
		}
	}
}

func nonZeroCount(c CreditColumns) int {
	count := 0
	for _, v := range c.Values() {
		if v != 0 {
			count++
		}
	}
	return count
}

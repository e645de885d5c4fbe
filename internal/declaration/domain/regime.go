package declaration

import "fmt"

// TaxRegime identifies the statutory regime the distributing entity files under.
type TaxRegime string

const (
	TaxRegimeGeneral    TaxRegime = "GENERAL"
	TaxRegimeSimplified TaxRegime = "SIMPLIFIED"
)

// FirstCreditYear is the first fiscal year the credit regime exists.
const FirstCreditYear = 2017

// RestitutionBoundaryYear splits credit destination columns by generation window.
const RestitutionBoundaryYear = 2020

// RegimeConfig holds the filer's tax-regime parameters for one fiscal year.
type RegimeConfig struct {
	TaxRegime            TaxRegime
	CorporateTaxRate     float64
	FiscalYear           int
	HasRefundRight       bool
	SubjectToRestitution bool
}

// Validate checks the configuration against the statutory bounds.
// The corporate tax rate must lie strictly inside (0,1): at 0 there is no
// credit to gross up and at 1 the gross-up factor diverges.
func (c RegimeConfig) Validate() error {
	if c.TaxRegime != TaxRegimeGeneral && c.TaxRegime != TaxRegimeSimplified {
		return fmt.Errorf("%w: unknown tax regime %q", ErrInvalidRegimeConfig, c.TaxRegime)
	}
	if c.CorporateTaxRate <= 0 || c.CorporateTaxRate >= 1 {
		return fmt.Errorf("%w: corporate tax rate %v outside (0,1)", ErrInvalidRegimeConfig, c.CorporateTaxRate)
	}
	if c.FiscalYear < FirstCreditYear {
		return fmt.Errorf("%w: fiscal year %d precedes %d", ErrInvalidRegimeConfig, c.FiscalYear, FirstCreditYear)
	}
	return nil
}

// CreditRate returns the statutory gross-up factor rate/(1-rate) that
// converts a net distributed amount into its associated creditable tax.
func CreditRate(c RegimeConfig) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return c.CorporateTaxRate / (1 - c.CorporateTaxRate), nil
}

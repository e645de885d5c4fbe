package declaration

import "time"

// Qualification is one dividend or withdrawal event together with its
// statutory allocation factors. Records arrive already validated: factors
// are fractions in [0,1] summing at most 1, amounts are non-negative.
type Qualification struct {
	ID            string
	TotalAmount   float64
	Currency      string
	Period        string
	Factors       AllocationFactors
	Regime        *RegimeConfig
	CertificateNo string
	UpdatedAt     time.Time
}

// Declarant identifies the filing entity. Immutable for a filing run.
type Declarant struct {
	TaxID     string
	LegalName string
	Address   string
	Commune   string
	Email     string
	Phone     string
}

// Validate checks the fields the declaration file cannot be produced without.
func (d Declarant) Validate() error {
	if d.TaxID == "" {
		return ErrMissingDeclarantTaxID
	}
	return nil
}

// Ownership-type flags for declaration column 3.
const (
	OwnershipUsufruct  = 1
	OwnershipBareOwner = 2
)

// ExcessWithdrawalRow records an excess-withdrawal balance for one
// beneficiary, columns 34 and 35 of the declaration.
type ExcessWithdrawalRow struct {
	BeneficiaryTaxID string
	Amount           int64
}

package declaration

import (
	"log"
	"time"
)

// DeclarationRow is the 35-column output unit of the annual declaration.
// Columns 34 and 35 belong to the excess-withdrawal row type and are not
// part of this struct.
type DeclarationRow struct {
	TransactionDate string          // column 1, DD.MM.YYYY
	ReceiverTaxID   string          // column 2
	OwnershipFlag   int             // column 3
	ShareCount      int64           // column 4
	Amounts         CategoryAmounts // columns 5-16
	Credits         CreditColumns   // columns 17-32
	CertificateNo   string          // column 33
}

// RowContext carries the receiver-side context a qualification record does
// not know about.
type RowContext struct {
	ReceiverTaxID string
	ShareCount    int64
	OwnershipFlag int
}

// InvalidRegimePolicy names what a RowBuilder does when a qualification's
// regime configuration fails validation.
type InvalidRegimePolicy int

const (
	// PolicyZeroCredits emits the row with all credit columns zero and logs
	// a warning. One malformed regime must not abort a whole filing run.
	PolicyZeroCredits InvalidRegimePolicy = iota
	// PolicyPropagate surfaces the validation error to the caller.
	PolicyPropagate
)

// RowBuilder maps qualification records into declaration rows.
type RowBuilder struct {
	policy InvalidRegimePolicy
	logger *log.Logger
}

// RowBuilderOption configures a RowBuilder.
type RowBuilderOption func(*RowBuilder)

// WithInvalidRegimePolicy selects the invalid-regime behavior.
func WithInvalidRegimePolicy(p InvalidRegimePolicy) RowBuilderOption {
	return func(b *RowBuilder) { b.policy = p }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) RowBuilderOption {
	return func(b *RowBuilder) { b.logger = logger }
}

// NewRowBuilder constructs a builder. Default policy is PolicyZeroCredits.
func NewRowBuilder(opts ...RowBuilderOption) *RowBuilder {
	b := &RowBuilder{policy: PolicyZeroCredits}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build maps one qualification record into one declaration row. For
// structurally valid input it degrades to zeros instead of failing; the only
// error it can return is an invalid regime config under PolicyPropagate.
func (b *RowBuilder) Build(q Qualification, rc RowContext) (DeclarationRow, error) {
	row := DeclarationRow{
		TransactionDate: TransactionDate(q.Period, q.UpdatedAt),
		ReceiverTaxID:   rc.ReceiverTaxID,
		OwnershipFlag:   rc.OwnershipFlag,
		ShareCount:      rc.ShareCount,
		Amounts:         AmountsFromFactors(q.TotalAmount, q.Factors),
		CertificateNo:   q.CertificateNo,
	}
	if q.Regime == nil {
		return row, nil
	}
	credits, err := ComputeCredits(row.Amounts, *q.Regime)
	if err != nil {
		if b.policy == PolicyPropagate {
			return DeclarationRow{}, err
		}
		if b.logger != nil {
			b.logger.Printf("declaration: zeroing credits for qualification %s: %v", q.ID, err)
		}
		return row, nil
	}
	row.Credits = credits
	return row, nil
}

// TransactionDate derives the column-1 date from a qualification period.
// Accepted shapes: YYYY-MM-DD (verbatim), YYYY-Qn (last calendar day of the
// quarter), anything else falls back to the record's last-modified date.
func TransactionDate(period string, fallback time.Time) string {
	if t, err := time.Parse("2006-01-02", period); err == nil {
		return t.Format("02.01.2006")
	}
	if t, ok := quarterEnd(period); ok {
		return t.Format("02.01.2006")
	}
	return fallback.Format("02.01.2006")
}

func quarterEnd(period string) (time.Time, bool) {
	if len(period) != 7 || period[4] != '-' || (period[5] != 'Q' && period[5] != 'q') {
		return time.Time{}, false
	}
	year, err := time.Parse("2006", period[:4])
	if err != nil {
		return time.Time{}, false
	}
	var month time.Month
	var day int
	switch period[6] {
	case '1':
		month, day = time.March, 31
	case '2':
		month, day = time.June, 30
	case '3':
		month, day = time.September, 30
	case '4':
		month, day = time.December, 31
	default:
		return time.Time{}, false
	}
	return time.Date(year.Year(), month, day, 0, 0, 0, 0, time.UTC), true
}

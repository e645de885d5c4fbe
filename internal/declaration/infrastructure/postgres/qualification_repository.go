package postgres

import (
	"context"
	"database/sql"
	"errors"

	declaration "taxfiling-cloud/internal/declaration/domain"
)

// QualificationRepository reads qualification records from postgres.
// Records are written by the upstream qualification workflow; this side is
// read-only.
type QualificationRepository struct {
	db *sql.DB
}

// NewQualificationRepository constructs a repository.
func NewQualificationRepository(db *sql.DB) *QualificationRepository {
	return &QualificationRepository{db: db}
}

// ListByDeclarantYear returns a declarant's qualification records for a
// fiscal year, ordered by period then id for stable filing output.
func (r *QualificationRepository) ListByDeclarantYear(ctx context.Context, declarantTaxID string, fiscalYear int) ([]declaration.Qualification, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("qualification repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, total_amount, currency, period,
	factor_no_credit, factor_exempt, factor_non_income, factor_substitute,
	factor_capital_return, factor_exempt_additional, factor_fully_taxed,
	factor_legacy_fund, factor_other,
	tax_regime, corporate_tax_rate, regime_fiscal_year, has_refund_right, subject_to_restitution,
	certificate_no, updated_at
FROM qualification_records
WHERE declarant_tax_id = $1 AND fiscal_year = $2
ORDER BY period, id`, declarantTaxID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []declaration.Qualification
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListExcessWithdrawals returns a declarant's excess-withdrawal balances for
// a fiscal year.
func (r *QualificationRepository) ListExcessWithdrawals(ctx context.Context, declarantTaxID string, fiscalYear int) ([]declaration.ExcessWithdrawalRow, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("qualification repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT beneficiary_tax_id, amount
FROM excess_withdrawals
WHERE declarant_tax_id = $1 AND fiscal_year = $2
ORDER BY beneficiary_tax_id`, declarantTaxID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []declaration.ExcessWithdrawalRow
	for rows.Next() {
		var row declaration.ExcessWithdrawalRow
		if err := rows.Scan(&row.BeneficiaryTaxID, &row.Amount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanQualification(rows *sql.Rows) (declaration.Qualification, error) {
	var q declaration.Qualification
	var regime sql.NullString
	var rate sql.NullFloat64
	var regimeYear sql.NullInt64
	var refund, restitution sql.NullBool
	var certificate sql.NullString
	err := rows.Scan(
		&q.ID, &q.TotalAmount, &q.Currency, &q.Period,
		&q.Factors.NoCreditRight, &q.Factors.ExemptIncome, &q.Factors.NonIncomeRevenue,
		&q.Factors.SubstituteTax, &q.Factors.CapitalReturn, &q.Factors.ExemptAdditional,
		&q.Factors.FullyTaxed, &q.Factors.LegacyFund, &q.Factors.OtherAmounts,
		&regime, &rate, &regimeYear, &refund, &restitution,
		&certificate, &q.UpdatedAt,
	)
	if err != nil {
		return declaration.Qualification{}, err
	}
	if certificate.Valid {
		q.CertificateNo = certificate.String
	}
	if regime.Valid {
		q.Regime = &declaration.RegimeConfig{
			TaxRegime:            declaration.TaxRegime(regime.String),
			CorporateTaxRate:     rate.Float64,
			FiscalYear:           int(regimeYear.Int64),
			HasRefundRight:       refund.Bool,
			SubjectToRestitution: restitution.Bool,
		}
	}
	return q, nil
}

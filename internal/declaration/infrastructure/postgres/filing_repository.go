package postgres

import (
	"context"
	"database/sql"
	"errors"

	"taxfiling-cloud/internal/declaration/application"
	declaration "taxfiling-cloud/internal/declaration/domain"
)

// FilingRepository persists generated filings. Row and totals data are
// recomputed on every generation; only the run header and the final file
// content are stored.
type FilingRepository struct {
	db *sql.DB
}

// NewFilingRepository constructs a repository.
func NewFilingRepository(db *sql.DB) *FilingRepository {
	return &FilingRepository{db: db}
}

// SaveFiling inserts a filing run.
func (r *FilingRepository) SaveFiling(ctx context.Context, f *application.Filing) error {
	if r == nil || r.db == nil {
		return errors.New("filing repo: nil db")
	}
	if f == nil {
		return errors.New("filing repo: nil filing")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO declaration_filings (
	id, declarant_tax_id, fiscal_year, year_label, row_count, excess_row_count,
	content, content_hash, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.DeclarantTaxID, f.FiscalYear, f.YearLabel,
		f.Totals.RowCount, f.Totals.ExcessRowCount,
		f.Content, f.ContentHash, f.CreatedAt,
	)
	return err
}

// FindFiling loads a filing run header and content by id. Rows and totals
// are not reconstructed from storage.
func (r *FilingRepository) FindFiling(ctx context.Context, id string) (*application.Filing, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("filing repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, declarant_tax_id, fiscal_year, year_label, row_count, excess_row_count,
	content, content_hash, created_at
FROM declaration_filings
WHERE id = $1`, id)

	var f application.Filing
	err := row.Scan(
		&f.ID, &f.DeclarantTaxID, &f.FiscalYear, &f.YearLabel,
		&f.Totals.RowCount, &f.Totals.ExcessRowCount,
		&f.Content, &f.ContentHash, &f.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, declaration.ErrFilingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// RecordExport notes an export of a filing in a given format.
func (r *FilingRepository) RecordExport(ctx context.Context, filingID, exportFormat, filename string) error {
	if r == nil || r.db == nil {
		return errors.New("filing repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO filing_exports (filing_id, format, filename, exported_at)
VALUES ($1, $2, $3, now())`, filingID, exportFormat, filename)
	return err
}

package memory

import (
	"context"
	"errors"
	"sync"

	"taxfiling-cloud/internal/declaration/application"
	declaration "taxfiling-cloud/internal/declaration/domain"
)

type yearKey struct {
	declarantTaxID string
	fiscalYear     int
}

// Repository is an in-memory qualification and filing store for demo/testing.
// It implements application.QualificationRepository and
// application.FilingRepository.
type Repository struct {
	mu             sync.RWMutex
	qualifications map[yearKey][]declaration.Qualification
	excess         map[yearKey][]declaration.ExcessWithdrawalRow
	filings        map[string]*application.Filing
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{
		qualifications: make(map[yearKey][]declaration.Qualification),
		excess:         make(map[yearKey][]declaration.ExcessWithdrawalRow),
		filings:        make(map[string]*application.Filing),
	}
}

// PutQualifications replaces a declarant-year's qualification records.
func (r *Repository) PutQualifications(declarantTaxID string, fiscalYear int, records []declaration.Qualification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.qualifications[yearKey{declarantTaxID, fiscalYear}] = append([]declaration.Qualification(nil), records...)
}

// PutExcessWithdrawals replaces a declarant-year's excess-withdrawal rows.
func (r *Repository) PutExcessWithdrawals(declarantTaxID string, fiscalYear int, rows []declaration.ExcessWithdrawalRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.excess[yearKey{declarantTaxID, fiscalYear}] = append([]declaration.ExcessWithdrawalRow(nil), rows...)
}

// ListByDeclarantYear returns the stored qualification records.
func (r *Repository) ListByDeclarantYear(ctx context.Context, declarantTaxID string, fiscalYear int) ([]declaration.Qualification, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]declaration.Qualification(nil), r.qualifications[yearKey{declarantTaxID, fiscalYear}]...), nil
}

// ListExcessWithdrawals returns the stored excess-withdrawal rows.
func (r *Repository) ListExcessWithdrawals(ctx context.Context, declarantTaxID string, fiscalYear int) ([]declaration.ExcessWithdrawalRow, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]declaration.ExcessWithdrawalRow(nil), r.excess[yearKey{declarantTaxID, fiscalYear}]...), nil
}

// SaveFiling stores a generated filing.
func (r *Repository) SaveFiling(ctx context.Context, f *application.Filing) error {
	_ = ctx
	if f == nil {
		return errors.New("memory repo: nil filing")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filings[f.ID] = f
	return nil
}

// FindFiling loads a filing by id.
func (r *Repository) FindFiling(ctx context.Context, id string) (*application.Filing, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := r.filings[id]
	if f == nil {
		return nil, declaration.ErrFilingNotFound
	}
	return f, nil
}

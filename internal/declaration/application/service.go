package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	declaration "taxfiling-cloud/internal/declaration/domain"
	"taxfiling-cloud/internal/declaration/format"
	"taxfiling-cloud/internal/observability/metrics"
)

// QualificationRepository lists the already-validated qualification records
// of a declarant for one fiscal year.
type QualificationRepository interface {
	ListByDeclarantYear(ctx context.Context, declarantTaxID string, fiscalYear int) ([]declaration.Qualification, error)
	ListExcessWithdrawals(ctx context.Context, declarantTaxID string, fiscalYear int) ([]declaration.ExcessWithdrawalRow, error)
}

// FilingRepository persists generated filings. Optional: a service without
// one still generates, it just does not record the run.
type FilingRepository interface {
	SaveFiling(ctx context.Context, f *Filing) error
	FindFiling(ctx context.Context, id string) (*Filing, error)
}

// Filing is one generated declaration run.
type Filing struct {
	ID             string
	DeclarantTaxID string
	FiscalYear     int
	YearLabel      string
	Declarant      declaration.Declarant
	Rows           []declaration.DeclarationRow
	Excess         []declaration.ExcessWithdrawalRow
	Totals         declaration.Totals
	Content        string
	ContentHash    string
	CreatedAt      time.Time
}

// Filename renders the export filename convention
// {DocType}_{DeclarantTaxId}_{FiscalYear}_{ISODate}.{ext}.
func (f *Filing) Filename(docType, ext string) string {
	return fmt.Sprintf("%s_%s_%d_%s.%s", docType, f.DeclarantTaxID, f.FiscalYear, f.CreatedAt.Format("2006-01-02"), ext)
}

// Overrides are the optional per-filing inputs of a run.
type Overrides struct {
	Address       string
	Commune       string
	Phone         string
	YearLabel     string
	ReceiverTaxID string
	ShareCount    int64
	OwnershipFlag int
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// DeclarationService orchestrates a filing run: qualifications to rows,
// rows to totals, everything to the authority file.
type DeclarationService struct {
	quals      QualificationRepository
	filings    FilingRepository
	builder    *declaration.RowBuilder
	serializer *format.Serializer
	clock      Clock
	logger     *log.Logger
}

// Option configures the service.
type Option func(*DeclarationService)

// WithFilingRepository enables filing persistence.
func WithFilingRepository(repo FilingRepository) Option {
	return func(s *DeclarationService) { s.filings = repo }
}

// WithRowBuilder replaces the default lenient row builder.
func WithRowBuilder(b *declaration.RowBuilder) Option {
	return func(s *DeclarationService) { s.builder = b }
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *DeclarationService) { s.clock = c }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *DeclarationService) { s.logger = logger }
}

// NewDeclarationService constructs a service.
func NewDeclarationService(quals QualificationRepository, serializer *format.Serializer, opts ...Option) (*DeclarationService, error) {
	if quals == nil {
		return nil, errors.New("declaration service: nil qualification repository")
	}
	if serializer == nil {
		return nil, errors.New("declaration service: nil serializer")
	}
	s := &DeclarationService{
		quals:      quals,
		serializer: serializer,
		clock:      systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = declaration.NewRowBuilder(declaration.WithLogger(s.logger))
	}
	return s, nil
}

// Generate runs a complete filing for one declarant and fiscal year.
func (s *DeclarationService) Generate(ctx context.Context, d declaration.Declarant, fiscalYear int, ov Overrides) (*Filing, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveFilingGenerate(result, time.Since(start))
	}()

	if err := d.Validate(); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	applyDeclarantOverrides(&d, ov)
	if ov.OwnershipFlag == 0 {
		ov.OwnershipFlag = declaration.OwnershipUsufruct
	}

	records, err := s.quals.ListByDeclarantYear(ctx, d.TaxID, fiscalYear)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("declaration service: list qualifications: %w", err)
	}
	excess, err := s.quals.ListExcessWithdrawals(ctx, d.TaxID, fiscalYear)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("declaration service: list excess withdrawals: %w", err)
	}

	rows := make([]declaration.DeclarationRow, 0, len(records))
	for _, q := range records {
		row, err := s.builder.Build(q, declaration.RowContext{
			ReceiverTaxID: ov.ReceiverTaxID,
			ShareCount:    ov.ShareCount,
			OwnershipFlag: ov.OwnershipFlag,
		})
		if err != nil {
			result = metrics.ResultError
			metrics.IncInvalidRegime()
			return nil, fmt.Errorf("declaration service: qualification %s: %w", q.ID, err)
		}
		rows = append(rows, row)
	}

	totals := declaration.Aggregate(rows).WithExcess(excess)
	yearLabel := ov.YearLabel
	if yearLabel == "" {
		// Declarations for fiscal year N are filed in tax year N+1.
		yearLabel = strconv.Itoa(fiscalYear + 1)
	}
	content, err := s.serializer.Serialize(d, rows, excess, totals, yearLabel)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	hash := sha256.Sum256([]byte(content))
	filing := &Filing{
		ID:             uuid.NewString(),
		DeclarantTaxID: d.TaxID,
		FiscalYear:     fiscalYear,
		YearLabel:      yearLabel,
		Declarant:      d,
		Rows:           rows,
		Excess:         excess,
		Totals:         totals,
		Content:        content,
		ContentHash:    hex.EncodeToString(hash[:]),
		CreatedAt:      s.clock.Now().UTC(),
	}
	metrics.ObserveFilingRows(len(rows))

	if s.filings != nil {
		if err := s.filings.SaveFiling(ctx, filing); err != nil {
			result = metrics.ResultError
			return nil, fmt.Errorf("declaration service: save filing: %w", err)
		}
	}
	if s.logger != nil {
		s.logger.Printf("filing generated: declarant=%s year=%d rows=%d hash=%s", d.TaxID, fiscalYear, len(rows), filing.ContentHash[:12])
	}
	return filing, nil
}

// Find returns a persisted filing by id.
func (s *DeclarationService) Find(ctx context.Context, id string) (*Filing, error) {
	if s.filings == nil {
		return nil, declaration.ErrFilingNotFound
	}
	return s.filings.FindFiling(ctx, id)
}

func applyDeclarantOverrides(d *declaration.Declarant, ov Overrides) {
	if ov.Address != "" {
		d.Address = ov.Address
	}
	if ov.Commune != "" {
		d.Commune = ov.Commune
	}
	if ov.Phone != "" {
		d.Phone = ov.Phone
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

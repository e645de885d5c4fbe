package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taxfiling-cloud/internal/declaration/application"
	declaration "taxfiling-cloud/internal/declaration/domain"
	"taxfiling-cloud/internal/declaration/format"
	"taxfiling-cloud/internal/declaration/infrastructure/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testDeclarant() declaration.Declarant {
	return declaration.Declarant{
		TaxID:     "76543210-K",
		LegalName: "INVERSIONES ANDINA SPA",
		Email:     "contacto@andina.cl",
	}
}

func seededService(t *testing.T, repo *memory.Repository) *application.DeclarationService {
	t.Helper()
	svc, err := application.NewDeclarationService(repo, format.NewSerializer(),
		application.WithFilingRepository(repo),
		application.WithClock(fixedClock{t: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)}),
	)
	if err != nil {
		t.Fatalf("service construction failed: %v", err)
	}
	return svc
}

func TestGenerate_ProducesFiling(t *testing.T) {
	repo := memory.NewRepository()
	repo.PutQualifications("76543210-K", 2024, []declaration.Qualification{
		{
			ID:          "qual-1",
			TotalAmount: 1000000,
			Period:      "2024-Q2",
			Factors:     declaration.AllocationFactors{NoCreditRight: 0.5},
			Regime: &declaration.RegimeConfig{
				TaxRegime:        declaration.TaxRegimeGeneral,
				CorporateTaxRate: 0.27,
				FiscalYear:       2024,
			},
			CertificateNo: "77",
		},
	})
	repo.PutExcessWithdrawals("76543210-K", 2024, []declaration.ExcessWithdrawalRow{
		{BeneficiaryTaxID: "11111111-1", Amount: 40000},
	})

	svc := seededService(t, repo)
	filing, err := svc.Generate(context.Background(), testDeclarant(), 2024, application.Overrides{
		ReceiverTaxID: "12345678-9",
		ShareCount:    100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filing.ID == "" {
		t.Fatal("expected a filing id")
	}
	if len(filing.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(filing.Rows))
	}
	if filing.Rows[0].OwnershipFlag != declaration.OwnershipUsufruct {
		t.Fatalf("expected default ownership flag, got %d", filing.Rows[0].OwnershipFlag)
	}
	if filing.Totals.Columns[19] != 184932 {
		t.Fatalf("expected column 19 total 184932, got %d", filing.Totals.Columns[19])
	}
	if filing.Totals.Columns[35] != 40000 || filing.Totals.ExcessRowCount != 1 {
		t.Fatalf("unexpected excess totals: %d/%d", filing.Totals.Columns[35], filing.Totals.ExcessRowCount)
	}
	if filing.YearLabel != "2025" {
		t.Fatalf("expected year label 2025, got %s", filing.YearLabel)
	}
	if len(filing.ContentHash) != 64 {
		t.Fatalf("expected a sha256 hex hash, got %q", filing.ContentHash)
	}
	if !strings.Contains(filing.Content, "2025") {
		t.Fatal("year label missing from content")
	}

	stored, err := svc.Find(context.Background(), filing.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.ContentHash != filing.ContentHash {
		t.Fatal("stored filing does not match")
	}
}

func TestGenerate_FilenameConvention(t *testing.T) {
	repo := memory.NewRepository()
	svc := seededService(t, repo)
	filing, err := svc.Generate(context.Background(), testDeclarant(), 2024, application.Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := filing.Filename("DJ", "csv")
	want := "DJ_76543210-K_2024_2025-03-10.csv"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGenerate_EmptyYearStillSerializes(t *testing.T) {
	repo := memory.NewRepository()
	svc := seededService(t, repo)
	filing, err := svc.Generate(context.Background(), testDeclarant(), 2023, application.Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filing.Rows) != 0 || filing.Totals.RowCount != 0 {
		t.Fatalf("expected an empty run, got %d rows", len(filing.Rows))
	}
	if filing.Content == "" {
		t.Fatal("expected the skeleton even without rows")
	}
}

func TestGenerate_MissingDeclarantTaxID(t *testing.T) {
	repo := memory.NewRepository()
	svc := seededService(t, repo)
	d := testDeclarant()
	d.TaxID = ""
	if _, err := svc.Generate(context.Background(), d, 2024, application.Overrides{}); !errors.Is(err, declaration.ErrMissingDeclarantTaxID) {
		t.Fatalf("expected ErrMissingDeclarantTaxID, got %v", err)
	}
}

func TestGenerate_PropagatesInvalidRegime(t *testing.T) {
	repo := memory.NewRepository()
	repo.PutQualifications("76543210-K", 2024, []declaration.Qualification{
		{
			ID:          "qual-bad",
			TotalAmount: 100000,
			Period:      "2024-01-15",
			Regime:      &declaration.RegimeConfig{TaxRegime: declaration.TaxRegimeGeneral, CorporateTaxRate: 1.5, FiscalYear: 2024},
		},
	})
	svc, err := application.NewDeclarationService(repo, format.NewSerializer(),
		application.WithRowBuilder(declaration.NewRowBuilder(declaration.WithInvalidRegimePolicy(declaration.PolicyPropagate))),
	)
	if err != nil {
		t.Fatalf("service construction failed: %v", err)
	}
	if _, err := svc.Generate(context.Background(), testDeclarant(), 2024, application.Overrides{}); !errors.Is(err, declaration.ErrInvalidRegimeConfig) {
		t.Fatalf("expected ErrInvalidRegimeConfig, got %v", err)
	}
}

func TestFind_WithoutRepository(t *testing.T) {
	svc, err := application.NewDeclarationService(memory.NewRepository(), format.NewSerializer())
	if err != nil {
		t.Fatalf("service construction failed: %v", err)
	}
	if _, err := svc.Find(context.Background(), "nope"); !errors.Is(err, declaration.ErrFilingNotFound) {
		t.Fatalf("expected ErrFilingNotFound, got %v", err)
	}
}

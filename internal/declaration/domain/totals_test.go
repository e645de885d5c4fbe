package declaration

import "testing"

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil)
	if totals.RowCount != 0 {
		t.Fatalf("expected RowCount 0, got %d", totals.RowCount)
	}
	if totals.Columns != ([36]int64{}) {
		t.Fatalf("expected all-zero columns, got %v", totals.Columns)
	}
}

func TestAggregate_SumsNumericColumns(t *testing.T) {
	rows := []DeclarationRow{
		{
			OwnershipFlag: OwnershipUsufruct,
			ShareCount:    100,
			Amounts:       CategoryAmounts{CreditableCurrent: 500000, NoCreditRight: 500000},
			Credits:       CreditColumns{CurrentNoRefund: 184932},
		},
		{
			OwnershipFlag: OwnershipBareOwner,
			ShareCount:    50,
			Amounts:       CategoryAmounts{ExemptIncome: 200000},
			Credits:       CreditColumns{ExemptRefund: 73973},
		},
	}
	totals := Aggregate(rows)
	if totals.RowCount != 2 {
		t.Fatalf("expected RowCount 2, got %d", totals.RowCount)
	}
	if totals.Columns[3] != 3 || totals.Columns[4] != 150 {
		t.Fatalf("unexpected columns 3/4: %d/%d", totals.Columns[3], totals.Columns[4])
	}
	if totals.Columns[5] != 500000 || totals.Columns[8] != 500000 || totals.Columns[9] != 200000 {
		t.Fatalf("unexpected amount sums: %v", totals.Columns[5:17])
	}
	if totals.Columns[19] != 184932 || totals.Columns[24] != 73973 {
		t.Fatalf("unexpected credit sums: %v", totals.Columns[17:33])
	}

	// Order must not matter.
	swapped := Aggregate([]DeclarationRow{rows[1], rows[0]})
	if swapped.Columns != totals.Columns {
		t.Fatal("aggregation depends on row order")
	}
}

func TestTotals_WithExcess(t *testing.T) {
	base := Aggregate(nil)
	totals := base.WithExcess([]ExcessWithdrawalRow{
		{BeneficiaryTaxID: "11111111-1", Amount: 40000},
		{BeneficiaryTaxID: "22222222-2", Amount: 60000},
	})
	if totals.ExcessRowCount != 2 {
		t.Fatalf("expected ExcessRowCount 2, got %d", totals.ExcessRowCount)
	}
	if totals.Columns[35] != 100000 {
		t.Fatalf("expected column 35 = 100000, got %d", totals.Columns[35])
	}
}

package format

import (
	"errors"
	"strings"
	"testing"

	declaration "taxfiling-cloud/internal/declaration/domain"
)

func testDeclarant() declaration.Declarant {
	return declaration.Declarant{
		TaxID:     "76.543.210-K",
		LegalName: "INVERSIONES ANDINA SPA",
		Address:   "AV PROVIDENCIA 1234",
		Commune:   "PROVIDENCIA",
		Email:     "contacto@andina.cl",
	}
}

func testRows() []declaration.DeclarationRow {
	return []declaration.DeclarationRow{
		{
			TransactionDate: "30.06.2024",
			ReceiverTaxID:   "12345678-9",
			OwnershipFlag:   1,
			ShareCount:      100,
			Amounts:         declaration.CategoryAmounts{CreditableCurrent: 500000, NoCreditRight: 500000},
			Credits:         declaration.CreditColumns{CurrentNoRefund: 184932},
			CertificateNo:   "77",
		},
		{
			TransactionDate: "30.09.2024",
			ReceiverTaxID:   "98765432-1",
			OwnershipFlag:   2,
			ShareCount:      50,
			Amounts:         declaration.CategoryAmounts{ExemptIncome: 200000},
			Credits:         declaration.CreditColumns{ExemptRefund: 73973},
			CertificateNo:   "78",
		},
	}
}

func TestSerialize_EmptyRowSetKeepsSkeleton(t *testing.T) {
	s := NewSerializer()
	content, err := s.Serialize(testDeclarant(), nil, nil, declaration.Totals{}, "2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(content, LineTerminator) {
		t.Fatal("content must end with a line terminator")
	}
	if strings.Contains(strings.ReplaceAll(content, LineTerminator, ""), "\n") {
		t.Fatal("found a bare LF outside the CRLF terminators")
	}
	lines := strings.Split(strings.TrimSuffix(content, LineTerminator), LineTerminator)
	if len(lines) != 15 {
		t.Fatalf("expected the 15-line skeleton, got %d lines", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, Delimiter); n != FieldCount-1 {
			t.Fatalf("line %d has %d delimiters, expected %d", i, n, FieldCount-1)
		}
	}
}

func TestSerialize_FillsSlotsAndInsertsRows(t *testing.T) {
	rows := testRows()
	excess := []declaration.ExcessWithdrawalRow{{BeneficiaryTaxID: "11111111-1", Amount: 40000}}
	totals := declaration.Aggregate(rows).WithExcess(excess)

	s := NewSerializer()
	content, err := s.Serialize(testDeclarant(), rows, excess, totals, "2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(content, LineTerminator), LineTerminator)
	if len(lines) != 15+len(rows)+len(excess) {
		t.Fatalf("expected %d lines, got %d", 15+len(rows)+len(excess), len(lines))
	}

	header := strings.Join(TransactionHeaders(), Delimiter)
	hi := indexOfLine(t, lines, header)
	for i, row := range rows {
		if lines[hi+1+i] != DataLine(row) {
			t.Fatalf("data row %d out of place: %s", i, lines[hi+1+i])
		}
	}

	identity := lines[3]
	if !strings.HasPrefix(identity, "76543210;K;INVERSIONES ANDINA SPA;") {
		t.Fatalf("unexpected identity line: %s", identity)
	}
	contact := lines[5]
	if !strings.HasPrefix(contact, "contacto@andina.cl;2025;") {
		t.Fatalf("unexpected contact line: %s", contact)
	}

	si := indexOfPrefix(t, lines, "TOTALES"+Delimiter)
	summary := strings.Split(lines[si], Delimiter)
	if len(summary) != FieldCount {
		t.Fatalf("summary has %d fields, expected %d", len(summary), FieldCount)
	}
	if summary[FieldCount-1] != "2" {
		t.Fatalf("expected row count 2 in the last summary field, got %q", summary[FieldCount-1])
	}
	if summary[19] != "184932" {
		t.Fatalf("expected column 19 total 184932, got %q", summary[19])
	}

	ei := indexOfPrefix(t, lines, "SUBTOTAL RETIROS EN EXCESO"+Delimiter)
	ex := strings.Split(lines[ei], Delimiter)
	if ex[2] != "40000" || ex[3] != "1" {
		t.Fatalf("unexpected excess subtotal fields: %v", ex[:4])
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	rows := testRows()
	totals := declaration.Aggregate(rows)
	s := NewSerializer()
	first, err := s.Serialize(testDeclarant(), rows, nil, totals, "2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Serialize(testDeclarant(), rows, nil, totals, "2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected identical output for identical input")
	}
}

func TestSerialize_MissingDeclarantTaxID(t *testing.T) {
	d := testDeclarant()
	d.TaxID = ""
	s := NewSerializer()
	if _, err := s.Serialize(d, nil, nil, declaration.Totals{}, "2025"); !errors.Is(err, declaration.ErrMissingDeclarantTaxID) {
		t.Fatalf("expected ErrMissingDeclarantTaxID, got %v", err)
	}
}

func TestSplitTaxID(t *testing.T) {
	cases := []struct {
		id, body, check string
	}{
		{"12.345.678-9", "12345678", "9"},
		{"76543210-K", "76543210", "K"},
		{"123456789", "12345678", "9"},
		{"7", "7", ""},
	}
	for _, tc := range cases {
		body, check := SplitTaxID(tc.id)
		if body != tc.body || check != tc.check {
			t.Fatalf("SplitTaxID(%q) = %q, %q; expected %q, %q", tc.id, body, check, tc.body, tc.check)
		}
	}
}

func indexOfLine(t *testing.T, lines []string, want string) int {
	t.Helper()
	for i, line := range lines {
		if line == want {
			return i
		}
	}
	t.Fatalf("line not found: %s", want)
	return -1
}

func indexOfPrefix(t *testing.T, lines []string, prefix string) int {
	t.Helper()
	for i, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return i
		}
	}
	t.Fatalf("no line with prefix %q", prefix)
	return -1
}

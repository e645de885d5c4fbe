package format

import (
	declaration "taxfiling-cloud/internal/declaration/domain"
)

// BuildGrid lays the same declaration content out as an array-of-arrays for
// the workbook surface. Values come from the same row and totals structures
// the authority file is built from, so the two surfaces cannot drift.
func BuildGrid(d declaration.Declarant, rows []declaration.DeclarationRow, excess []declaration.ExcessWithdrawalRow, totals declaration.Totals, yearLabel string) [][]any {
	grid := make([][]any, 0, len(rows)+len(excess)+8)

	body, check := SplitTaxID(d.TaxID)
	grid = append(grid,
		[]any{"RUT DECLARANTE", body, check},
		[]any{"NOMBRE O RAZON SOCIAL", d.LegalName},
		[]any{"CORREO ELECTRONICO", d.Email},
		[]any{"ANO TRIBUTARIO", yearLabel},
	)

	header := make([]any, 0, FieldCount)
	for _, h := range TransactionHeaders() {
		header = append(header, h)
	}
	grid = append(grid, header)

	for _, row := range rows {
		rec := make([]any, 0, FieldCount)
		rb, rc := SplitTaxID(row.ReceiverTaxID)
		rec = append(rec, row.TransactionDate, rb, rc, row.OwnershipFlag, row.ShareCount)
		for _, v := range row.Amounts.Values() {
			rec = append(rec, v)
		}
		for _, v := range row.Credits.Values() {
			rec = append(rec, v)
		}
		rec = append(rec, row.CertificateNo)
		grid = append(grid, rec)
	}

	for _, ex := range excess {
		eb, ec := SplitTaxID(ex.BeneficiaryTaxID)
		grid = append(grid, []any{"RETIRO EN EXCESO", eb, ec, ex.Amount})
	}

	summary := make([]any, 0, FieldCount)
	summary = append(summary, "TOTALES", "", "")
	for col := 3; col <= 32; col++ {
		summary = append(summary, totals.Columns[col])
	}
	summary = append(summary, totals.RowCount)
	grid = append(grid, summary)

	return grid
}

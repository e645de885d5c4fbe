package declaration

// Totals holds the per-column sums of a filing run, keyed by declaration
// column number 1..35. Non-numeric columns (date, receiver id, certificate
// number) stay zero. Totals are recomputed on every generation and never
// persisted.
type Totals struct {
	Columns        [36]int64
	RowCount       int
	ExcessRowCount int
}

// Aggregate sums the numeric columns of all rows. The sum is commutative, so
// the result does not depend on row order. An empty row list yields all-zero
// totals with RowCount 0.
func Aggregate(rows []DeclarationRow) Totals {
	var t Totals
	t.RowCount = len(rows)
	for _, row := range rows {
		t.Columns[3] += int64(row.OwnershipFlag)
		t.Columns[4] += row.ShareCount
		for i, v := range row.Amounts.Values() {
			t.Columns[5+i] += v
		}
		for i, v := range row.Credits.Values() {
			t.Columns[17+i] += v
		}
	}
	return t
}

// WithExcess folds excess-withdrawal rows into column 35 and the excess row
// count, returning the extended totals.
func (t Totals) WithExcess(rows []ExcessWithdrawalRow) Totals {
	t.ExcessRowCount = len(rows)
	for _, row := range rows {
		t.Columns[35] += row.Amount
	}
	return t
}

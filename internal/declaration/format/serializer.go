package format

import (
	"strconv"
	"strings"

	declaration "taxfiling-cloud/internal/declaration/domain"
)

// Serializer renders a filing run into the authority's declaration file.
// It is a stateless collaborator: construct once, inject where needed.
type Serializer struct {
	tmpl *Template
}

// NewSerializer constructs a serializer over the authority template.
func NewSerializer() *Serializer {
	return &Serializer{tmpl: AuthorityTemplate()}
}

// Serialize produces the complete declaration file content. Output bytes are
// a deterministic function of the input: same declarant, rows and totals
// always produce identical content. The boilerplate header and summary
// blocks are emitted even for an empty row set. A missing declarant tax id
// aborts before any content is produced.
func (s *Serializer) Serialize(d declaration.Declarant, rows []declaration.DeclarationRow, excess []declaration.ExcessWithdrawalRow, totals declaration.Totals, yearLabel string) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	lines := s.tmpl.Lines()
	body, check := SplitTaxID(d.TaxID)
	lines[s.tmpl.Index(SlotDeclarantIdentity)] = padLine(body, check, d.LegalName)
	lines[s.tmpl.Index(SlotDeclarantContact)] = padLine(d.Email, yearLabel)
	lines[s.tmpl.Index(SlotExcessSummary)] = padLine(
		"SUBTOTAL RETIROS EN EXCESO",
		"",
		strconv.FormatInt(totals.Columns[35], 10),
		strconv.Itoa(totals.ExcessRowCount),
	)
	lines[s.tmpl.Index(SlotSummary)] = summaryLine(totals)

	var b strings.Builder
	for i, line := range lines {
		b.WriteString(line)
		b.WriteString(LineTerminator)
		if i == s.tmpl.Index(SlotDataHeader) {
			for _, row := range rows {
				b.WriteString(DataLine(row))
				b.WriteString(LineTerminator)
			}
		}
		if i == s.tmpl.Index(SlotExcessHeader) {
			for _, ex := range excess {
				b.WriteString(excessLine(ex))
				b.WriteString(LineTerminator)
			}
		}
	}
	return b.String(), nil
}

// DataLine formats one declaration row as a transaction-section line. The
// receiver tax id occupies two physical fields, body and check digit.
func DataLine(row declaration.DeclarationRow) string {
	fields := make([]string, 0, FieldCount)
	body, check := SplitTaxID(row.ReceiverTaxID)
	fields = append(fields,
		row.TransactionDate,
		body,
		check,
		strconv.Itoa(row.OwnershipFlag),
		strconv.FormatInt(row.ShareCount, 10),
	)
	for _, v := range row.Amounts.Values() {
		fields = append(fields, strconv.FormatInt(v, 10))
	}
	for _, v := range row.Credits.Values() {
		fields = append(fields, strconv.FormatInt(v, 10))
	}
	fields = append(fields, row.CertificateNo)
	return strings.Join(fields, Delimiter)
}

// summaryLine lays the totals under their data columns: label, blank tax-id
// fields, one total per numeric column 3..32, and the row count in the
// certificate position.
func summaryLine(totals declaration.Totals) string {
	fields := make([]string, 0, FieldCount)
	fields = append(fields, "TOTALES", "", "")
	for col := 3; col <= 32; col++ {
		fields = append(fields, strconv.FormatInt(totals.Columns[col], 10))
	}
	fields = append(fields, strconv.Itoa(totals.RowCount))
	return strings.Join(fields, Delimiter)
}

func excessLine(ex declaration.ExcessWithdrawalRow) string {
	body, check := SplitTaxID(ex.BeneficiaryTaxID)
	return padLine(body, check, strconv.FormatInt(ex.Amount, 10))
}

// SplitTaxID splits a national tax id into its numeric body and its check
// digit, stripping thousands separators from the body. Ids arrive already
// validated; this is a formatting concern only.
func SplitTaxID(id string) (body, check string) {
	if i := strings.LastIndex(id, "-"); i >= 0 {
		body, check = id[:i], id[i+1:]
	} else if len(id) > 1 {
		body, check = id[:len(id)-1], id[len(id)-1:]
	} else {
		body = id
	}
	return strings.ReplaceAll(body, ".", ""), check
}

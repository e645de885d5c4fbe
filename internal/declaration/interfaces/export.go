package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"taxfiling-cloud/internal/declaration/application"
	"taxfiling-cloud/internal/declaration/format"
)

// utf8BOM prefixes the plain-CSV surface; the authority file itself must
// stay BOM-free.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Exporter renders a generated filing into its download surfaces. The
// serializer and grid builder are injected collaborators of the filing run;
// the exporter never recomputes formula output.
type Exporter struct{}

// NewExporter constructs an exporter.
func NewExporter() *Exporter { return &Exporter{} }

// AuthorityFile returns the declaration file bytes exactly as serialized.
func (e *Exporter) AuthorityFile(f *application.Filing) []byte {
	return []byte(f.Content)
}

// PlainCSV returns the declaration content as a BOM-prefixed CSV for
// spreadsheet tools that sniff encoding from the first bytes.
func (e *Exporter) PlainCSV(f *application.Filing) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString(f.Content)
	return buf.Bytes()
}

// BuildXLSX renders the declaration grid as a workbook.
func (e *Exporter) BuildXLSX(f *application.Filing) ([]byte, error) {
	grid := format.BuildGrid(f.Declarant, f.Rows, f.Excess, f.Totals, f.YearLabel)

	wb := excelize.NewFile()
	sheet := "declaracion"
	wb.SetSheetName("Sheet1", sheet)
	for i, record := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(sheet, cell, &record); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPDF renders a summary document for a filing: declarant block, totals
// block and row counts. Not the authority surface, a human-readable one.
func (e *Exporter) BuildPDF(f *application.Filing) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Annual Dividend Declaration Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Declarant: %s", f.Declarant.LegalName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Tax ID: %s", f.DeclarantTaxID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Tax year: %s", f.YearLabel))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", f.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rows: %d  Excess rows: %d", f.Totals.RowCount, f.Totals.ExcessRowCount))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, "Column", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	headers := format.TransactionHeaders()
	for col := 5; col <= 32; col++ {
		total := f.Totals.Columns[col]
		if total == 0 {
			continue
		}
		// The check-digit field absorbs the split: logical column n sits at
		// physical header index n.
		label := headers[col]
		pdf.CellFormat(120, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%d", total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

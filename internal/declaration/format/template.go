// Package format owns the receiving authority's fixed declaration layout:
// the positional semicolon-delimited skeleton, the column order, and the
// CRLF framing. A single column shift here invalidates a filing, so the
// template is modeled as named slots over an immutable line sequence
// instead of raw index splicing.
package format

import "strings"

// FieldCount is the number of physical fields per line. The 33 logical
// columns of the transaction section expand to 34 physical fields because
// the receiver tax id is emitted as body and check digit separately.
const FieldCount = 34

// Delimiter separates fields; LineTerminator joins lines. Both are part of
// the contract with the receiving authority. LF-only output is rejected.
const (
	Delimiter      = ";"
	LineTerminator = "\r\n"
)

// Slot names a line of the skeleton that the serializer fills or inserts
// after. Offsets are resolved through the template, never hard-coded at the
// call site.
type Slot int

const (
	// SlotDeclarantIdentity carries tax id body, check digit and legal name.
	SlotDeclarantIdentity Slot = iota
	// SlotDeclarantContact carries email and the fiscal-year label.
	SlotDeclarantContact
	// SlotDataHeader is the transaction column-header line; data rows are
	// inserted immediately after it.
	SlotDataHeader
	// SlotExcessHeader is the excess-withdrawal column-header line; excess
	// rows are inserted immediately after it.
	SlotExcessHeader
	// SlotExcessSummary carries the excess-withdrawal subtotal.
	SlotExcessSummary
	// SlotSummary carries the final totals block.
	SlotSummary
)

// Template is the authority's skeleton: an ordered sequence of lines plus
// the slot positions within it.
type Template struct {
	lines []string
	slots map[Slot]int
}

// Lines returns a copy of the skeleton lines.
func (t *Template) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Index returns the line index of a slot.
func (t *Template) Index(s Slot) int {
	return t.slots[s]
}

var transactionHeaders = []string{
	"FECHA PAGO",
	"RUT RECEPTOR",
	"DV",
	"TIPO PROPIEDAD",
	"CANTIDAD ACCIONES",
	"MONTO AFECTO CON DERECHO A CREDITO",
	"MONTO AFECTO REGIMEN ANTERIOR",
	"MONTO CREDITO VOLUNTARIO",
	"MONTO SIN DERECHO A CREDITO",
	"RENTAS EXENTAS IGC",
	"INGRESOS NO CONSTITUTIVOS DE RENTA",
	"RENTAS CON IMPUESTO SUSTITUTIVO",
	"DEVOLUCION DE CAPITAL",
	"RENTAS EXENTAS IMPUESTO ADICIONAL",
	"RENTAS CON TRIBUTACION CUMPLIDA",
	"FONDOS ACUMULADOS REGIMEN ANTERIOR",
	"OTRAS CANTIDADES",
	"CREDITO IDPC 2017-2019 SIN DEVOLUCION",
	"CREDITO IDPC 2017-2019 CON DEVOLUCION",
	"CREDITO IDPC DESDE 2020 SIN DEVOLUCION",
	"CREDITO IDPC DESDE 2020 CON DEVOLUCION",
	"CREDITO IDPC CON RESTITUCION SIN DEVOLUCION",
	"CREDITO IDPC CON RESTITUCION CON DEVOLUCION",
	"CREDITO RENTAS EXENTAS SIN DEVOLUCION",
	"CREDITO RENTAS EXENTAS CON DEVOLUCION",
	"CREDITO VOLUNTARIO",
	"CREDITO ACUMULADO HASTA 2016 SIN DEVOLUCION",
	"CREDITO ACUMULADO HASTA 2016 CON DEVOLUCION",
	"CREDITO ACUMULADO RENTAS EXENTAS",
	"CREDITO ACUMULADO VOLUNTARIO",
	"CREDITO ACUMULADO OTRAS CANTIDADES",
	"CREDITO IMPUESTO ADICIONAL",
	"CREDITO DEVOLUCION DE CAPITAL",
	"NUMERO CERTIFICADO",
}

// AuthorityTemplate returns the fixed declaration skeleton.
func AuthorityTemplate() *Template {
	blank := blankLine()
	lines := []string{
		padLine("DECLARACION JURADA ANUAL SOBRE RETIROS, REMESAS Y/O DIVIDENDOS DISTRIBUIDOS Y CREDITOS CORRESPONDIENTES"),
		blank,
		padLine("RUT DECLARANTE", "DV", "NOMBRE O RAZON SOCIAL"),
		blank, // SlotDeclarantIdentity
		padLine("CORREO ELECTRONICO", "ANO TRIBUTARIO"),
		blank, // SlotDeclarantContact
		blank,
		padLine("SECCION A: ANTECEDENTES DE RETIROS, REMESAS Y/O DIVIDENDOS DISTRIBUIDOS"),
		strings.Join(transactionHeaders, Delimiter), // SlotDataHeader
		padLine("SECCION B: RETIROS EN EXCESO"),
		padLine("RUT BENEFICIARIO", "DV", "MONTO RETIRO EN EXCESO"), // SlotExcessHeader
		blank, // SlotExcessSummary
		padLine("CUADRO RESUMEN FINAL DE LA DECLARACION"),
		blank, // SlotSummary
		blank,
	}
	return &Template{
		lines: lines,
		slots: map[Slot]int{
			SlotDeclarantIdentity: 3,
			SlotDeclarantContact:  5,
			SlotDataHeader:        8,
			SlotExcessHeader:      10,
			SlotExcessSummary:     11,
			SlotSummary:           13,
		},
	}
}

// TransactionHeaders returns the data-section column headers in order.
func TransactionHeaders() []string {
	out := make([]string, len(transactionHeaders))
	copy(out, transactionHeaders)
	return out
}

func blankLine() string {
	return strings.Repeat(Delimiter, FieldCount-1)
}

// padLine joins the given fields and pads with empty fields to FieldCount.
func padLine(fields ...string) string {
	padded := make([]string, FieldCount)
	copy(padded, fields)
	return strings.Join(padded, Delimiter)
}

package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"taxfiling-cloud/internal/auth"
	"taxfiling-cloud/internal/declaration/application"
	declaration "taxfiling-cloud/internal/declaration/domain"
	"taxfiling-cloud/internal/observability/metrics"
)

// ExportRecorder notes completed exports. Implemented by the filing
// repository; optional.
type ExportRecorder interface {
	RecordExport(ctx context.Context, filingID, exportFormat, filename string) error
}

// FilingHandler handles declaration filing APIs under /api/v1/filings.
type FilingHandler struct {
	service  *application.DeclarationService
	exporter *Exporter
	recorder ExportRecorder
	defaults declaration.Declarant
	docType  string
}

// NewFilingHandler constructs a handler. The default declarant fills
// requests that omit the declarant block; docType prefixes export filenames.
func NewFilingHandler(service *application.DeclarationService, exporter *Exporter, recorder ExportRecorder, defaults declaration.Declarant, docType string) (*FilingHandler, error) {
	if service == nil {
		return nil, errors.New("filing handler: nil service")
	}
	if exporter == nil {
		exporter = NewExporter()
	}
	if docType == "" {
		docType = "DJ"
	}
	return &FilingHandler{service: service, exporter: exporter, recorder: recorder, defaults: defaults, docType: docType}, nil
}

type generateRequest struct {
	Declarant  declarantPayload `json:"declarant"`
	FiscalYear int              `json:"fiscal_year"`
	Overrides  overridesPayload `json:"overrides"`
	Format     string           `json:"format"`
}

type declarantPayload struct {
	TaxID     string `json:"tax_id"`
	LegalName string `json:"legal_name"`
	Address   string `json:"address"`
	Commune   string `json:"commune"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type overridesPayload struct {
	Address       string `json:"address"`
	Commune       string `json:"commune"`
	Phone         string `json:"phone"`
	YearLabel     string `json:"year_label"`
	ReceiverTaxID string `json:"receiver_tax_id"`
	ShareCount    int64  `json:"share_count"`
	OwnershipFlag int    `json:"ownership_flag"`
}

// ServeHTTP routes filing requests.
func (h *FilingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/filings/generate" && r.Method == http.MethodPost {
		h.handleGenerate(w, r)
		return
	}
	if path == "/api/v1/filings/export" && r.Method == http.MethodPost {
		h.handleExport(w, r)
		return
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/filings/"); ok && r.Method == http.MethodGet {
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *FilingHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGenerateRequest(w, r)
	if !ok {
		return
	}
	d := h.declarantFor(req)
	if !ensureDeclarantScope(w, r, d.TaxID) {
		return
	}
	filing, err := h.service.Generate(r.Context(), d, req.FiscalYear, req.Overrides.toDomain())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"filing_id":        filing.ID,
		"row_count":        filing.Totals.RowCount,
		"excess_row_count": filing.Totals.ExcessRowCount,
		"content_hash":     filing.ContentHash,
		"filename":         filing.Filename(h.docType, "csv"),
	})
}

// handleExport regenerates the filing and streams the requested surface.
// The pipeline is pure and sub-second for realistic row counts, so exports
// recompute instead of reconstructing rows from storage.
func (h *FilingHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGenerateRequest(w, r)
	if !ok {
		return
	}
	d := h.declarantFor(req)
	if !ensureDeclarantScope(w, r, d.TaxID) {
		return
	}
	exportFormat := req.Format
	if exportFormat == "" {
		exportFormat = "file"
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveFilingExport(exportFormat, result, time.Since(start))
	}()

	filing, err := h.service.Generate(r.Context(), d, req.FiscalYear, req.Overrides.toDomain())
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}

	var payload []byte
	var contentType, ext string
	switch exportFormat {
	case "file":
		payload = h.exporter.AuthorityFile(filing)
		contentType, ext = "text/csv; charset=utf-8", "csv"
	case "csv":
		payload = h.exporter.PlainCSV(filing)
		contentType, ext = "text/csv; charset=utf-8", "csv"
	case "xlsx":
		payload, err = h.exporter.BuildXLSX(filing)
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	case "pdf":
		payload, err = h.exporter.BuildPDF(filing)
		contentType, ext = "application/pdf", "pdf"
	default:
		result = metrics.ResultError
		http.Error(w, "unknown export format", http.StatusBadRequest)
		return
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := filing.Filename(h.docType, ext)
	if h.recorder != nil {
		_ = h.recorder.RecordExport(r.Context(), filing.ID, exportFormat, filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(payload)
}

func (h *FilingHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	id, suffix, _ := strings.Cut(rest, "/")
	filing, err := h.service.Find(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	switch suffix {
	case "":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"filing_id":        filing.ID,
			"declarant_tax_id": filing.DeclarantTaxID,
			"fiscal_year":      filing.FiscalYear,
			"year_label":       filing.YearLabel,
			"row_count":        filing.Totals.RowCount,
			"excess_row_count": filing.Totals.ExcessRowCount,
			"content_hash":     filing.ContentHash,
			"created_at":       filing.CreatedAt,
		})
	case "file":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+filing.Filename(h.docType, "csv"))
		_, _ = w.Write(h.exporter.AuthorityFile(filing))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *FilingHandler) declarantFor(req generateRequest) declaration.Declarant {
	if req.Declarant.TaxID == "" {
		return h.defaults
	}
	return req.Declarant.toDomain()
}

// ensureDeclarantScope rejects requests whose token is bound to a different
// declarant than the one being filed for.
func ensureDeclarantScope(w http.ResponseWriter, r *http.Request, taxID string) bool {
	scoped := auth.DeclarantIDFromContext(r.Context())
	if scoped != "" && taxID != "" && scoped != taxID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (generateRequest, bool) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	if req.FiscalYear == 0 {
		http.Error(w, "fiscal_year required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (p declarantPayload) toDomain() declaration.Declarant {
	return declaration.Declarant{
		TaxID:     p.TaxID,
		LegalName: p.LegalName,
		Address:   p.Address,
		Commune:   p.Commune,
		Email:     p.Email,
		Phone:     p.Phone,
	}
}

func (p overridesPayload) toDomain() application.Overrides {
	return application.Overrides{
		Address:       p.Address,
		Commune:       p.Commune,
		Phone:         p.Phone,
		YearLabel:     p.YearLabel,
		ReceiverTaxID: p.ReceiverTaxID,
		ShareCount:    p.ShareCount,
		OwnershipFlag: p.OwnershipFlag,
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, declaration.ErrFilingNotFound), errors.Is(err, declaration.ErrQualificationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, declaration.ErrMissingDeclarantTaxID), errors.Is(err, declaration.ErrInvalidRegimeConfig):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

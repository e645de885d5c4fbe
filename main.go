package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"taxfiling-cloud/internal/auth"
	"taxfiling-cloud/internal/declaration/application"
	declaration "taxfiling-cloud/internal/declaration/domain"
	"taxfiling-cloud/internal/declaration/format"
	declarationrepo "taxfiling-cloud/internal/declaration/infrastructure/postgres"
	"taxfiling-cloud/internal/declaration/interfaces"
	"taxfiling-cloud/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	qualificationRepo := declarationrepo.NewQualificationRepository(db)
	filingRepo := declarationrepo.NewFilingRepository(db)

	serializer := format.NewSerializer()
	service, err := application.NewDeclarationService(
		qualificationRepo,
		serializer,
		application.WithFilingRepository(filingRepo),
		application.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("declaration service error: %v", err)
	}

	defaultDeclarant := declaration.Declarant{
		TaxID:     cfg.Declarant.TaxID,
		LegalName: cfg.Declarant.LegalName,
		Address:   cfg.Declarant.Address,
		Commune:   cfg.Declarant.Commune,
		Email:     cfg.Declarant.Email,
		Phone:     cfg.Declarant.Phone,
	}
	filingHandler, err := interfaces.NewFilingHandler(service, interfaces.NewExporter(), filingRepo, defaultDeclarant, cfg.DocType)
	if err != nil {
		logger.Fatalf("filing handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/filings/generate", filingHandler)
	mux.Handle("/api/v1/filings/export", filingHandler)
	mux.Handle("/api/v1/filings/", filingHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

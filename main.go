package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"govnext-ledger/internal/auth"
	executionapp "govnext-ledger/internal/execution/application"
	executionpg "govnext-ledger/internal/execution/infrastructure/postgres"
	executionhttp "govnext-ledger/internal/execution/interfaces/http"
	fiscalyearapp "govnext-ledger/internal/fiscalyear/application"
	fiscalyearpg "govnext-ledger/internal/fiscalyear/infrastructure/postgres"
	fiscalyearhttp "govnext-ledger/internal/fiscalyear/interfaces/http"
	"govnext-ledger/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ledgerCfg, err := executionapp.LoadConfig()
	if err != nil {
		logger.Fatalf("ledger config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	fiscalYearRepo := fiscalyearpg.NewRepository(db)
	fiscalYearService, err := fiscalyearapp.NewRegistryService(fiscalYearRepo, logger)
	if err != nil {
		logger.Fatalf("fiscal year service error: %v", err)
	}

	uow, err := executionpg.NewUnitOfWork(db)
	if err != nil {
		logger.Fatalf("unit of work error: %v", err)
	}
	clock := executionapp.SystemClock{}

	allocationService, err := executionapp.NewAllocationService(uow, fiscalYearService, ledgerCfg, clock)
	if err != nil {
		logger.Fatalf("allocation service error: %v", err)
	}
	commitmentService, err := executionapp.NewCommitmentService(uow, ledgerCfg, clock)
	if err != nil {
		logger.Fatalf("commitment service error: %v", err)
	}
	settlementService, err := executionapp.NewSettlementService(uow, ledgerCfg, clock)
	if err != nil {
		logger.Fatalf("settlement service error: %v", err)
	}
	disbursementService, err := executionapp.NewDisbursementService(uow, ledgerCfg, clock)
	if err != nil {
		logger.Fatalf("disbursement service error: %v", err)
	}
	queryService, err := executionapp.NewQueryService(uow)
	if err != nil {
		logger.Fatalf("query service error: %v", err)
	}

	fiscalYearHandler, err := fiscalyearhttp.NewHandler(fiscalYearService)
	if err != nil {
		logger.Fatalf("fiscal year handler error: %v", err)
	}
	allocationHandler, err := executionhttp.NewAllocationHandler(allocationService, queryService)
	if err != nil {
		logger.Fatalf("allocation handler error: %v", err)
	}
	commitmentHandler, err := executionhttp.NewCommitmentHandler(commitmentService, queryService)
	if err != nil {
		logger.Fatalf("commitment handler error: %v", err)
	}
	settlementHandler, err := executionhttp.NewSettlementHandler(settlementService, queryService)
	if err != nil {
		logger.Fatalf("settlement handler error: %v", err)
	}
	disbursementHandler, err := executionhttp.NewDisbursementHandler(disbursementService)
	if err != nil {
		logger.Fatalf("disbursement handler error: %v", err)
	}
	movementHandler, err := executionhttp.NewMovementHandler(queryService)
	if err != nil {
		logger.Fatalf("movement handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/fiscal-years", fiscalYearHandler)
	mux.Handle("/api/v1/fiscal-years/", fiscalYearHandler)
	mux.Handle("/api/v1/allocations", allocationHandler)
	mux.Handle("/api/v1/allocations/", allocationHandler)
	mux.Handle("/api/v1/commitments", commitmentHandler)
	mux.Handle("/api/v1/commitments/", commitmentHandler)
	mux.Handle("/api/v1/settlements", settlementHandler)
	mux.Handle("/api/v1/settlements/", settlementHandler)
	mux.Handle("/api/v1/disbursements", disbursementHandler)
	mux.Handle("/api/v1/disbursements/", disbursementHandler)
	mux.Handle("/api/v1/movements", movementHandler)
	mux.Handle("/api/v1/movements/", movementHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
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

package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	analysisapp "carbonsite-engine/internal/analysis/application"
	analysisrepo "carbonsite-engine/internal/analysis/infrastructure/postgres"
	analysishttp "carbonsite-engine/internal/analysis/interfaces/http"
	"carbonsite-engine/internal/audit"
	"carbonsite-engine/internal/auth"
	"carbonsite-engine/internal/config"
	"carbonsite-engine/internal/observability/metrics"
	"carbonsite-engine/internal/policy"
	screeningapp "carbonsite-engine/internal/screening/application"
	screeningrepo "carbonsite-engine/internal/screening/infrastructure/postgres"
	screeninghttp "carbonsite-engine/internal/screening/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	env := loadEnv()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", env.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	siteRepo := screeningrepo.NewSiteRepository(db)
	screeningService, err := screeningapp.NewService(siteRepo, cfg.Weights, logger)
	if err != nil {
		logger.Fatalf("screening service error: %v", err)
	}
	screeningHandler, err := screeninghttp.NewHandler(screeningService, auditRepo)
	if err != nil {
		logger.Fatalf("screening handler error: %v", err)
	}

	policyProvider := policy.NewPostgresProvider(db, policy.WithFallback(policy.NewStaticProvider()))
	reportRepo := analysisrepo.NewReportRepository(db)
	analysisService, err := analysisapp.NewService(screeningService, policyProvider, reportRepo, cfg.Finance, cfg.TopN, logger)
	if err != nil {
		logger.Fatalf("analysis service error: %v", err)
	}
	analysisHandler, err := analysishttp.NewHandler(analysisService, auditRepo)
	if err != nil {
		logger.Fatalf("analysis handler error: %v", err)
	}

	authPolicy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(env.JWTSecret), authPolicy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/sites", screeningHandler)
	mux.Handle("/api/v1/sites/", screeningHandler)
	mux.Handle("/api/v1/analysis", analysisHandler)
	mux.Handle("/api/v1/analysis/", analysisHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: env.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", env.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type env struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadEnv() env {
	cfg := env{
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

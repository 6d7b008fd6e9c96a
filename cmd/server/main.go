package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/insurcert/backend/internal/config"
	"github.com/insurcert/backend/internal/handler"
	appMiddleware "github.com/insurcert/backend/internal/middleware"
	"github.com/insurcert/backend/internal/repository"
	"github.com/insurcert/backend/internal/service"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	// Initialize the certificate store: Postgres when configured, the
	// in-memory store otherwise (mirrors the original in-memory database
	// setup for local development).
	var store service.CertificateStore
	var pinger handler.Pinger

	if cfg.DatabaseURL != "" {
		db, err := repository.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database error: %v", err)
		}
		defer db.Close()

		if err := repository.RunMigrations(ctx, db); err != nil {
			log.Fatalf("migration error: %v", err)
		}
		log.Println("database connected & migrated")

		store = repository.NewCertificateRepository(db)
		pinger = db
	} else {
		mem := repository.NewMemoryStore()
		store = mem
		pinger = mem
		log.Println("no DATABASE_URL set, using in-memory certificate store")
	}

	// Initialize services
	certSvc := service.NewCertificateService(store)

	// Seed a demo certificate on first startup
	if err := certSvc.SeedDemoData(ctx); err != nil {
		log.Fatalf("seed error: %v", err)
	}

	// Initialize handlers
	certHandler := handler.NewCertificatesHandler(certSvc)
	plansHandler := handler.NewPlansHandler()
	healthHandler := handler.NewHealthHandler(pinger)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.RequestID)
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	r.Get("/health", healthHandler.Check)
	r.Get("/api/pricingplans", plansHandler.List)
	r.Get("/api/pricingplans/display", plansHandler.Display)
	r.Get("/api/certificates", certHandler.List)
	r.Post("/api/certificates", certHandler.Create)

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("certificate service listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

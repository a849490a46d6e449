package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/balansoire/auto-qcm/internal/api/http"
	"github.com/balansoire/auto-qcm/internal/auth"
	"github.com/balansoire/auto-qcm/internal/config"
	"github.com/balansoire/auto-qcm/internal/db"
	"github.com/balansoire/auto-qcm/internal/genai"
	"github.com/balansoire/auto-qcm/internal/qcm"
	"github.com/balansoire/auto-qcm/internal/quota"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- Stores ---
	// The row-store is authoritative when configured. Without it the API
	// runs in degraded mode: in-memory records, quota enforcement inert.
	var store qcm.Store
	var ledger quota.Ledger
	if cfg.StoreConfigured() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		store = qcm.NewSQLStore(dbh)
		ledger = quota.NewSQLLedger(dbh)
	} else {
		log.Printf("no row-store configured, using in-memory store (quota disabled)")
		store = qcm.NewMemoryStore()
	}

	// --- Generation backend ---
	sel := &genai.Selector{}
	if cfg.GeminiAPIKey != "" {
		sel.Primary = genai.NewGeminiBackend(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
	} else {
		log.Printf("GEMINI_API_KEY not set, all generations use the fallback generator")
	}

	resolver := auth.Resolver{DevMode: cfg.DevMode, DevUserID: cfg.DevUserID}
	a := api.New(store, ledger, sel, cfg.DevMode)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", api.Root)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	// Local token issuer for offline deployments without an identity
	// provider in front.
	if cfg.EnableLocalAuth {
		ti := auth.NewTokenIssuer(cfg.AuthHMACSecret, cfg.AdminPassHash)
		r.Post("/auth/dev_token", auth.DevTokenHandler(ti))
	}

	// Protected API: every endpoint goes through identity resolution.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(resolver))

		pr.Post("/generate_qcm", a.GenerateQCM)
		pr.Post("/save_qcm", a.SaveQCM)
		pr.Get("/history/{userID}", a.History)
		pr.Get("/usage_stats", a.UsageStats)
		pr.Get("/qcm/{qid}", a.GetQCM)
		pr.Delete("/qcm/{qid}", a.DeleteQCM)
	})

	log.Printf("listening on %s (dev=%v, store=%v, model=%s)",
		cfg.HTTPAddr, cfg.DevMode, cfg.StoreConfigured(), cfg.GeminiModel)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"github.com/unclebandit/quickreview-backend/internal/app"
	"github.com/unclebandit/quickreview-backend/internal/auth"
	"github.com/unclebandit/quickreview-backend/internal/config"
	"github.com/unclebandit/quickreview-backend/internal/controller"
	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/handler"
	"github.com/unclebandit/quickreview-backend/internal/logger"
	"github.com/unclebandit/quickreview-backend/internal/middleware"
)

func main() {
	ctx := context.Background()

	// Load .env
	envErr := godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Info("no .env file found, relying on OS environment variables")
	}

	conn, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	a, err := app.New(cfg, conn, log)
	if err != nil {
		log.Fatal("failed to build services", zap.Error(err))
	}

	if len(cfg.Auth.AdminTokens) == 0 {
		log.Warn("no admin tokens configured, admin API will reject every request")
	}
	if cfg.Auth.UsesDefaultNonceSecret() {
		log.Warn("AUTH_NONCE_SECRET is the default placeholder, set a real secret before exposing the admin API")
	}
	if cfg.Auth.HookSecret == "" {
		log.Warn("no hook secret configured, comment webhooks will reject every request")
	}

	admin := &controller.AdminRoutes{
		Auth:    auth.NewTokenAuthenticator(cfg.Auth.AdminTokens),
		Nonces:  auth.NewNonceManager(cfg.Auth.NonceSecret, cfg.Auth.NonceLifetime),
		Limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		Logger:  log.Named("admin"),
		Campaigns: &controller.CampaignController{
			CampaignService: a.Campaigns,
			ItemService:     a.Items,
			Logger:          log.Named("admin"),
		},
		Items:    &controller.ItemController{ItemService: a.Items, Logger: log.Named("admin")},
		Posts:    &controller.PostController{PostService: a.Posts, Logger: log.Named("admin")},
		Settings: &controller.SettingsController{SettingsService: a.Settings, Logger: log.Named("admin")},
	}
	hooks := handler.NewCommentHandler(a.Queue, log.Named("hooks"))
	references := handler.NewReferenceHandler(a.Validator, log.Named("references"))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(log.Named("http")))

	r.Mount("/admin", admin.Router())
	r.Mount("/hooks/comments", hooks.Routes(cfg.Auth.HookSecret))
	r.Get("/references/{reference}", references.CheckHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		hostname, _ := os.Hostname()
		controller.WriteJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"service":  "quickreview",
			"hostname": hostname,
		})
	})
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.PingContext(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","message":"postgres unavailable"}`))
			return
		}
		controller.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "postgres": "connected"})
	})
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddr(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Handler:        h2c.NewHandler(r, &http2.Server{}),
	}

	go func() {
		log.Info("server running", zap.String("addr", server.Addr), zap.String("env", cfg.App.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"civic-service/internal/config"
	"civic-service/internal/events"
	apptCreate "civic-service/internal/http-server/handlers/appointments/create"
	apptDelete "civic-service/internal/http-server/handlers/appointments/delete"
	apptGet "civic-service/internal/http-server/handlers/appointments/get"
	apptSchedule "civic-service/internal/http-server/handlers/appointments/schedule"
	apptStatus "civic-service/internal/http-server/handlers/appointments/status"
	blockedCreate "civic-service/internal/http-server/handlers/blocked_dates/create"
	blockedDelete "civic-service/internal/http-server/handlers/blocked_dates/delete"
	blockedGet "civic-service/internal/http-server/handlers/blocked_dates/get"
	calendarGet "civic-service/internal/http-server/handlers/calendar/get"
	concernCreate "civic-service/internal/http-server/handlers/concerns/create"
	concernGet "civic-service/internal/http-server/handlers/concerns/get"
	concernStatus "civic-service/internal/http-server/handlers/concerns/status"
	postBookmark "civic-service/internal/http-server/handlers/posts/bookmark"
	postCreate "civic-service/internal/http-server/handlers/posts/create"
	postGet "civic-service/internal/http-server/handlers/posts/get"
	updateCreate "civic-service/internal/http-server/handlers/updates/create"
	updateGet "civic-service/internal/http-server/handlers/updates/get"
	updateRead "civic-service/internal/http-server/handlers/updates/read"
	"civic-service/internal/kvcache"
	"civic-service/internal/lock"
	svc "civic-service/internal/service"
	"civic-service/internal/storage/postgres"
	slogpretty "civic-service/pkg/handlers/slogPretty"
	"civic-service/pkg/middleware/auth"
	"civic-service/pkg/middleware/mwLogger"
	"civic-service/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	cache, err := kvcache.New(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init kv cache", sl.Err(err))
		os.Exit(1)
	}

	var pub events.Publisher
	pub, err = events.NewPublisher(cfg.AMQPURL, cfg.Notify.Exchange)
	if err != nil {
		log.Error("Failed to init event publisher, events disabled", sl.Err(err))
		pub = events.NopPublisher{}
	}

	service := svc.NewService(storage, locker, pub, cache)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	router.Group(func(r chi.Router) {
		r.Use(auth.New(log, cfg.AuthSecret))

		// Appointments
		r.Post("/appointments", apptCreate.New(log, service))
		r.Get("/appointments", apptGet.New(log, service))
		r.Get("/appointments/{id}", apptGet.New(log, service))
		r.Delete("/appointments/{id}", apptDelete.New(log, service))

		// Calendar
		r.Get("/calendar", calendarGet.New(log, service))

		// Blocked dates (reads are shared; writes are admin-only below)
		r.Get("/blocked_dates", blockedGet.New(log, service))

		// Concerns
		r.Post("/concerns", concernCreate.New(log, service))
		r.Get("/concerns", concernGet.New(log, service))
		r.Get("/concerns/{id}", concernGet.New(log, service))

		// Posts
		r.Get("/posts", postGet.New(log, service))
		r.Post("/posts/{id}/bookmark", postBookmark.New(log, service))
		r.Delete("/posts/{id}/bookmark", postBookmark.New(log, service))

		// Updates
		r.Get("/updates", updateGet.New(log, service))
		r.Put("/updates/{id}/read", updateRead.New(log, service))

		// Admin
		r.Group(func(ar chi.Router) {
			ar.Use(auth.RequireAdmin)

			ar.Put("/appointments/{id}/status", apptStatus.New(log, service))
			ar.Put("/appointments/{id}/schedule", apptSchedule.New(log, service))

			ar.Post("/blocked_dates", blockedCreate.New(log, service))
			ar.Delete("/blocked_dates/{id}", blockedDelete.New(log, service))

			ar.Put("/concerns/{id}/status", concernStatus.New(log, service))

			ar.Post("/posts", postCreate.New(log, service))
			ar.Post("/updates", updateCreate.New(log, service))
		})
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	}

	if err := cache.Close(); err != nil {
		log.Error("Failed to close kv cache", sl.Err(err))
	}

	if err := pub.Close(); err != nil {
		log.Error("Failed to close event publisher", sl.Err(err))
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

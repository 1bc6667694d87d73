package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"mobiblog/cmd/app"
	"mobiblog/internal/config"
	"mobiblog/internal/middleware"
)

const idleEviction = 30 * time.Minute

func main() {
	cfg := config.LoadConfig()

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	go a.Run(ctx, idleEviction)

	r := chi.NewRouter()
	a.Handlers.Routes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           middleware.Chain(r, chimw.RequestID, chimw.RealIP, middleware.LoggingMiddleware, chimw.Recoverer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("MobiBlog listening on %s (backend %s, storage %s)", srv.Addr, cfg.APIBaseURL, cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	stop()
}

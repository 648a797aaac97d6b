// Command fivepseq-server provides a REST API for read classification.
//
// Usage:
//
//	fivepseq-server [options]
//
// Options:
//
//	-port     Port to listen on (default: 8080)
//	-host     Host to bind to (default: localhost)
//	-config   TOML configuration file (default: built-in references)
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grailbio/base/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aria-lang/fivepseq-go/api/handlers"
	"github.com/aria-lang/fivepseq-go/api/middleware"
	"github.com/aria-lang/fivepseq-go/internal/config"
)

func newRouter(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/sequence", func(r chi.Router) {
			r.Post("/reverse-complement", handlers.ReverseComplementHandler)
			r.Post("/validate", handlers.ValidateHandler)
		})
		r.Post("/seed/align", handlers.SeedAlignHandler)
		r.Post("/classify", handlers.ClassifyHandler(cfg))
		r.Post("/kmer/count", handlers.KMerCountHandler)
	})

	return r
}

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	host := flag.String("host", "localhost", "Host to bind to")
	configFile := flag.String("config", "", "TOML configuration file")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatalf("%v", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Printf("server is shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("could not gracefully shutdown: %v", err)
		}
		close(done)
	}()

	log.Printf("fivepseq API server starting on http://%s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("could not listen on %s: %v", addr, err)
	}

	<-done
	log.Printf("server stopped")
}

// Command dnadiagnoser-server provides a REST API for DNAdiagnoser.
//
// Usage:
//
//	dnadiagnoser-server [options]
//
// Options:
//
//	-port        Port to listen on (default: 8080)
//	-host        Host to bind to (default: localhost)
//	-references  Reference sequences file
//	-config      YAML configuration file
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
	"github.com/sirupsen/logrus"

	"github.com/aria-lang/dnadiagnoser-go/api/handlers"
	"github.com/aria-lang/dnadiagnoser-go/api/middleware"
	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/config"
	"github.com/aria-lang/dnadiagnoser-go/internal/reference"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	host := flag.String("host", "localhost", "Host to bind to")
	configFile := flag.String("config", "", "YAML configuration file")
	referencesFile := flag.String("references", "data/reference_sequences.tab", "Reference sequences file")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.WithError(err).Fatal("Could not load configuration")
	}
	if cfg.ReferencesFile == "" {
		cfg.ReferencesFile = *referencesFile
	}

	refs, err := reference.LoadFile(cfg.ReferencesFile)
	if err != nil {
		log.WithError(err).WithField("file", cfg.ReferencesFile).Fatal("Could not load references")
	}

	aligner, err := alignment.NewAligner(cfg.Scoring)
	if err != nil {
		log.WithError(err).Fatal("Invalid scoring")
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Mount("/api", handlers.New(refs, aligner, log, cfg).Routes())

	addr := fmt.Sprintf("%s:%d", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Fatal("Could not gracefully shutdown")
		}
		close(done)
	}()

	log.WithFields(logrus.Fields{
		"addr":       addr,
		"references": refs.Len(),
	}).Info("DNAdiagnoser API server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatalf("Could not listen on %s", addr)
	}

	<-done
	log.Info("Server stopped")
}

// Package server exposes the analytics engine to dashboard consumers over
// HTTP. It owns no computation: every request pins a reference timestamp,
// pulls one snapshot from the record source, and hands both to the engine.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/clinicore/registrystats/internal/catalog"
	"github.com/clinicore/registrystats/internal/classify"
	"github.com/clinicore/registrystats/internal/model"
)

// SnapshotSource materializes the registry records a request computes over.
// Fetching may block on I/O; the engine never does.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (*model.Snapshot, error)
}

// Server wires the record source, instrument catalog, and band table into
// the HTTP surface.
type Server struct {
	src   SnapshotSource
	cat   *catalog.Catalog
	bands []classify.Band
	log   zerolog.Logger
}

// New builds a Server.
func New(src SnapshotSource, cat *catalog.Catalog, bands []classify.Band, log zerolog.Logger) *Server {
	return &Server{src: src, cat: cat, bands: bands, log: log}
}

// Routes returns the chi router for the dashboard API.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/metrics/{section}", s.handleMetricsSection)
		r.Get("/targets/{targetID}/achievements", s.handleAchievements)
		r.Get("/export.csv", s.handleExportCSV)
	})
	return r
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("dashboard API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

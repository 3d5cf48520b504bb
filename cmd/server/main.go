// Package main provides the entry point for the SQL playground API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sql-playground/pkg/config"
	"github.com/nnnkkk7/sql-playground/pkg/connection"
	"github.com/nnnkkk7/sql-playground/pkg/health"
	"github.com/nnnkkk7/sql-playground/pkg/logging"
	"github.com/nnnkkk7/sql-playground/pkg/query"
	"github.com/nnnkkk7/sql-playground/server/handlers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		return err
	}

	connMgr, err := connection.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := connMgr.Close(); err != nil {
			log.WithError(err).Error("Failed to close connection pool")
		}
	}()

	executor := query.NewExecutor(connMgr, query.NewTracker(), log)
	executor.SetMaxTimeout(cfg.MaxQueryTimeout)

	router := handlers.NewRouter(handlers.RouterConfig{
		Query:             handlers.NewQueryHandler(executor, log, !cfg.IsProduction()),
		Health:            handlers.NewHealthHandler(health.NewProber(connMgr, log)),
		Logger:            log,
		IncludeDetails:    !cfg.IsProduction(),
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.MaxQueryTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":            cfg.Port,
			"mode":            cfg.Mode,
			"driver":          connMgr.Dialect().Name(),
			"max_connections": cfg.DB.MaxConnections,
		}).Info("Starting SQL playground server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		for _, st := range executor.Tracker().Snapshot() {
			log.WithFields(logrus.Fields{
				"query_id": st.ID,
				"route":    st.Route,
				"running":  time.Since(st.StartedAt).Round(time.Millisecond).String(),
			}).Warn("Query still running at shutdown")
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/dom"
	"storefront/internal/httpserver"
	"storefront/internal/metrics"
	"storefront/internal/session"
	"storefront/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	base := log.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		base.SetLevel(level)
	}
	logger := base.WithField("service", "storefront")
	gin.SetMode(gin.ReleaseMode)

	m := metrics.NewWithRegisterer(prometheus.DefaultRegisterer)
	client := api.New(cfg.APIURL, cfg.CDNURL, &http.Client{}, api.WithRecorder(m), api.WithLogger(logger.WithField("component", "api")))

	sessions := session.New(cfg.SessionTTL, func(ctx context.Context, id string) (*app.Storefront, error) {
		doc, err := dom.Parse(web.Index())
		if err != nil {
			return nil, err
		}
		sessionLogger := logger.WithField("session", id)
		s, err := app.New(doc, client,
			app.WithLogger(sessionLogger),
			app.WithOrderRecorder(m),
		)
		if err != nil {
			return nil, err
		}
		if err := s.Load(ctx); err != nil {
			sessionLogger.WithError(err).Warn("initial catalog load failed")
		}
		return s, nil
	}, session.WithRecorder(m), session.WithLimit(cfg.MaxSessions))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx, time.Minute)

	srv, err := httpserver.New(cfg.HTTPAddr, logger.WithField("component", "http"), httpserver.Deps{
		Sessions:    sessions,
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: cfg.CORSOrigins,
		SessionTTL:  cfg.SessionTTL,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("starting http server on %s (backend %s)", cfg.HTTPAddr, cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Errorf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	} else {
		logger.Info("server stopped")
	}
}

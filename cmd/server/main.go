package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/delivery_orders/internal/config"
	"github.com/Skotchmaster/delivery_orders/internal/es"
	"github.com/Skotchmaster/delivery_orders/internal/httpserver"
	"github.com/Skotchmaster/delivery_orders/internal/logging"
	"github.com/Skotchmaster/delivery_orders/internal/models"
	"github.com/Skotchmaster/delivery_orders/internal/mykafka"
	"github.com/Skotchmaster/delivery_orders/internal/realtime"
	"github.com/Skotchmaster/delivery_orders/internal/repo"
	"github.com/Skotchmaster/delivery_orders/internal/service"
	"github.com/Skotchmaster/delivery_orders/internal/tokens"
	"github.com/Skotchmaster/delivery_orders/pkg/db"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb, models.All()...); err != nil {
		logger.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	esCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	esClient, err := es.NewClient(esCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword, logger)
	cancel()
	if err != nil {
		logger.Error("es_init_failed", "error", err)
		os.Exit(1)
	}

	prod := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if prod == nil {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	r := &repo.GormRepo{DB: gdb}
	issuer := tokens.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)
	hub := realtime.NewHub(logger)

	catalog := &service.CatalogService{Repo: r, Events: prod}
	if idx := es.NewProductIndex(esClient, cfg.ESIndex); idx != nil {
		catalog.Index = idx
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())

	httpserver.Register(e, &httpserver.Deps{
		DB:             gdb,
		Logger:         logger,
		Tokens:         issuer,
		Hub:            hub,
		AuthHandler:    &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: issuer, Events: prod}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Hub: hub, Events: prod}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting_down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server_error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}
	logger.Info("shutdown_complete")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/forensight/internal/application"
	appai "github.com/bryanwahyu/forensight/internal/application/ai"
	appanalysis "github.com/bryanwahyu/forensight/internal/application/analysis"
	apppixel "github.com/bryanwahyu/forensight/internal/application/pixelops"
	"github.com/bryanwahyu/forensight/internal/config"
	"github.com/bryanwahyu/forensight/internal/domain/analyst"
	"github.com/bryanwahyu/forensight/internal/domain/faults"
	"github.com/bryanwahyu/forensight/internal/domain/media"
	openaiClient "github.com/bryanwahyu/forensight/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/forensight/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/forensight/internal/infra/db/postgres"
	"github.com/bryanwahyu/forensight/internal/infra/exifmeta"
	"github.com/bryanwahyu/forensight/internal/infra/httpserver"
	"github.com/bryanwahyu/forensight/internal/infra/probe"
	minioStore "github.com/bryanwahyu/forensight/internal/infra/storage"
	"github.com/bryanwahyu/forensight/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logger.WithError(err).Fatal("config load error")
	}

	ctx := context.Background()

	// connect DB sesuai driver
	var (
		db          *sql.DB
		records     media.Repository
		catalog     media.Catalog
		faultRepo   faults.Repository
		analystRepo analyst.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.WithError(err).Fatal("postgres connect error")
		}
		records = postgresp.NewMediaRepository(db)
		catalog = postgresp.NewCatalogRepository(db)
		faultRepo = postgresp.NewFaultRepository(db)
		analystRepo = postgresp.NewAnalystRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.WithError(err).Fatal("mysql connect error")
		}
		records = mysqlp.NewMediaRepository(db)
		catalog = mysqlp.NewCatalogRepository(db)
		faultRepo = mysqlp.NewFaultRepository(db)
		analystRepo = mysqlp.NewAnalystRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.WithError(err).Fatal("minio init error")
	}

	// init services
	analysisSvc := appanalysis.NewService(
		records,
		catalog,
		store,
		probe.New(cfg.ProbeTimeout()),
		exifmeta.New(),
		faultRepo,
		application.SystemClock{},
		logger,
	)
	pixelSvc := apppixel.NewService(store, logger)
	aiSvc := appai.NewService(
		openaiClient.NewClient(cfg.AI.APIKey, cfg.AI.Model),
		analystRepo,
		application.SystemClock{},
	)

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  &middleware.StorageHealthChecker{Store: store},
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	if len(cfg.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}
	mux.Mount("/", httpserver.NewRouter(analysisSvc, pixelSvc, aiSvc, checkers, logger))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.WithError(err).Warn("shutdown error")
	}
}

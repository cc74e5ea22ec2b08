package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/hhyyy9/logistics-platform/client"
	"github.com/hhyyy9/logistics-platform/internal/application"
	"github.com/hhyyy9/logistics-platform/internal/config"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/infra/cache"
	"github.com/hhyyy9/logistics-platform/internal/infra/database"
	"github.com/hhyyy9/logistics-platform/internal/infra/gateway"
	"github.com/hhyyy9/logistics-platform/internal/infra/repository"
	"github.com/hhyyy9/logistics-platform/internal/observability"
	"github.com/hhyyy9/logistics-platform/internal/pkg/logger"
	"github.com/hhyyy9/logistics-platform/internal/present/rest"
	"github.com/hhyyy9/logistics-platform/internal/service"
	"github.com/hhyyy9/logistics-platform/internal/usecase"
)

func main() {
	configPath := flag.String("config", "/etc/logistics/config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(conf.Server.LogMode)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()
	restore := log.ReplaceGlobals()
	defer restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     conf.Server.EnableTrace,
		Endpoint:    conf.Server.TraceEndpoint,
		ServiceName: "logistics",
	})
	if err != nil {
		log.Fatal("failed to init tracing", "error", err)
	}
	defer shutdownTracing(context.Background())

	if conf.ModuleAddress() == "" {
		log.Warn("module address is not configured; ledger operations will fail", "env", config.EnvModuleAddress)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	ledger := client.New(conf.Ledger.NodeURL, conf.Ledger.ViewRatePerSecond, conf.Ledger.ViewBurst)
	signer := gateway.NewSignerGateway(conf.Signer.Endpoint)

	deps := usecase.Deps{
		ModuleAddress: conf.ModuleAddress(),
		Reader:        ledger,
		Recorder:      metrics,
		Logger:        log,
	}

	var submissions *repository.SubmissionRepository
	if conf.Server.PostgresDsn != "" {
		db, err := database.NewPostgres(conf.Server.PostgresDsn)
		if err != nil {
			log.Fatal("failed to connect database", "error", err)
		}
		if err := database.MigratePostgres(db); err != nil {
			log.Fatal("failed to migrate database", "error", err)
		}
		submissions = repository.NewSubmissionRepository(db)
		deps.Journal = submissions
	}

	rdb, err := database.NewRedis(ctx, conf.Server.RedisAddr, "", conf.Server.RedisDB)
	if err != nil {
		log.Fatal("failed to connect redis", "error", err)
	}
	signals := service.NewSignalService(rdb, conf.Server.SignalChannel)

	opts := application.Options{
		Deps:            deps,
		Publisher:       signals,
		RelayStatistics: conf.Server.RelayStatistics,
	}
	if mc := database.NewMemcached(conf.Server.MemcachedAddr); mc != nil {
		opts.InitMarker = cache.NewInitMarker(mc, conf.ModuleAddress())
	}

	root := application.NewRoot(opts)
	defer root.Close()

	if rdb != nil {
		go func() {
			if err := signals.Subscribe(ctx, func(e domain.Event) { root.OnRemoteEvent(ctx, e) }); err != nil {
				log.Warn("signal subscription ended", "error", err)
			}
		}()
	}

	var journal rest.SubmissionLister
	if submissions != nil {
		journal = submissions
	}
	handler := rest.NewHandler(root, signer, journal, ledger)

	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware("logistics"))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	handler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(observability.Handler(registry)))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	if conf.Signer.Endpoint != "" {
		if state, err := signer.Account(ctx); err != nil {
			log.Warn("wallet bridge unavailable at startup", "error", err)
		} else if err := root.OnWalletChange(ctx, state); err != nil {
			log.Warn("contract initialization failed", "error", err)
		}
	}

	go func() {
		if err := e.Start(conf.Server.Listen); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

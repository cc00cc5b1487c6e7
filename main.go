package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/songquanpeng/model-compare/common"
	"github.com/songquanpeng/model-compare/common/config"
	"github.com/songquanpeng/model-compare/common/graceful"
	"github.com/songquanpeng/model-compare/common/logger"
	"github.com/songquanpeng/model-compare/controller"
	"github.com/songquanpeng/model-compare/middleware"
	"github.com/songquanpeng/model-compare/model"
	"github.com/songquanpeng/model-compare/monitor"
	"github.com/songquanpeng/model-compare/relay/adaptor/openai_compatible"
	"github.com/songquanpeng/model-compare/relay/comparison"
	"github.com/songquanpeng/model-compare/router"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	common.Init()
	logger.SetupLogger()
	logger.SetupHostLogger()

	logger.Logger.Info("Model Compare started", zap.String("version", common.Version))

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := model.OpenStore(ctx)
	if err != nil {
		logger.Logger.Fatal("failed to open workspace store", zap.Error(err))
	}

	httpClient, err := openai_compatible.NewHTTPClient(config.HTTPProxyURL)
	if err != nil {
		logger.Logger.Fatal("invalid HTTP_PROXY_URL", zap.Error(err))
	}
	client := openai_compatible.NewClient(httpClient, logger.Logger.Named("provider"))

	workspace := model.NewWorkspace(model.WorkspaceParams{
		Store:            store,
		Fetcher:          client,
		ModelsCacheTTL:   config.ModelsCacheTTL,
		FetchTimeout:     config.ModelsFetchTimeout,
		DefaultSlotCount: config.DefaultSlotCount,
		Logger:           logger.Logger.Named("workspace"),
	})
	defer func() {
		if err := workspace.Close(); err != nil {
			logger.Logger.Error("failed to close workspace store", zap.Error(err))
		}
	}()

	orchParams := comparison.Params{
		Client:     client,
		Logger:     logger.Logger.Named("compare"),
		RunTimeout: config.RunTimeout,
	}

	if config.EnablePrometheusMetrics {
		startTime := time.Unix(common.StartTime, 0)
		if err := monitor.InitPrometheusMonitoring(common.Version, startTime.Format(time.RFC3339), runtime.Version(), startTime); err != nil {
			logger.Logger.Fatal("failed to initialize Prometheus monitoring", zap.Error(err))
		}
		orchParams.Observer = monitor.RunObserver{}
		logger.Logger.Info("Prometheus monitoring initialized")
	}
	orchestrator := comparison.New(orchParams)

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	server.Use(middleware.RequestId())

	if monitor.Enabled() {
		server.Use(middleware.PrometheusMiddleware())
		server.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Logger.Info("Prometheus metrics endpoint available at /metrics")
	}

	// batches belong to the server, not to the request that started them
	router.SetRouter(server, controller.New(ctx, workspace, orchestrator))

	port := config.ServerPort
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info("server started", zap.String("address", "http://localhost:"+port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("shutdown signal received")
	shutdown(orchestrator, srv)
}

func shutdown(orchestrator *comparison.Orchestrator, srv *http.Server) {
	timeout := time.Duration(config.ShutdownTimeoutSec) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	graceful.SetDraining()
	orchestrator.Abort()
	if err := orchestrator.Wait(shutdownCtx); err != nil {
		logger.Logger.Warn("comparison batch did not settle", zap.Error(err))
	}
	if err := graceful.Drain(shutdownCtx); err != nil {
		logger.Logger.Warn("in-flight requests did not drain", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("failed to shut down HTTP server", zap.Error(err))
	}
	logger.Logger.Info("server stopped")
}

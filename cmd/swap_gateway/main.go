package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"swap_gateway/internal/app/service"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/internal/infrastructure/network/client"
	"swap_gateway/internal/infrastructure/restapi"
	"swap_gateway/internal/infrastructure/sorobanrpc"
	"swap_gateway/internal/infrastructure/walletbridge"
	"swap_gateway/internal/pkg/logger"
	"swap_gateway/internal/pkg/utils"
	"swap_gateway/pkg/metrics"
)

func main() {
	// Bootstrap logger for everything that can fail before zap is up.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	logger.InitSlog(cfg.Logging.Level)
	svcLogger := logger.NewSlogAdapter()

	// Bridge the slog default onto the zap core so library code using slog
	// lands in the same stream as the infrastructure clients.
	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	zapLogger.Info("Configuration loaded",
		zap.String("path", cfgPath),
		zap.String("horizon", cfg.Horizon.BaseURL),
		zap.String("soroban_rpc", cfg.SorobanRPC.BaseURL),
		zap.Bool("contract_deployed", cfg.ContractDeployed()))
	if !cfg.ContractDeployed() {
		zapLogger.Warn("Swap tracker contract id is the shipping placeholder, on-chain activity is disabled")
	}

	metrics.MustRegisterMetrics()

	// Infrastructure clients.
	walletClient := walletbridge.NewClient(
		cfg.WalletBridge.BaseURL,
		time.Duration(cfg.WalletBridge.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	ledgerClient := client.NewHorizonClient(cfg, zapLogger)
	rpcClient := sorobanrpc.NewClient(
		cfg.SorobanRPC.BaseURL,
		time.Duration(cfg.SorobanRPC.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	contractGateway := sorobanrpc.NewGateway(cfg, rpcClient, zapLogger)

	// Application services.
	sessionService := service.NewSessionService(walletClient, svcLogger, cfg)
	signingService := service.NewSigningService(walletClient, svcLogger, cfg)
	envelopeBuilder := service.NewEnvelopeBuilder(ledgerClient, contractGateway, svcLogger, cfg)
	submissionService := service.NewSubmissionService(ledgerClient, contractGateway, svcLogger, cfg)
	pricingService := service.NewPricingService(ledgerClient, svcLogger, cfg)
	activityService := service.NewActivityService(
		contractGateway, envelopeBuilder, signingService, submissionService, svcLogger, cfg)
	balanceService := service.NewBalanceService(ledgerClient, svcLogger, cfg)
	zapLogger.Info("Services initialized")

	// Background activity feed poller.
	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()
	go activityService.Run(pollCtx)

	// HTTP surface.
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	sessionHandler := restapi.NewSessionHandler(sessionService, balanceService)
	tradeHandler := restapi.NewTradeHandler(
		sessionService, envelopeBuilder, signingService, submissionService,
		pricingService, activityService, cfg, svcLogger)
	activityHandler := restapi.NewActivityHandler(activityService)
	restapi.SetupRouter(router, sessionHandler, tradeHandler, activityHandler)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	// Pprof endpoints (for debugging performance issues)
	// Make sure to protect these in a production environment
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
		pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
	}
	zapLogger.Info("Pprof endpoints enabled under /debug/pprof")

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")
	stopPolling()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}

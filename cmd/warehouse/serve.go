package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-warehouse/config"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/broker"
	"github.com/fekuna/omnipos-warehouse/internal/cache"
	"github.com/fekuna/omnipos-warehouse/internal/cart"
	"github.com/fekuna/omnipos-warehouse/internal/cart/listener"
	"github.com/fekuna/omnipos-warehouse/internal/cart/publisher"
	cartusecase "github.com/fekuna/omnipos-warehouse/internal/cart/usecase"
	cataloghandler "github.com/fekuna/omnipos-warehouse/internal/catalog/handler"
	catalogrepo "github.com/fekuna/omnipos-warehouse/internal/catalog/repository"
	catalogusecase "github.com/fekuna/omnipos-warehouse/internal/catalog/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/httpx"
	"github.com/fekuna/omnipos-warehouse/internal/i18n"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/server"
	sessionhandler "github.com/fekuna/omnipos-warehouse/internal/session/handler"
	sessionrepo "github.com/fekuna/omnipos-warehouse/internal/session/repository"
	sessionusecase "github.com/fekuna/omnipos-warehouse/internal/session/usecase"
	workspacehandler "github.com/fekuna/omnipos-warehouse/internal/workspace/handler"
	workspacerepo "github.com/fekuna/omnipos-warehouse/internal/workspace/repository"
	workspaceusecase "github.com/fekuna/omnipos-warehouse/internal/workspace/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	tokenIssuer     = "omnipos-warehouse"
	shutdownTimeout = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load Configuration
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. Initialize Logger
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize i18n
	translator, err := i18n.New(cfg.I18n.DefaultLanguage)
	if err != nil {
		return err
	}
	appLogger.Info("Loaded locales", zap.Strings("languages", translator.Languages()))

	// 4. Connect to Row Store
	store, closeStore, err := openStore(ctx, &cfg.Store, appLogger)
	if err != nil {
		appLogger.Error("Could not open row store", zap.Error(err))
		return err
	}
	defer closeStore()
	if err := rowstore.Init(ctx, store); err != nil {
		appLogger.Warn("Could not write collection headers", zap.Error(err))
	}

	// 5. Initialize Cache
	cacheStore, err := openCache(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Error("Could not connect to Redis", zap.Error(err))
		return err
	}
	defer cacheStore.Close()

	// 6. Initialize Kafka
	var stockPublisher cart.Publisher = publisher.Noop{}
	var consumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		producer := broker.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.StockEventsTopic)
		defer producer.Close()
		stockPublisher = publisher.NewKafkaPublisher(producer, appLogger)

		consumer = broker.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, cfg.Kafka.GroupID)
		defer consumer.Close()
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("orders_topic", cfg.Kafka.OrdersTopic),
			zap.String("stock_topic", cfg.Kafka.StockEventsTopic),
		)
	}

	// 7. Initialize Repositories and UseCases
	catalogRepo := catalogrepo.NewRowRepository(store)
	catalogUC := catalogusecase.NewCatalogUseCase(catalogRepo, appLogger)
	engine := cartusecase.NewCheckoutEngine(catalogRepo, stockPublisher, appLogger, cfg.Workspace.CheckoutConcurrency)

	workspaceUC := workspaceusecase.NewWorkspaceUseCase(
		workspacerepo.NewCacheRepository(cacheStore, cfg.Workspace.TTL, cache.LockOptions{
			TTL:       cfg.Workspace.LockTTL,
			Retries:   cfg.Workspace.LockRetries,
			RetryWait: cfg.Workspace.LockRetryWait,
		}),
		catalogUC,
		engine,
		appLogger,
	)
	sessionUC := sessionusecase.NewSessionUseCase(
		sessionrepo.NewCacheRepository(cacheStore),
		auth.NewStaticAuthenticator(cfg.Auth.Username, cfg.Auth.PasswordHash),
		auth.NewTokenIssuer(cfg.Auth.JWTSecretKey, tokenIssuer),
		cfg.Auth.SessionTTL,
		appLogger,
		workspaceUC,
	)

	// 8. Start Listener
	if consumer != nil {
		orderListener := listener.NewOrderListener(consumer, engine, appLogger)
		go orderListener.Start(ctx)
	}

	// 9. Initialize Handlers
	resp := httpx.NewResponder(translator, appLogger)
	probe := server.StoreProbe(store)
	router := server.NewRouter(
		&server.RouterConfig{AllowedOrigins: cfg.Server.AllowedOrigins, Debug: cfg.IsDevelopment()},
		sessionUC,
		resp,
		&server.Handlers{
			Session:   sessionhandler.NewSessionHandler(sessionUC, resp, appLogger),
			Catalog:   cataloghandler.NewCatalogHandler(catalogUC, resp, appLogger),
			Workspace: workspacehandler.NewWorkspaceHandler(workspaceUC, resp, appLogger),
		},
		probe,
		appLogger,
	)

	// 10. Start Servers
	grpcServer := server.NewGRPCServer(probe, appLogger)
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		return err
	}
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server stopped", zap.Error(err))
		}
	}()
	if err := grpcServer.Check(ctx); err != nil {
		appLogger.Warn("Row store did not answer; reporting NOT_SERVING", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
	return nil
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

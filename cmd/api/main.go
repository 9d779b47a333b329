package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"prepdeck-server/internal/client"
	"prepdeck-server/internal/config"
	"prepdeck-server/internal/repository"
	"prepdeck-server/internal/server"
	"prepdeck-server/internal/service"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(&cfg.Log)

	db := client.InitSqliteClient(cfg.DatabaseURL)
	gatewayClient := client.NewRazorpayClient(&cfg.Razorpay)

	priceRepo := repository.NewPriceRepository(db)
	entitlementRepo := repository.NewEntitlementRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	reconciliationRepo := repository.NewReconciliationRepository(db)

	pricingService := service.NewPricingService(priceRepo, logger)
	orderService := service.NewOrderService(gatewayClient)
	verifier := service.NewSignatureVerifier(cfg.Razorpay.KeySecret)
	entitlementService := service.NewEntitlementService(entitlementRepo, logger)
	checkoutService := service.NewCheckoutService(
		pricingService,
		orderService,
		verifier,
		entitlementService,
		reconciliationRepo,
		logger,
	)
	contentService := service.NewContentService(questionRepo, entitlementService)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg, orderService, verifier, checkoutService, contentService, entitlementService)

	logger.Info("starting HTTP server", "addr", serverAddr, "env", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
}

func newLogger(logCfg *config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logCfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if logCfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(h)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/config"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/database"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/formats"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/scheduler"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/version"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Fatalf("Failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.Log.Level, cfg.Log.Format)
	log := logger.L

	if cfg.TaxDoc.Ephemeral {
		log.Warn("TAXDOC_KEY is not set; uploaded documents will be unreadable after a restart")
	}
	if !cfg.Auth.APIKeySet {
		log.Warn("INTERNAL_API_KEY is not set; all mutating endpoints will answer 500")
	}

	// Open database connection
	db, err := database.Open(context.Background(), cfg.Database.Path, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.WithField("path", cfg.Database.Path).Info("Connected to database")

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	taxdocRepo := repository.NewTaxDocRepository(db, cfg.TaxDoc.Key)

	// Price oracle: stored prices first, Yahoo for days the database lacks
	yahooProvider := ohlc.NewYahooProvider(yahoo.NewFinanceClient())
	providers := []ohlc.Provider{ohlc.NewStoreProvider(priceRepo)}
	if cfg.Prices.LiveFetch {
		providers = append(providers, yahooProvider)
	}
	oracle := ohlc.NewCachedProvider(ohlc.NewChainProvider(providers...), cfg.Prices.CacheTTL)

	// Create services
	systemService := service.NewSystemService(db, cfg.Basis.Method, map[string]bool{
		"livePrices":       cfg.Prices.LiveFetch,
		"scheduledRefresh": cfg.Prices.RefreshSchedule != "",
		"apiKey":           cfg.Auth.APIKeySet,
	})
	userService := service.NewUserService(userRepo)
	transactionService := service.NewTransactionService(transactionRepo, userRepo)
	importService := service.NewImportService(formats.DefaultRegistry(), userRepo, taxdocRepo, log)
	basisService := service.NewBasisService(
		userRepo,
		transactionRepo,
		reportRepo,
		oracle,
		cfg.Basis.Method,
		cfg.Basis.Rounding,
		log,
	)
	priceService := service.NewPriceService(yahooProvider, priceRepo, log)

	// Background price refresh
	sched := scheduler.New(log)
	if cfg.Prices.RefreshSchedule != "" {
		if err := sched.AddPriceRefresh(cfg.Prices.RefreshSchedule, priceService, cfg.Prices.RefreshSymbols, cfg.Prices.RefreshTimeout); err != nil {
			log.Fatalf("Failed to schedule price refresh: %v", err)
		}
	}
	sched.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		User:        userService,
		Transaction: transactionService,
		Import:      importService,
		Basis:       basisService,
		Price:       priceService,
	}, cfg, log)

	// Create HTTP server. Basis runs and price refreshes can take a while, hence the
	// longer write timeout.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Server.Addr,
			"version": version.Version,
			"method":  cfg.Basis.Method,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(ctx); err != nil {
		log.WithError(err).Warn("Scheduled jobs did not finish in time")
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

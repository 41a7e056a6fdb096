package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"books-storefront/internal/client"
	"books-storefront/internal/config"
	"books-storefront/internal/logging"
	"books-storefront/internal/metrics"
	"books-storefront/internal/model"
	"books-storefront/internal/page"
	"books-storefront/internal/repository"
	"books-storefront/internal/service"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const redisKeyPrefix = "storefront:"

// app is the wired storefront: one profile, one controller.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	db     *gorm.DB
	rdb    *redis.Client

	marketplace  client.MarketplaceClient
	transactions repository.TransactionRepository
	sessions     service.SessionService
	catalog      service.CatalogService
	payments     service.PaymentCoordinator
	admin        service.AdminService
	download     service.DownloadService
	controller   *page.Controller
}

// newApp wires the storefront. openerFor decides where payment pages open:
// the desktop browser for the CLI, the page itself when serving.
func newApp(ctx context.Context, cfg *config.Config, openerFor func(*log.Logger) service.Opener) (*app, error) {
	logger := logging.New("storefront", cfg.Log)
	// stdout belongs to command output
	logger.SetOutput(os.Stderr)
	metrics.Register()

	price, err := model.NewAmount(cfg.Payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("payment amount: %w", err)
	}

	apiCfg := cfg.API
	if apiCfg.ConfigURL != "" {
		discoverCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		base, err := client.DiscoverBaseURL(discoverCtx, client.NewDiscoveryHTTPClient(), apiCfg.ConfigURL)
		cancel()
		if err != nil {
			logger.Warnf("endpoint discovery failed, using %s: %v", apiCfg.BaseURL, err)
		} else {
			logger.Infof("API base discovered: %s", base)
			apiCfg.BaseURL = base
		}
	}

	db, err := client.InitStoreClient(&cfg.Store)
	if err != nil {
		return nil, err
	}

	rdb, err := client.InitRedisClient(ctx, &cfg.Redis)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	marketplace := client.NewMarketplaceClient(&apiCfg)

	var storage repository.LocalStorage
	if rdb != nil {
		storage = repository.NewRedisStorage(rdb, redisKeyPrefix)
	} else {
		storage = repository.NewStorageRepository(db)
	}
	txnRepo := repository.NewTransactionRepository(db)
	cacheRepo := repository.NewResourceCacheRepository(db)

	if err := cacheRepo.Seed(ctx); err != nil {
		logger.Warnf("seed sample catalogue: %v", err)
	}

	sessions := service.NewSessionService(marketplace, storage, logger)
	catalog := service.NewCatalogService(marketplace, cacheRepo, &cfg.Catalog, price, cfg.Payment.Currency, logger)
	payments := service.NewPaymentCoordinator(marketplace, sessions, openerFor(logger), txnRepo, &cfg.Payment, price, logger)
	controller := page.NewController(sessions, catalog, payments, logger)

	if err := controller.Init(ctx); err != nil {
		logger.Warnf("restore session: %v", err)
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		rdb:          rdb,
		marketplace:  marketplace,
		transactions: txnRepo,
		sessions:     sessions,
		catalog:      catalog,
		payments:     payments,
		admin:        service.NewAdminService(marketplace, logger),
		download:     service.NewDownloadService(cfg.Payment.DownloadURL, txnRepo, logger),
		controller:   controller,
	}, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warnf("close redis: %v", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.logger.Warnf("close store: %v", err)
		}
	}
}

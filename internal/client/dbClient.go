package client

import (
	"fmt"
	"time"

	"books-storefront/internal/config"
	"books-storefront/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitStoreClient opens the local store and migrates the client tables.
func InitStoreClient(storeCfg *config.Store) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch storeCfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(storeCfg.DSN)
	case "mysql":
		dialector = mysql.Open(storeCfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", storeCfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store handle: %w", err)
	}

	if storeCfg.Driver == "mysql" {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// sqlite serializes writers anyway
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.StorageEntry{},
		&model.PaymentTransaction{},
		&model.CachedResource{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

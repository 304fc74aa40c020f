package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/model"
)

// retryDelay is the pause between connection attempts.
var retryDelay = 3 * time.Second

// NewMySQL returns a connected GORM DB instance, retrying while the server
// is still coming up.
func NewMySQL(dsn string, retries int) (*gorm.DB, error) {
	if retries < 1 {
		retries = 1
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		var db *gorm.DB
		db, err = gorm.Open(mysql.Open(dsn), cfg)
		if err == nil {
			if err = ping(db); err == nil {
				return db, nil
			}
		}
		log.Warn().Err(err).Int("attempt", attempt).Int("retries", retries).Msg("mysql not ready")
		if attempt < retries {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("connect mysql after %d attempts: %w", retries, err)
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// models lists tables in dependency order: parents before children.
func models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.CartLine{},
		&model.Transaction{},
		&model.Order{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table, children first. Missing tables are skipped.
func DropAll(db *gorm.DB) error {
	tables := models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

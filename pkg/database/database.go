package database

import (
	"fmt"

	"catalog-service/internal/model"
	"catalog-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the PostgreSQL connection, applies pool settings and runs migrations
func InitDB(cfg *config.DBConfig) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  cfg.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	conn, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := conn.AutoMigrate(model.Tables...); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	db = conn
	return db, nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// Close releases the underlying connection pool
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

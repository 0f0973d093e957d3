package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"user-profile-api/internal/models"
	"user-profile-api/pkg/config"
	"user-profile-api/pkg/logger"
	"user-profile-api/pkg/metrics"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and applies pool settings.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel(cfg.Log.Level)),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	metrics.ObserveDB("connect", "", start, err)
	if err != nil {
		logger.GlobalLogger.Errorf("failed to connect to %s: %v", cfg.Database.Driver, err)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Ping(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	logger.GlobalLogger.Printf("%s connected successfully.", cfg.Database.Driver)
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "DEBUG":
		return gormlogger.Info
	case "ERROR":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

// Migrate creates or updates the users and addresses tables.
func Migrate(db *gorm.DB) error {
	start := time.Now()
	err := db.AutoMigrate(&models.User{}, &models.Address{})
	metrics.ObserveDB("migrate", "users", start, err)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	start := time.Now()
	err = sqlDB.PingContext(ctx)
	metrics.ObserveDB("ping", "", start, err)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.GlobalLogger.Errorf("Error closing database: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.GlobalLogger.Errorf("Error closing database: %v", err)
		return
	}
	logger.GlobalLogger.Println("Database connection closed")
}

// TxOptions returns read-committed isolation where the dialect supports choosing it.
// SQLite transactions are serializable and reject explicit levels.
func TxOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

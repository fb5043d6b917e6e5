package database

import (
	"context"
	"fmt"
	"time"

	"bookstore/pkg/config"
	"bookstore/pkg/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxConnectAttempts = 10
	connectBackoff     = 5 * time.Second
)

func PostgresDSN(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
}

// InitPostgres connects to PostgreSQL, retrying while the server comes up,
// tunes the pool and migrates the bookstore tables.
func InitPostgres(ctx context.Context, cfg config.Postgres, logger *zap.Logger) (*gorm.DB, error) {
	logger.Info("Connecting to bookstore database",
		zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.String("database", cfg.Name))

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxConnectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(PostgresDSN(cfg)), gormConfig())
		if err == nil {
			break
		}
		logger.Warn("Database connection attempt failed",
			zap.Int("attempt", i+1), zap.Int("max_attempts", maxConnectAttempts), zap.Error(err))
		if i < maxConnectAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectBackoff):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("Database connection established successfully")
	return db, nil
}

// InitSQLite opens a SQLite database at path (":memory:" for a throwaway one)
// and migrates it. SQLite allows a single writer, so the pool is capped at one
// connection, which also keeps an in-memory database alive across calls.
func InitSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.Review{}); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

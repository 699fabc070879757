package database

import (
	"context"
	"fmt"
	"time"

	"event_ticketing/config"
	"event_ticketing/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the postgres database, retrying while the server comes up, and migrates the schema.
func Connect(ctx context.Context, cfg config.DatabaseConfig, batchSize int, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		CreateBatchSize: batchSize,
		Logger:          gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:         func() time.Time { return time.Now().UTC() },
		TranslateError:  true,
	}

	var (
		db      *gorm.DB
		lastErr error
	)
	for attempt := 0; attempt <= cfg.ConnectRetries; attempt++ {
		if attempt > 0 {
			log.Warn("database not ready, retrying",
				zap.Int("attempt", attempt), zap.Duration("in", cfg.RetryInterval), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryInterval):
			}
		}

		db, lastErr = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if lastErr != nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			continue
		}
		if lastErr = sqlDB.PingContext(ctx); lastErr != nil {
			sqlDB.Close()
			continue
		}

		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		log.Info("connection opened to database", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))

		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Info("database migrated")
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.ConnectRetries+1, lastErr)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Location{},
		&model.Event{},
		&model.Booking{},
		&model.Ticket{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roboterms/internal/config"
	"roboterms/internal/infra/logging"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	DB *gorm.DB
}

// NewStore connects to DATABASE_URL. A nil logger discards the connection log.
func NewStore(cfg config.Config, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	log.Info("connected to postgres", "max_open_conns", 10)
	return &Store{DB: gdb}, nil
}

// NewStoreWithConn wraps an existing connection pool, e.g. a *sql.DB.
func NewStoreWithConn(conn gorm.ConnPool, logLevel string) (*Store, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return &Store{DB: gdb}, nil
}

func gormConfig(logLevel string) *gorm.Config {
	level := logger.Warn
	switch logLevel {
	case "debug":
		level = logger.Info
	case "silent":
		level = logger.Silent
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	}
}

// Migrate creates or updates the companies and policies tables.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errDBUnavailable
	}
	if err := s.DB.WithContext(ctx).AutoMigrate(&CompanyModel{}, &PolicyModel{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errDBUnavailable
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

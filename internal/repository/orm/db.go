package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/logger"
)

// NewDB opens a gorm connection with driver errors translated, so unique
// violations surface as gorm.ErrDuplicatedKey.
func NewDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         zerologAdapter{slow: 200 * time.Millisecond},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewStores wires the gorm repositories over db.
func NewStores(db *gorm.DB) (*repository.Stores, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return &repository.Stores{
		Patients:     NewPatientRepository(db),
		Payments:     NewPaymentRepository(db),
		Appointments: NewAppointmentRepository(db),
		Pinger:       sqlDB,
		Close:        sqlDB.Close,
	}, nil
}

func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// zerologAdapter sends gorm's logging to zerolog.
type zerologAdapter struct {
	slow time.Duration
}

func (a zerologAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface { return a }

func (a zerologAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	logger.FromContext(ctx).Info().Msgf(msg, args...)
}

func (a zerologAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	logger.FromContext(ctx).Warn().Msgf(msg, args...)
}

func (a zerologAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	logger.FromContext(ctx).Error().Msgf(msg, args...)
}

func (a zerologAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.FromContext(ctx).Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("gorm query failed")
	case a.slow > 0 && elapsed > a.slow:
		sql, rows := fc()
		logger.FromContext(ctx).Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	}
}

package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Prabisha01/de/internal/boards"
	"github.com/Prabisha01/de/internal/config"
	"github.com/Prabisha01/de/internal/notes"
	"github.com/Prabisha01/de/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	errMissingPath = errors.New("database path is required")
	errMissingDSN  = errors.New("database dsn is required")
)

// Open connects to the configured database and brings the schema up to date.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DatabaseDriverPostgres:
		if cfg.DSN == "" {
			return nil, errMissingDSN
		}
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormConfig)
	case config.DatabaseDriverSQLite, "":
		db, err = openSQLite(cfg.Path, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, logger); err != nil {
		return nil, err
	}

	logger.Info("database initialized", zap.String("driver", driverName(cfg.Driver)))
	return db, nil
}

// Migrate creates the tables and applies the named data migrations.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(&users.User{}, &boards.Board{}, &notes.Note{}, &migrationRecord{}); err != nil {
		return err
	}
	return applyMigrations(db, logger)
}

func openSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, errMissingPath
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func driverName(driver string) string {
	if driver == "" {
		return config.DatabaseDriverSQLite
	}
	return driver
}

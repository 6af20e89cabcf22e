package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studentresults/internal/config"
	"studentresults/internal/model"
)

// Backend persists the whole store. Save always rewrites everything.
type Backend interface {
	Load() (Snapshot, error)
	Save(records []model.StudentRecord) error
	Location() string
}

// Snapshot is the result of a load. Records keep persisted order; Rejected
// lists entries that failed validation and were left out.
type Snapshot struct {
	Records  []model.StudentRecord
	Rejected []Rejection
}

type Rejection struct {
	ID  string
	Err error
}

// Open returns the backend selected by cfg.StoreDriver.
func Open(cfg config.Config) (Backend, error) {
	switch cfg.StoreDriver {
	case "", config.DriverJSON:
		return NewJSONFile(cfg.DataFile), nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := InitDB(cfg)
		if err != nil {
			return nil, err
		}
		location := cfg.SQLitePath
		if cfg.StoreDriver == config.DriverPostgres {
			location = "postgres://" + cfg.DBHost + ":" + cfg.DBPort + "/" + cfg.DBName
		}
		store, err := NewSQLStore(db, location)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// InitDB connects to the sqlite or postgres database named by cfg.
func InitDB(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("store driver %q is not a SQL driver", cfg.StoreDriver)
	}

	// gorm's default logger writes to stdout, which is the console UI.
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", cfg.StoreDriver, err)
	}
	return db, nil
}

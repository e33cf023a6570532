// Package sqlstore implements the repositories on gorm. It backs the
// single-binary SQLite deployment and the handler tests.
package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

// userRow is the persisted user: the public model plus its password hash.
type userRow struct {
	models.User
	PasswordHash string `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

// OpenSQLite opens dsn with the sqlite driver and migrates the schema.
func OpenSQLite(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRow{}, &models.Client{}, &models.ServiceReport{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// New wires the gorm repositories into a Store.
func New(db *gorm.DB) repository.Store {
	return repository.Store{
		Users:   &UserRepo{db: db},
		Clients: &ClientRepo{db: db},
		Reports: &ReportRepo{db: db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}
}

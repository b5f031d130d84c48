// Package sqlite contains the concrete implementation of the persistence
// layer using GORM over a local SQLite file. The store holds per-install
// state only: the device record and the unread snapshot.
package sqlite

import (
	"os"
	"path/filepath"

	"beacon/config"
	"beacon/internal/infra/persistence/model"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens (creating if necessary) the local database and migrates the
// schema.
func New(cfg *config.Config) (*gorm.DB, error) {
	path := cfg.Storage.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}

	// SQLite prefers a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&model.DeviceRecordModel{},
		&model.UnreadSnapshotModel{},
	); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}

	return db, nil
}

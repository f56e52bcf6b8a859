// Package sqlite persists records in a SQLite table through gorm, using the
// pure-Go glebarez driver (no CGO).
package sqlite

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/unkn0wn-root/vstore/adapter"
)

// Kind is the registry identity of the sqlite adapter.
const Kind = "sqlite"

var ErrDSNRequired = errors.New("sqlite adapter: dsn or db is required")

// entry is one stored record.
type entry struct {
	Key   string `gorm:"primaryKey;column:storage_key"`
	Value []byte `gorm:"column:value;not null"`
}

type Adapter struct {
	db      *gorm.DB
	table   string
	closeDB bool
}

var _ adapter.Adapter = (*Adapter)(nil)

type Config struct {
	// DSN is passed to the sqlite driver, e.g. "cache.db" or ":memory:".
	DSN string
	// DB reuses an existing connection instead of DSN. It is not closed by Close.
	DB *gorm.DB
	// Table name. "" => "vstore_entries".
	Table string
	// LogLevel for gorm's logger. 0 => logger.Silent.
	LogLevel logger.LogLevel
}

// Open connects and migrates the table.
func Open(cfg Config) (*Adapter, error) {
	a := &Adapter{db: cfg.DB, table: cfg.Table}
	if a.table == "" {
		a.table = "vstore_entries"
	}
	if a.db == nil {
		if cfg.DSN == "" {
			return nil, ErrDSNRequired
		}
		level := cfg.LogLevel
		if level == 0 {
			level = logger.Silent
		}
		db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
			Logger: logger.Default.LogMode(level),
		})
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closeDB = true
	}
	if err := a.tx().AutoMigrate(&entry{}); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

// Factory returns a factory for sqlite adapters owning prefix.
func Factory(prefix string, cfg Config) adapter.Factory {
	return adapter.Factory{
		Kind:   Kind,
		Prefix: prefix,
		Open:   func() (adapter.Adapter, error) { return Open(cfg) },
	}
}

func (a *Adapter) tx() *gorm.DB { return a.db.Table(a.table) }

func (a *Adapter) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var e entry
	err := a.tx().WithContext(ctx).Where("storage_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

// Write upserts the row.
func (a *Adapter) Write(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return a.tx().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entry{Key: key, Value: value}).Error
}

func (a *Adapter) Remove(ctx context.Context, key string) error {
	return a.tx().WithContext(ctx).Where("storage_key = ?", key).Delete(&entry{}).Error
}

func (a *Adapter) Keys(ctx context.Context) ([]string, error) {
	var out []string
	if err := a.tx().WithContext(ctx).Order("storage_key").Pluck("storage_key", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the connection when the adapter opened it.
func (a *Adapter) Close(_ context.Context) error {
	if !a.closeDB || a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package store

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// KVEntry maps to the kv_entries table.
type KVEntry struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// TableName overrides the table name to 'kv_entries'
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormKVStore implements KVStore on top of any gorm dialect.
type GormKVStore struct {
	db *gorm.DB
}

// NewGormKVStore wraps an open database. Call Migrate before first use.
func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{db: db}
}

// OpenSQLiteKVStore opens (or creates) a sqlite database at path and
// migrates the kv table.
func OpenSQLiteKVStore(path string) (*GormKVStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	s := NewGormKVStore(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate creates the kv table if needed.
func (s *GormKVStore) Migrate() error {
	if err := s.db.AutoMigrate(&KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate kv table: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *GormKVStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry KVEntry
	// Find rather than First: a missing key is a normal outcome here
	result := s.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&entry)
	if result.Error != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *GormKVStore) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{
		Key:   key,
		Value: value,
	}
	// Upsert
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entry)

	if result.Error != nil {
		return fmt.Errorf("failed to write key %s: %w", key, result.Error)
	}
	return nil
}

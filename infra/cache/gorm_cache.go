package cache

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/fxwidget/pkg/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvRecord is the row layout of the key-value table.
type kvRecord struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (kvRecord) TableName() string {
	return "kv_records"
}

// GormStore implements cache.Store on a relational table through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an open GORM connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the key-value table.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&kvRecord{})
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec kvRecord
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return []byte(rec.Value), nil
}

// Set upserts the value so the last writer wins.
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	rec := kvRecord{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&kvRecord{}).Error
}

var _ cache.Store = (*GormStore)(nil)

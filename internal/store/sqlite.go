package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// linkRecord is the gorm model of a link row.
type linkRecord struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Code        string     `gorm:"uniqueIndex;size:10;not null"`
	OriginalURL string     `gorm:"size:2000;not null"`
	CreatedAt   time.Time  `gorm:"index"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	Clicks      int64      `gorm:"not null;default:0"`
}

func (linkRecord) TableName() string {
	return "links"
}

// SQLiteStore is an embedded, file-backed implementation of shortener.Store.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&linkRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, link *shortener.Link) error {
	record := linkRecord{
		ID:          link.ID.String(),
		Code:        string(link.Code),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		Clicks:      link.Clicks,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", shortener.ErrCodeConflict, link.Code)
		}

		return err
	}

	return nil
}

func (s *SQLiteStore) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&linkRecord{}).Where("code = ?", string(code)).Count(&count).Error

	return count > 0, err
}

func (s *SQLiteStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	var record linkRecord

	if err := s.db.WithContext(ctx).Where("code = ?", string(code)).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return record.toLink()
}

func (s *SQLiteStore) GetRecent(ctx context.Context, count int) ([]*shortener.Link, error) {
	var records []linkRecord

	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(count).Find(&records).Error; err != nil {
		return nil, err
	}

	links := make([]*shortener.Link, 0, len(records))

	for _, record := range records {
		link, err := record.toLink()
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, code shortener.Code) error {
	result := s.db.WithContext(ctx).Where("code = ?", string(code)).Delete(&linkRecord{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Ping reports whether the database file is usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Shutdown closes the underlying database.
func (s *SQLiteStore) Shutdown() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (r linkRecord) toLink() (*shortener.Link, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse link id %q: %w", r.ID, err)
	}

	return &shortener.Link{
		ID:          id,
		OriginalURL: r.OriginalURL,
		Code:        shortener.Code(r.Code),
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		Clicks:      r.Clicks,
	}, nil
}

// isUniqueViolation covers drivers without a gorm error translator.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Compile-time check.
var _ shortener.Store = (*SQLiteStore)(nil)

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Eursukkul/eventosu/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository stores opaque text documents under a key.
type DocumentRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, body string) error
}

type gormDocumentRepository struct {
	db *gorm.DB
}

func NewGormDocumentRepository(db *gorm.DB) DocumentRepository {
	return &gormDocumentRepository{db: db}
}

func (r *gormDocumentRepository) Get(ctx context.Context, key string) (string, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, "doc_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrDocumentNotFound
		}
		return "", err
	}
	return doc.Body, nil
}

// Put replaces the whole document (upsert on key).
func (r *gormDocumentRepository) Put(ctx context.Context, key, body string) error {
	doc := models.Document{Key: key, Body: body, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gatherly/server/model"
	"github.com/gatherly/server/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// allowedPhotoTypes maps accepted MIME types to storage key extensions.
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoService attaches uploaded images to events: validate, hand the bytes
// to the object store, then record the returned URL.
type PhotoService struct {
	db       *gorm.DB
	store    storage.ObjectStore
	maxBytes int64
	logger   *zap.Logger
}

// NewPhotoService creates a PhotoService. maxBytes caps the accepted upload size.
func NewPhotoService(db *gorm.DB, store storage.ObjectStore, maxBytes int64, logger *zap.Logger) *PhotoService {
	return &PhotoService{db: db, store: store, maxBytes: maxBytes, logger: logger}
}

// Upload validates and stores one photo for an event. Validation failures
// short-circuit before any storage or database write, so a rejected upload
// leaves no partial state behind.
func (p *PhotoService) Upload(ctx context.Context, userID, eventID int64, contentType string, size int64, r io.Reader, caption string) (*model.EventPhoto, error) {
	var event model.Event
	if err := p.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return nil, ErrBadContentType
	}
	if size <= 0 || size > p.maxBytes {
		return nil, ErrFileTooLarge
	}

	key := fmt.Sprintf("events/%d/%d-%d%s", eventID, userID, time.Now().UnixMilli(), ext)
	url, err := p.store.Put(ctx, key, r, size, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrStorageDisabled
		}
		return nil, err
	}

	photo := model.EventPhoto{
		EventID:  eventID,
		UserID:   userID,
		ImageURL: url,
		Caption:  caption,
	}
	if err := p.db.Create(&photo).Error; err != nil {
		return nil, err
	}
	p.logger.Info("photo uploaded",
		zap.Int64("event_id", eventID),
		zap.Int64("user_id", userID),
		zap.String("key", key),
		zap.Int64("bytes", size))
	return &photo, nil
}

// Photos lists an event's photos, newest first, uploader embedded.
func (p *PhotoService) Photos(eventID int64) ([]model.EventPhoto, error) {
	var event model.Event
	if err := p.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	var photos []model.EventPhoto
	err := p.db.Where("event_id = ?", eventID).
		Preload("User").
		Order("uploaded_at DESC").
		Find(&photos).Error
	return photos, err
}

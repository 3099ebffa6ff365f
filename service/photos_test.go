package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/server/model"
	"github.com/gatherly/server/service"
	"github.com/gatherly/server/storage"
	"github.com/gatherly/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testMaxPhotoBytes = 10 << 20

func newPhotoService(t *testing.T) (*service.PhotoService, *storage.FakeStore, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := storage.NewFakeStore()
	logger, _ := zap.NewDevelopment()
	return service.NewPhotoService(db, store, testMaxPhotoBytes, logger), store, db
}

func photoCount(db *gorm.DB) int64 {
	var n int64
	db.Model(&model.EventPhoto{}).Count(&n)
	return n
}

func TestPhotoUpload_Success(t *testing.T) {
	svc, store, db := newPhotoService(t)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	data := bytes.Repeat([]byte{0xff}, 1024)
	photo, err := svc.Upload(context.Background(), host.ID, event.ID,
		"image/jpeg", int64(len(data)), bytes.NewReader(data), "first shot")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(photo.ImageURL, "https://cdn.test/events/"))
	assert.Contains(t, photo.ImageURL, ".jpg")
	assert.Equal(t, "first shot", photo.Caption)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, int64(1), photoCount(db))
}

func TestPhotoUpload_ExtensionFollowsContentType(t *testing.T) {
	svc, _, db := newPhotoService(t)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	for contentType, ext := range map[string]string{
		"image/png":  ".png",
		"image/webp": ".webp",
	} {
		data := []byte{1, 2, 3}
		photo, err := svc.Upload(context.Background(), host.ID, event.ID,
			contentType, int64(len(data)), bytes.NewReader(data), "")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(photo.ImageURL, ext), "content type %s", contentType)
	}
}

func TestPhotoUpload_RejectsOversize(t *testing.T) {
	svc, store, db := newPhotoService(t)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	// 15 MiB declared size; the body is never read.
	_, err := svc.Upload(context.Background(), host.ID, event.ID,
		"image/jpeg", 15<<20, bytes.NewReader(nil), "")
	assert.ErrorIs(t, err, service.ErrFileTooLarge)

	// Rejected upload leaves no partial state.
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(0), photoCount(db))
}

func TestPhotoUpload_RejectsBadContentType(t *testing.T) {
	svc, store, db := newPhotoService(t)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	data := []byte("just text")
	_, err := svc.Upload(context.Background(), host.ID, event.ID,
		"text/plain", int64(len(data)), bytes.NewReader(data), "")
	assert.ErrorIs(t, err, service.ErrBadContentType)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(0), photoCount(db))
}

func TestPhotoUpload_RejectsZeroSize(t *testing.T) {
	svc, _, db := newPhotoService(t)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	_, err := svc.Upload(context.Background(), host.ID, event.ID,
		"image/jpeg", 0, bytes.NewReader(nil), "")
	assert.ErrorIs(t, err, service.ErrFileTooLarge)
}

func TestPhotoUpload_UnknownEvent(t *testing.T) {
	svc, store, db := newPhotoService(t)
	host := mkUser(t, db, "host")

	data := []byte{1}
	_, err := svc.Upload(context.Background(), host.ID, 9999,
		"image/jpeg", 1, bytes.NewReader(data), "")
	assert.ErrorIs(t, err, service.ErrEventNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestPhotoUpload_StorageDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger, _ := zap.NewDevelopment()
	svc := service.NewPhotoService(db, storage.Disabled{}, testMaxPhotoBytes, logger)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	data := []byte{1}
	_, err := svc.Upload(context.Background(), host.ID, event.ID,
		"image/jpeg", 1, bytes.NewReader(data), "")
	assert.ErrorIs(t, err, service.ErrStorageDisabled)
	assert.Equal(t, int64(0), photoCount(db))
}

func TestPhotoUpload_StoreErrorLeavesNoRow(t *testing.T) {
	svc, store, db := newPhotoService(t)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	store.Err = assert.AnError
	data := []byte{1}
	_, err := svc.Upload(context.Background(), host.ID, event.ID,
		"image/jpeg", 1, bytes.NewReader(data), "")
	assert.Error(t, err)
	assert.Equal(t, int64(0), photoCount(db))
}

func TestPhotos_NewestFirstWithUploader(t *testing.T) {
	svc, _, db := newPhotoService(t)
	host := mkUser(t, db, "host")
	event := mkEvent(t, db, host.ID, model.PrivacyPublic)

	// Seed rows directly so ordering is deterministic.
	older := model.EventPhoto{EventID: event.ID, UserID: host.ID, ImageURL: "https://cdn.test/a.jpg"}
	require.NoError(t, db.Create(&older).Error)
	newer := model.EventPhoto{EventID: event.ID, UserID: host.ID, ImageURL: "https://cdn.test/b.jpg"}
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Model(&older).Update("uploaded_at", older.UploadedAt.Add(-time.Hour)).Error)

	photos, err := svc.Photos(event.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, newer.ID, photos[0].ID)
	require.NotNil(t, photos[0].User)
	assert.Equal(t, "host", photos[0].User.Username)
}

func TestPhotos_UnknownEvent(t *testing.T) {
	svc, _, _ := newPhotoService(t)
	_, err := svc.Photos(9999)
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}

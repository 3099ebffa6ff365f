package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gatherly/server/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry holds one activity record to be logged.
type Entry struct {
	TraceID    string
	UserID     *int64
	EventID    *int64
	Action     string
	Detail     interface{}
	Error      string
	IP         string
	DurationMs int
}

// Service logs activity entries asynchronously in batches.
type Service struct {
	db     *gorm.DB
	ch     chan *model.ActivityLog
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates an activity log Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.ActivityLog, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry for async DB write. Entries are dropped, with a
// warning, when the buffer is full; activity logging never blocks a request.
func (svc *Service) Log(entry Entry) {
	detailJSON, _ := json.Marshal(entry.Detail)
	record := &model.ActivityLog{
		TraceID:    entry.TraceID,
		UserID:     entry.UserID,
		EventID:    entry.EventID,
		Action:     entry.Action,
		Detail:     datatypes.JSON(detailJSON),
		Error:      entry.Error,
		IP:         entry.IP,
		DurationMs: entry.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("activity channel full, dropping entry",
			zap.String("action", entry.Action))
	}
}

// Purge deletes activity rows older than the retention window.
func (svc *Service) Purge(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	res := svc.db.Where("created_at < ?", cutoff).Delete(&model.ActivityLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		svc.logger.Info("activity log purged",
			zap.Int64("rows", res.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
	return nil
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	batch := make([]*model.ActivityLog, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("activity batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			// Drain remaining entries.
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

package service

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service implements the event visibility, RSVP, invitation, friendship and
// profile operations on top of a single injected *gorm.DB.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a Service.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records user actions (invites, RSVP changes, uploads).
type ActivityLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_activity_trace;size:36;not null" json:"trace_id"`
	UserID     *int64         `gorm:"index:idx_activity_user" json:"user_id"`
	EventID    *int64         `gorm:"index:idx_activity_event" json:"event_id"`
	Action     string         `gorm:"size:64;not null" json:"action"`
	Detail     datatypes.JSON `json:"detail"`
	Error      string         `gorm:"type:text" json:"error"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_activity_created;autoCreateTime:milli" json:"created_at"`
}

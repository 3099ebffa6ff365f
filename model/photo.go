package model

import "time"

// EventPhoto is an image attached to an event. Rows are immutable once
// created; there is no update path.
type EventPhoto struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID    int64     `gorm:"index;not null" json:"event_id"`
	UserID     int64     `gorm:"index;not null" json:"user_id"`
	ImageURL   string    `gorm:"size:512;not null" json:"image_url"`
	Caption    string    `gorm:"size:500" json:"caption"`
	UploadedAt time.Time `gorm:"index;autoCreateTime" json:"uploaded_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

package model

import "time"

// Privacy levels for events.
const (
	PrivacyPublic      = "PUBLIC"
	PrivacyFriendsOnly = "FRIENDS_ONLY"
	PrivacyPrivate     = "PRIVATE"
)

// ValidPrivacy reports whether v is a known privacy level.
func ValidPrivacy(v string) bool {
	return v == PrivacyPublic || v == PrivacyFriendsOnly || v == PrivacyPrivate
}

// Event is a planned gathering owned by its host.
type Event struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Description  string    `gorm:"size:2000" json:"description"`
	Location     string    `gorm:"size:255" json:"location"`
	Date         time.Time `gorm:"index;not null" json:"date"`
	HostID       int64     `gorm:"index;not null" json:"host_id"`
	PrivacyLevel string    `gorm:"size:16;default:PUBLIC;not null" json:"privacy_level"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Host *User `gorm:"foreignKey:HostID" json:"host,omitempty"`
}

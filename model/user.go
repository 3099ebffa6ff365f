package model

import "time"

// User represents a registered account. PasswordHash is empty for accounts
// created through the identity provider.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Name         string    `gorm:"size:64" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"size:64" json:"-"`
	Image        string    `gorm:"size:255" json:"image"`
	Bio          string    `gorm:"size:500" json:"bio"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

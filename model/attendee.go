package model

import "time"

// RSVP states for an attendee record.
const (
	RSVPPending = "PENDING"
	RSVPYes     = "YES"
	RSVPNo      = "NO"
	RSVPMaybe   = "MAYBE"
)

// ValidRSVP reports whether v is a known RSVP value.
// allowPending distinguishes the dedicated rsvp endpoint (accepts PENDING)
// from the attendees endpoint (does not).
func ValidRSVP(v string, allowPending bool) bool {
	switch v {
	case RSVPYes, RSVPNo, RSVPMaybe:
		return true
	case RSVPPending:
		return allowPending
	}
	return false
}

// Attendee links a user to an event with their RSVP state.
// The composite unique index guarantees at most one row per (user, event).
type Attendee struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_attendee_user_event;not null" json:"user_id"`
	EventID   int64     `gorm:"uniqueIndex:idx_attendee_user_event;index;not null" json:"event_id"`
	RSVP      string    `gorm:"size:16;default:PENDING;not null" json:"rsvp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

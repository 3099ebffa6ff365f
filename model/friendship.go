package model

import "time"

// FriendRequest is a pending, directed friendship offer. Accepting one
// resolves it into a Friendship row and deletes the request.
type FriendRequest struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   int64     `gorm:"uniqueIndex:idx_friend_request_pair;not null" json:"sender_id"`
	ReceiverID int64     `gorm:"uniqueIndex:idx_friend_request_pair;index;not null" json:"receiver_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// Friendship is a symmetric relation stored once, with the lower user ID
// always in UserLowID. The canonical ordering rules out duplicate or
// asymmetric rows for the same pair.
type Friendship struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserLowID  int64     `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"user_low_id"`
	UserHighID int64     `gorm:"uniqueIndex:idx_friendship_pair;index;not null" json:"user_high_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// FriendPair returns the canonical (low, high) ordering for two user IDs.
func FriendPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

package service

import (
	"errors"

	"github.com/gatherly/server/model"
	"gorm.io/gorm"
)

// Relationship tags returned by Relationship and Profile.
const (
	RelationSelf            = "self"
	RelationNone            = "none"
	RelationFriends         = "friends"
	RelationPendingOutgoing = "pending_outgoing"
	RelationPendingIncoming = "pending_incoming"
)

// AreFriends reports whether a friendship row exists for the pair.
func (s *Service) AreFriends(a, b int64) (bool, error) {
	low, high := model.FriendPair(a, b)
	var count int64
	err := s.db.Model(&model.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Count(&count).Error
	return count > 0, err
}

// SendFriendRequest creates a pending request from senderID to the named user.
func (s *Service) SendFriendRequest(senderID int64, username string) (*model.FriendRequest, error) {
	var target model.User
	if err := s.db.Where("username = ?", username).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if target.ID == senderID {
		return nil, ErrSelfFriend
	}

	friends, err := s.AreFriends(senderID, target.ID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	var existing int64
	if err := s.db.Model(&model.FriendRequest{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			senderID, target.ID, target.ID, senderID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrRequestExists
	}

	req := model.FriendRequest{SenderID: senderID, ReceiverID: target.ID}
	if err := s.db.Create(&req).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRequestExists
		}
		return nil, err
	}
	return &req, nil
}

// AcceptFriendRequest resolves a request addressed to receiverID into a
// friendship. Creating the friendship and deleting the request happen in one
// transaction; a half-accepted request would leave the pair both pending and
// friends.
func (s *Service) AcceptFriendRequest(receiverID, requestID int64) (*model.Friendship, error) {
	var req model.FriendRequest
	if err := s.db.Where("id = ? AND receiver_id = ?", requestID, receiverID).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	low, high := model.FriendPair(req.SenderID, req.ReceiverID)
	friendship := model.Friendship{UserLowID: low, UserHighID: high}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&friendship).Error; err != nil && !isUniqueViolation(err) {
			return err
		}
		return tx.Delete(&model.FriendRequest{}, req.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// DeclineFriendRequest deletes a request addressed to receiverID.
func (s *Service) DeclineFriendRequest(receiverID, requestID int64) error {
	res := s.db.Where("id = ? AND receiver_id = ?", requestID, receiverID).
		Delete(&model.FriendRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListFriendRequests returns the user's incoming and outgoing pending requests.
func (s *Service) ListFriendRequests(userID int64) (incoming, outgoing []model.FriendRequest, err error) {
	if err = s.db.Where("receiver_id = ?", userID).
		Preload("Sender").Find(&incoming).Error; err != nil {
		return nil, nil, err
	}
	if err = s.db.Where("sender_id = ?", userID).
		Preload("Receiver").Find(&outgoing).Error; err != nil {
		return nil, nil, err
	}
	return incoming, outgoing, nil
}

// ListFriends returns the user's friends as user records.
func (s *Service) ListFriends(userID int64) ([]model.User, error) {
	ids, err := s.FriendIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	err = s.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// RemoveFriend deletes the friendship between the caller and otherID.
func (s *Service) RemoveFriend(userID, otherID int64) error {
	low, high := model.FriendPair(userID, otherID)
	res := s.db.Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// Relationship computes the viewer→target relationship tag. Friendship is
// checked first, then an outgoing request, then an incoming one.
func (s *Service) Relationship(viewerID, targetID int64) (string, error) {
	if viewerID == targetID {
		return RelationSelf, nil
	}
	friends, err := s.AreFriends(viewerID, targetID)
	if err != nil {
		return "", err
	}
	if friends {
		return RelationFriends, nil
	}

	var count int64
	if err := s.db.Model(&model.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ?", viewerID, targetID).
		Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return RelationPendingOutgoing, nil
	}
	if err := s.db.Model(&model.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ?", targetID, viewerID).
		Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return RelationPendingIncoming, nil
	}
	return RelationNone, nil
}

// Profile returns the named user's public profile and, when viewerID is
// non-zero, the relationship tag between the viewer and that user.
func (s *Service) Profile(username string, viewerID int64) (*model.User, string, error) {
	var user model.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	if viewerID == 0 {
		return &user, "", nil
	}
	rel, err := s.Relationship(viewerID, user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, rel, nil
}

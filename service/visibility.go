package service

import (
	"errors"

	"github.com/gatherly/server/model"
	"gorm.io/gorm"
)

// FriendIDs returns the IDs of every friend of the given user. Friendships
// are stored once in canonical (low, high) order, so both columns are checked.
func (s *Service) FriendIDs(userID int64) ([]int64, error) {
	var rows []model.Friendship
	if err := s.db.Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, f := range rows {
		if f.UserLowID == userID {
			ids = append(ids, f.UserHighID)
		} else {
			ids = append(ids, f.UserLowID)
		}
	}
	return ids, nil
}

// VisibleEvents lists the events the viewer may see, ordered by date
// ascending and capped at limit. An event is visible when the viewer hosts
// it, attends it with YES/MAYBE, it is public, it is friends-only and hosted
// by a friend, or it is private and the viewer has any attendee row
// (an invitation counts). The friend set is resolved once per call, not per
// event.
func (s *Service) VisibleEvents(viewerID int64, limit int) ([]model.Event, error) {
	friendIDs, err := s.FriendIDs(viewerID)
	if err != nil {
		return nil, err
	}

	attending := s.db.Model(&model.Attendee{}).Select("event_id").
		Where("user_id = ? AND rsvp IN ?", viewerID, []string{model.RSVPYes, model.RSVPMaybe})
	invited := s.db.Model(&model.Attendee{}).Select("event_id").
		Where("user_id = ?", viewerID)

	cond := s.db.Where("host_id = ?", viewerID).
		Or("id IN (?)", attending).
		Or("privacy_level = ?", model.PrivacyPublic).
		Or("privacy_level = ? AND id IN (?)", model.PrivacyPrivate, invited)
	if len(friendIDs) > 0 {
		cond = cond.Or("privacy_level = ? AND host_id IN ?", model.PrivacyFriendsOnly, friendIDs)
	}

	var events []model.Event
	err = s.db.Where(cond).
		Order("date ASC").
		Limit(limit).
		Preload("Host").
		Find(&events).Error
	return events, err
}

// EventVisibleTo reports whether a single event is visible to the viewer,
// using the same predicate as VisibleEvents.
func (s *Service) EventVisibleTo(viewerID int64, event *model.Event) (bool, error) {
	if event.HostID == viewerID || event.PrivacyLevel == model.PrivacyPublic {
		return true, nil
	}

	var att model.Attendee
	err := s.db.Where("user_id = ? AND event_id = ?", viewerID, event.ID).First(&att).Error
	switch {
	case err == nil:
		if event.PrivacyLevel == model.PrivacyPrivate {
			return true, nil // any attendee row, PENDING included
		}
		if att.RSVP == model.RSVPYes || att.RSVP == model.RSVPMaybe {
			return true, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	if event.PrivacyLevel == model.PrivacyFriendsOnly {
		return s.AreFriends(viewerID, event.HostID)
	}
	return false, nil
}

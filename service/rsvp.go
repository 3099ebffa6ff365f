package service

import (
	"errors"

	"github.com/gatherly/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RSVPStatus describes the caller's standing on an event, shaped for
// invitation/RSVP UI state.
type RSVPStatus struct {
	IsAttending bool    `json:"isAttending"`
	RSVP        *string `json:"rsvp"`
	EventName   string  `json:"eventName"`
	IsHost      bool    `json:"isHost"`
}

func (s *Service) getEvent(eventID int64) (*model.Event, error) {
	var event model.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *Service) findAttendee(userID, eventID int64) (*model.Attendee, error) {
	var att model.Attendee
	err := s.db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Invite adds the named user to the event with a PENDING RSVP. Re-inviting
// is idempotent: an existing attendee row is returned untouched, so a
// non-PENDING RSVP is never downgraded.
func (s *Service) Invite(eventID int64, username string) (*model.Attendee, error) {
	if _, err := s.getEvent(eventID); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	att, err := s.findAttendee(user.ID, eventID)
	if err == nil {
		return att, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := model.Attendee{UserID: user.ID, EventID: eventID, RSVP: model.RSVPPending}
	if err := s.db.Create(&created).Error; err != nil {
		// Concurrent invite for the same pair: the unique index won the
		// race for us, re-read the surviving row.
		if isUniqueViolation(err) {
			return s.findAttendee(user.ID, eventID)
		}
		return nil, err
	}
	s.logger.Info("user invited",
		zap.Int64("event_id", eventID),
		zap.Int64("user_id", user.ID))
	return &created, nil
}

// SetRSVP creates or overwrites the caller's own attendee row with the given
// value. Concurrent writers are serialized by the composite unique index;
// last write wins.
func (s *Service) SetRSVP(userID, eventID int64, value string, allowPending bool) (*model.Attendee, error) {
	if !model.ValidRSVP(value, allowPending) {
		return nil, ErrInvalidRSVP
	}
	if _, err := s.getEvent(eventID); err != nil {
		return nil, err
	}

	att, err := s.findAttendee(userID, eventID)
	if err == nil {
		if err := s.db.Model(att).Update("rsvp", value).Error; err != nil {
			return nil, err
		}
		att.RSVP = value
		return att, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := model.Attendee{UserID: userID, EventID: eventID, RSVP: value}
	if err := s.db.Create(&created).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the insert race; apply the value to the existing row.
			if att, ferr := s.findAttendee(userID, eventID); ferr == nil {
				if uerr := s.db.Model(att).Update("rsvp", value).Error; uerr != nil {
					return nil, uerr
				}
				att.RSVP = value
				return att, nil
			}
		}
		return nil, err
	}
	return &created, nil
}

// GetRSVPStatus reports whether the caller is attending, their current RSVP
// value (nil when no row exists), and whether they host the event.
func (s *Service) GetRSVPStatus(userID, eventID int64) (*RSVPStatus, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}

	status := &RSVPStatus{
		EventName: event.Name,
		IsHost:    event.HostID == userID,
	}
	att, err := s.findAttendee(userID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status, nil
		}
		return nil, err
	}
	status.RSVP = &att.RSVP
	status.IsAttending = att.RSVP == model.RSVPYes || att.RSVP == model.RSVPMaybe
	return status, nil
}

// CancelRSVP removes the caller's attendee row. Missing event and missing
// row both surface as not-found.
func (s *Service) CancelRSVP(userID, eventID int64) error {
	if _, err := s.getEvent(eventID); err != nil {
		return err
	}
	res := s.db.Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&model.Attendee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAttendeeNotFound
	}
	return nil
}

// Attendees returns the event together with its attendee list, uploaded
// identity embedded.
func (s *Service) Attendees(eventID int64) (*model.Event, []model.Attendee, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, nil, err
	}
	var attendees []model.Attendee
	if err := s.db.Where("event_id = ?", eventID).
		Preload("User").
		Order("created_at ASC").
		Find(&attendees).Error; err != nil {
		return nil, nil, err
	}
	return event, attendees, nil
}

// Invitations lists the caller's unanswered invitations (PENDING rows) with
// the event embedded.
func (s *Service) Invitations(userID int64) ([]model.Attendee, error) {
	var rows []model.Attendee
	err := s.db.Where("user_id = ? AND rsvp = ?", userID, model.RSVPPending).
		Preload("Event").
		Preload("Event.Host").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

package service

import (
	"time"

	"github.com/gatherly/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventInput carries the host-editable fields of an event.
type EventInput struct {
	Name         string
	Description  string
	Location     string
	Date         time.Time
	PrivacyLevel string
}

// CreateEvent creates an event owned by hostID.
func (s *Service) CreateEvent(hostID int64, in EventInput) (*model.Event, error) {
	if in.PrivacyLevel == "" {
		in.PrivacyLevel = model.PrivacyPublic
	}
	if !model.ValidPrivacy(in.PrivacyLevel) {
		return nil, ErrInvalidPrivacy
	}
	event := model.Event{
		Name:         in.Name,
		Description:  in.Description,
		Location:     in.Location,
		Date:         in.Date,
		HostID:       hostID,
		PrivacyLevel: in.PrivacyLevel,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}
	s.logger.Info("event created",
		zap.Int64("event_id", event.ID),
		zap.Int64("host_id", hostID),
		zap.String("privacy", event.PrivacyLevel))
	return &event, nil
}

// GetEvent returns the event if it is visible to the viewer. Invisible
// events are indistinguishable from missing ones.
func (s *Service) GetEvent(viewerID, eventID int64) (*model.Event, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	visible, err := s.EventVisibleTo(viewerID, event)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrEventNotFound
	}
	if err := s.db.Preload("Host").First(event, eventID).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent applies the input to an event the caller hosts.
func (s *Service) UpdateEvent(hostID, eventID int64, in EventInput) (*model.Event, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrNotHost
	}
	if in.PrivacyLevel != "" && !model.ValidPrivacy(in.PrivacyLevel) {
		return nil, ErrInvalidPrivacy
	}

	updates := map[string]interface{}{}
	if in.Name != "" {
		updates["name"] = in.Name
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if in.Location != "" {
		updates["location"] = in.Location
	}
	if !in.Date.IsZero() {
		updates["date"] = in.Date
	}
	if in.PrivacyLevel != "" {
		updates["privacy_level"] = in.PrivacyLevel
	}
	if len(updates) > 0 {
		if err := s.db.Model(event).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.getEvent(eventID)
}

// DeleteEvent removes an event the caller hosts, together with its attendee
// and photo rows. Stored photo objects are not collected; there is no photo
// delete path in scope.
func (s *Service) DeleteEvent(hostID, eventID int64) error {
	event, err := s.getEvent(eventID)
	if err != nil {
		return err
	}
	if event.HostID != hostID {
		return ErrNotHost
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&model.Attendee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&model.EventPhoto{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Event{}, eventID).Error
	})
}

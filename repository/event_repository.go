package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// EventRepository handles database operations for Event entities
type EventRepository struct {
	DB *gorm.DB
}

// NewEventRepository creates a new instance of EventRepository
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

// Create creates a new event and its owner membership in one transaction
func (r *EventRepository) Create(event *models.Event, owner *models.User) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		ownerID := owner.ID
		membership := models.EventMember{
			EventID:     event.ID,
			Email:       owner.Email,
			DisplayName: owner.Name,
			UserID:      &ownerID,
			Role:        models.MemberRoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create event %q: %w", event.Name, err)
	}
	return nil
}

// GetByID retrieves an event by its ID
func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.DB.First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event by ID %d: %w", id, err)
	}
	return &event, nil
}

// ListByUser retrieves every event a user is a member of
func (r *EventRepository) ListByUser(userID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.DB.
		Joins("JOIN event_members ON event_members.event_id = events.id").
		Where("event_members.user_id = ?", userID).
		Order("events.id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for user %d: %w", userID, err)
	}
	return events, nil
}

package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// MediaRepository handles database operations for Media entities
type MediaRepository struct {
	DB *gorm.DB
}

// NewMediaRepository creates a new instance of MediaRepository
func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

// Create creates a new media record in the database
func (r *MediaRepository) Create(media *models.Media) error {
	err := r.DB.Create(media).Error
	if err != nil {
		return fmt.Errorf("failed to create media %s for event %d: %w", media.Path, media.EventID, err)
	}
	return nil
}

// GetByID retrieves a media row by its ID
func (r *MediaRepository) GetByID(id uint) (*models.Media, error) {
	var media models.Media
	err := r.DB.First(&media, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get media by ID %d: %w", id, err)
	}
	return &media, nil
}

// ListByEvent retrieves all media of an event
func (r *MediaRepository) ListByEvent(eventID uint) ([]models.Media, error) {
	var media []models.Media
	err := r.DB.Where("event_id = ?", eventID).Order("id ASC").Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list media for event %d: %w", eventID, err)
	}
	return media, nil
}

// CountByEvent returns the number of media rows of an event
func (r *MediaRepository) CountByEvent(eventID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Media{}).Where("event_id = ?", eventID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count media for event %d: %w", eventID, err)
	}
	return count, nil
}

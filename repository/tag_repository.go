package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harryless17/memoria-backend/models"
)

// TagRepository handles database operations for Tag entities
type TagRepository struct {
	DB *gorm.DB
}

// NewTagRepository creates a new instance of TagRepository
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *TagRepository) WithTx(tx *gorm.DB) *TagRepository {
	return &TagRepository{DB: tx}
}

// CreateForFaces creates one tag per face for the given user and returns the
// number actually inserted. Conflicts on (face_id, user_id) are skipped, so
// retrying an assignment never duplicates tags.
func (r *TagRepository) CreateForFaces(faces []models.Face, userID uint) (int64, error) {
	if len(faces) == 0 {
		return 0, nil
	}
	tags := make([]models.Tag, 0, len(faces))
	for _, face := range faces {
		tags = append(tags, models.Tag{
			MediaID: face.MediaID,
			FaceID:  face.ID,
			UserID:  userID,
		})
	}
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "face_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&tags)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create %d tags for user %d: %w", len(tags), userID, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByFace removes every tag referencing a face and returns how many were
// deleted. Used when a face is un-attributed by Split.
func (r *TagRepository) DeleteByFace(faceID uint) (int64, error) {
	result := r.DB.Where("face_id = ?", faceID).Delete(&models.Tag{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete tags for face %d: %w", faceID, result.Error)
	}
	return result.RowsAffected, nil
}

// CountByFace returns the number of tags referencing a face
func (r *TagRepository) CountByFace(faceID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Tag{}).Where("face_id = ?", faceID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tags for face %d: %w", faceID, err)
	}
	return count, nil
}

// CountForUserInEvent returns the number of media a user is tagged in within
// an event. Distinct media: two faces of the same user in one photo still
// count once for visibility.
func (r *TagRepository) CountForUserInEvent(eventID, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Tag{}).
		Joins("JOIN media ON media.id = tags.media_id").
		Where("media.event_id = ? AND tags.user_id = ?", eventID, userID).
		Distinct("tags.media_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tagged media for user %d in event %d: %w", userID, eventID, err)
	}
	return count, nil
}

// ListMediaForUser returns the media a user appears in within an event,
// the participant-facing read.
func (r *TagRepository) ListMediaForUser(eventID, userID uint) ([]models.Media, error) {
	var media []models.Media
	err := r.DB.
		Joins("JOIN tags ON tags.media_id = media.id").
		Where("media.event_id = ? AND tags.user_id = ?", eventID, userID).
		Distinct().
		Order("media.id ASC").
		Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tagged media for user %d in event %d: %w", userID, eventID, err)
	}
	return media, nil
}

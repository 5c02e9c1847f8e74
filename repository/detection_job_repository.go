package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// DetectionJobRepository handles database operations for DetectionJob entities
type DetectionJobRepository struct {
	DB *gorm.DB
}

// NewDetectionJobRepository creates a new instance of DetectionJobRepository
func NewDetectionJobRepository(db *gorm.DB) *DetectionJobRepository {
	return &DetectionJobRepository{DB: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *DetectionJobRepository) WithTx(tx *gorm.DB) *DetectionJobRepository {
	return &DetectionJobRepository{DB: tx}
}

// GetByEvent returns the detection job of an event. When no row exists yet the
// job is reported as not started, so callers never see a missing job.
func (r *DetectionJobRepository) GetByEvent(eventID uint) (*models.DetectionJob, error) {
	var job models.DetectionJob
	err := r.DB.Where("event_id = ?", eventID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.DetectionJob{EventID: eventID, Status: models.JobStatusNotStarted}, nil
		}
		return nil, fmt.Errorf("failed to get detection job for event %d: %w", eventID, err)
	}
	return &job, nil
}

// SetStatus upserts the detection job row for an event with the given status
// and optional error message.
func (r *DetectionJobRepository) SetStatus(eventID uint, status string, jobErr *string) error {
	var job models.DetectionJob
	err := r.DB.Where("event_id = ?", eventID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		job = models.DetectionJob{EventID: eventID, Status: status, Error: jobErr}
		if err := r.DB.Create(&job).Error; err != nil {
			return fmt.Errorf("failed to create detection job for event %d: %w", eventID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load detection job for event %d: %w", eventID, err)
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if jobErr != nil {
		updates["error"] = *jobErr
	} else {
		updates["error"] = gorm.Expr("NULL")
	}
	if err := r.DB.Model(&models.DetectionJob{}).Where("event_id = ?", eventID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update detection job for event %d: %w", eventID, err)
	}
	return nil
}

// AddCounts accumulates face and cluster counts on the job row
func (r *DetectionJobRepository) AddCounts(eventID uint, faces, clusters int) error {
	result := r.DB.Model(&models.DetectionJob{}).Where("event_id = ?", eventID).Updates(map[string]interface{}{
		"face_count":    gorm.Expr("face_count + ?", faces),
		"cluster_count": gorm.Expr("cluster_count + ?", clusters),
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update counts for event %d: %w", eventID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

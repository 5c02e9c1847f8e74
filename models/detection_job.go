package models

import "time"

// DetectionJob statuses, surfaced verbatim to the presentation layer so it can
// distinguish "no clusters yet" from "clustering errored".
const (
	JobStatusNotStarted = "not_started"
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// IsValidJobStatus checks if a string is a valid detection job status constant.
func IsValidJobStatus(status string) bool {
	switch status {
	case JobStatusNotStarted, JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// DetectionJob tracks the external face-detection/clustering run for an event.
// The engine only consumes its output; the job itself runs elsewhere.
type DetectionJob struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EventID      uint      `json:"event_id" gorm:"uniqueIndex;not null"`
	Status       string    `json:"status" gorm:"not null;default:not_started"`
	Error        *string   `json:"error,omitempty"`
	FaceCount    int       `json:"face_count" gorm:"not null;default:0"`
	ClusterCount int       `json:"cluster_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Event *Event `json:"-" gorm:"foreignKey:EventID"`
}

// TableName explicitly sets the table name for GORM.
func (DetectionJob) TableName() string {
	return "detection_jobs"
}

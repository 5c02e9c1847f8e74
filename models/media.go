package models

import "time"

// Media represents one uploaded photo of an event. Storage of the actual bytes
// and thumbnail generation happen elsewhere; this row is the reference point
// faces and tags hang off.
type Media struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	EventID          uint      `json:"event_id" gorm:"index;not null"`
	Path             string    `json:"path" gorm:"not null"`
	ThumbnailPath    *string   `json:"thumbnail_path,omitempty"`
	UploadedByUserID uint      `json:"uploaded_by_user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Faces []Face `json:"faces,omitempty" gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (Media) TableName() string {
	return "media"
}

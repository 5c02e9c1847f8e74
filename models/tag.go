package models

import "time"

// Tag grants a user visibility into one media item via one face. The unique
// index on (face_id, user_id) makes tag creation safe to retry: assigning the
// same cluster to the same participant twice must not duplicate tags.
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MediaID   uint      `json:"media_id" gorm:"index;not null"`
	FaceID    uint      `json:"face_id" gorm:"index:idx_face_user,unique;not null"`
	UserID    uint      `json:"user_id" gorm:"index:idx_face_user,unique;not null"`
	CreatedAt time.Time `json:"created_at"`

	Media *Media `json:"-" gorm:"foreignKey:MediaID"`
	Face  *Face  `json:"-" gorm:"foreignKey:FaceID"`
	User  *User  `json:"-" gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}

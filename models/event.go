package models

import "time"

// Event represents a single photo-sharing event (a wedding, a conference...).
// All clusters, media, members and invitations are scoped to one event.
type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description,omitempty"`
	OwnerUserID uint      `json:"owner_user_id" gorm:"index;not null"`
	OwnerUser   *User     `json:"-" gorm:"foreignKey:OwnerUserID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Event) TableName() string {
	return "events"
}

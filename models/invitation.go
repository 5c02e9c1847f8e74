package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation records a deferred cluster link for an email that had no claimed
// account at invite time. It is keyed by email and resolved later by the
// account-claim flow; nothing polls it.
type Invitation struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Token           string     `json:"token" gorm:"uniqueIndex;not null"`
	EventID         uint       `json:"event_id" gorm:"index;not null"`
	ClusterID       uint       `json:"cluster_id" gorm:"index;not null"`
	Email           string     `json:"email" gorm:"index;not null"`
	DisplayName     string     `json:"display_name" gorm:"not null"`
	InvitedByUserID uint       `json:"invited_by_user_id"`
	NotifiedAt      *time.Time `json:"notified_at,omitempty"` // set by the notification dispatcher, nil on delivery failure
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Event   *Event   `json:"-" gorm:"foreignKey:EventID"`
	Cluster *Cluster `json:"-" gorm:"foreignKey:ClusterID"`
}

// TableName explicitly sets the table name for GORM.
func (Invitation) TableName() string {
	return "invitations"
}

// BeforeCreate generates a unique token if not provided.
func (inv *Invitation) BeforeCreate(tx *gorm.DB) (err error) {
	if inv.Token == "" {
		inv.Token = uuid.New().String()
	}
	return
}

// IsClaimed reports whether the invited email has claimed an account.
func (inv *Invitation) IsClaimed() bool {
	return inv.ClaimedAt != nil
}

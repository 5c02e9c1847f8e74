package models

import "time"

// Event member roles. The permissions each role grants live in the
// permissions package.
const (
	MemberRoleOwner     = "owner"
	MemberRoleOrganizer = "organizer"
	MemberRoleGuest     = "guest"
)

// IsValidMemberRole checks if a string is a valid member role constant.
func IsValidMemberRole(role string) bool {
	switch role {
	case MemberRoleOwner, MemberRoleOrganizer, MemberRoleGuest:
		return true
	default:
		return false
	}
}

// EventMember is a participant known to an event, with or without a claimed
// account. Email is unique within the event; UserID, when present, is the
// account a cluster's LinkedUserID must agree with.
type EventMember struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	EventID     uint      `json:"event_id" gorm:"index:idx_event_email,unique;not null"`
	Email       string    `json:"email" gorm:"index:idx_event_email,unique;not null"`
	DisplayName string    `json:"display_name" gorm:"not null"`
	UserID      *uint     `json:"user_id,omitempty" gorm:"index"` // nullable until the account is claimed
	Role        string    `json:"role" gorm:"not null;default:guest"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Event *Event `json:"-" gorm:"foreignKey:EventID"`
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (EventMember) TableName() string {
	return "event_members"
}

// HasAccount reports whether the member resolved to a claimed account.
func (m *EventMember) HasAccount() bool {
	return m.UserID != nil
}

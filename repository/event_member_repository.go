package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// EventMemberRepository handles database operations for EventMember entities
type EventMemberRepository struct {
	DB *gorm.DB
}

// NewEventMemberRepository creates a new instance of EventMemberRepository
func NewEventMemberRepository(db *gorm.DB) *EventMemberRepository {
	return &EventMemberRepository{DB: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *EventMemberRepository) WithTx(tx *gorm.DB) *EventMemberRepository {
	return &EventMemberRepository{DB: tx}
}

// Create creates a new event member record in the database
func (r *EventMemberRepository) Create(member *models.EventMember) error {
	if member.Role == "" {
		member.Role = models.MemberRoleGuest
	}
	err := r.DB.Create(member).Error
	if err != nil {
		return fmt.Errorf("failed to create member %s for event %d: %w", member.Email, member.EventID, err)
	}
	return nil
}

// GetByID retrieves a member by its ID, preloading the linked account
func (r *EventMemberRepository) GetByID(id uint) (*models.EventMember, error) {
	var member models.EventMember
	err := r.DB.Preload("User").First(&member, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get member by ID %d: %w", id, err)
	}
	return &member, nil
}

// GetByEmail retrieves a member by event and email
func (r *EventMemberRepository) GetByEmail(eventID uint, email string) (*models.EventMember, error) {
	var member models.EventMember
	err := r.DB.Preload("User").Where("event_id = ? AND email = ?", eventID, email).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get member %s for event %d: %w", email, eventID, err)
	}
	return &member, nil
}

// GetByEventAndUser retrieves the membership of a user within an event
func (r *EventMemberRepository) GetByEventAndUser(eventID, userID uint) (*models.EventMember, error) {
	var member models.EventMember
	err := r.DB.Where("event_id = ? AND user_id = ?", eventID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get membership of user %d in event %d: %w", userID, eventID, err)
	}
	return &member, nil
}

// ListByEvent retrieves all members of an event ordered by display name
func (r *EventMemberRepository) ListByEvent(eventID uint) ([]models.EventMember, error) {
	var members []models.EventMember
	err := r.DB.Preload("User").Where("event_id = ?", eventID).Order("display_name ASC").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members for event %d: %w", eventID, err)
	}
	return members, nil
}

// FindOrCreate returns the member with the given email, creating a guest row
// if none exists. The boolean reports whether a row was created. Inviting the
// same email twice reuses the first row.
func (r *EventMemberRepository) FindOrCreate(eventID uint, email, displayName string) (*models.EventMember, bool, error) {
	member, err := r.GetByEmail(eventID, email)
	if err == nil {
		return member, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := &models.EventMember{
		EventID:     eventID,
		Email:       email,
		DisplayName: displayName,
		Role:        models.MemberRoleGuest,
	}
	if err := r.Create(created); err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// FindLinkedUserByEmail searches every event's membership rows for the email
// and returns the claimed account carried by any of them. An account created
// through a different event still counts.
func (r *EventMemberRepository) FindLinkedUserByEmail(email string) (*models.User, error) {
	var member models.EventMember
	err := r.DB.Preload("User").Where("email = ? AND user_id IS NOT NULL", email).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to search linked account for email %s: %w", email, err)
	}
	if member.User == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return member.User, nil
}

// LinkUser attaches a claimed account to a member row
func (r *EventMemberRepository) LinkUser(memberID, userID uint) error {
	result := r.DB.Model(&models.EventMember{}).Where("id = ?", memberID).Updates(map[string]interface{}{
		"user_id":    userID,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to link member %d to user %d: %w", memberID, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LinkUserByEmail attaches a claimed account to every membership row carrying
// the email, across events. Used by the account-claim flow.
func (r *EventMemberRepository) LinkUserByEmail(email string, userID uint) (int64, error) {
	result := r.DB.Model(&models.EventMember{}).
		Where("email = ? AND user_id IS NULL", email).
		Updates(map[string]interface{}{
			"user_id":    userID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to link memberships of %s to user %d: %w", email, userID, result.Error)
	}
	return result.RowsAffected, nil
}

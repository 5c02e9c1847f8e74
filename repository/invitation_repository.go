package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// InvitationRepository handles database operations for Invitation entities
type InvitationRepository struct {
	DB *gorm.DB
}

// NewInvitationRepository creates a new instance of InvitationRepository
func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{DB: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *InvitationRepository) WithTx(tx *gorm.DB) *InvitationRepository {
	return &InvitationRepository{DB: tx}
}

// Create creates a new invitation record in the database
func (r *InvitationRepository) Create(invitation *models.Invitation) error {
	err := r.DB.Create(invitation).Error
	if err != nil {
		return fmt.Errorf("failed to create invitation for %s (cluster %d): %w", invitation.Email, invitation.ClusterID, err)
	}
	return nil
}

// GetByToken retrieves an invitation by its token
func (r *InvitationRepository) GetByToken(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.DB.Where("token = ?", token).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}
	return &invitation, nil
}

// ListUnclaimedByEmail returns every pending invitation for an email, across
// events. This is the deferred-job lookup the account-claim flow resolves.
func (r *InvitationRepository) ListUnclaimedByEmail(email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := r.DB.Where("email = ? AND claimed_at IS NULL", email).Order("id ASC").Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unclaimed invitations for %s: %w", email, err)
	}
	return invitations, nil
}

// ListByEvent retrieves all invitations of an event
func (r *InvitationRepository) ListByEvent(eventID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := r.DB.Where("event_id = ?", eventID).Order("id ASC").Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for event %d: %w", eventID, err)
	}
	return invitations, nil
}

// MarkNotified records a successful notification delivery
func (r *InvitationRepository) MarkNotified(id uint) error {
	now := time.Now()
	result := r.DB.Model(&models.Invitation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"notified_at": now,
		"updated_at":  now,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark invitation %d notified: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkClaimed records that the invited email claimed an account
func (r *InvitationRepository) MarkClaimed(id uint) error {
	now := time.Now()
	result := r.DB.Model(&models.Invitation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"claimed_at": now,
		"updated_at": now,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark invitation %d claimed: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

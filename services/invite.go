package services

import (
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// InviteResult reports an InviteAndDefer call. When the invited email already
// has a claimed account somewhere, the assignment happens immediately and
// Assigned carries its outcome; otherwise the invitation is deferred and
// Invitation carries the pending record.
type InviteResult struct {
	MemberID      uint               `json:"member_id"`
	MemberCreated bool               `json:"member_created"`
	Assigned      *AssignResult      `json:"assigned,omitempty"`
	Invitation    *models.Invitation `json:"invitation,omitempty"`
}

// InviteAndDefer resolves a cluster to a participant who may not have an
// account yet. The email is validated before any state mutation. A membership
// row is created or reused. If the email already carries a claimed account —
// even one created through a different event — the cluster is assigned
// immediately, equivalent to calling Assign directly. Otherwise the cluster is
// marked invited, a deferred invitation keyed by the email is recorded, and
// the notification collaborator is handed the delivery; linking happens later,
// out of band, when the account is claimed.
func (s *ResolutionService) InviteAndDefer(eventID, clusterID uint, displayName, email string, invitedByUserID uint) (*InviteResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = normalized
	}

	cluster, err := s.loadClusterForEvent(eventID, clusterID)
	if err != nil {
		return nil, err
	}
	if cluster.IsMerged() {
		return nil, ErrClusterMerged
	}

	member, created, err := s.memberRepo.FindOrCreate(eventID, normalized, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure member for %s: %w", normalized, err)
	}
	result := &InviteResult{MemberID: member.ID, MemberCreated: created}

	// global account lookup: the users table first, then membership rows of
	// other events carrying the same email
	account, err := s.findAccountByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if account != nil {
		if !member.HasAccount() {
			if err := s.memberRepo.LinkUser(member.ID, account.ID); err != nil {
				return nil, err
			}
		}
		assigned, err := s.Assign(eventID, clusterID, []uint{member.ID})
		if err != nil {
			return nil, err
		}
		result.Assigned = assigned
		return result, nil
	}

	if cluster.Status != models.ClusterStatusInvited && !cluster.Status.CanTransitionTo(models.ClusterStatusInvited) {
		return nil, ErrInvalidTransition
	}

	invitation := &models.Invitation{
		EventID:         eventID,
		ClusterID:       clusterID,
		Email:           normalized,
		DisplayName:     displayName,
		InvitedByUserID: invitedByUserID,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.clusterRepo.WithTx(tx).MarkInvited(clusterID, normalized); err != nil {
			return err
		}
		return s.invitationRepo.WithTx(tx).Create(invitation)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record invitation for %s: %w", normalized, err)
	}
	result.Invitation = invitation

	// membership and cluster state are durable at this point; delivery failure
	// degrades to a warning inside the notifier
	if s.notifier != nil {
		s.notifier.NotifyInvitation(invitation)
	}
	return result, nil
}

// ClaimInvitations links every cluster waiting on the user's email. It is the
// engine-side half of the out-of-band linking flow, called when an account is
// registered. Returns the number of clusters linked.
func (s *ResolutionService) ClaimInvitations(user *models.User) (int, error) {
	normalized, err := normalizeEmail(user.Email)
	if err != nil {
		return 0, ErrInvalidEmail
	}

	if _, err := s.memberRepo.LinkUserByEmail(normalized, user.ID); err != nil {
		return 0, err
	}

	invitations, err := s.invitationRepo.ListUnclaimedByEmail(normalized)
	if err != nil {
		return 0, err
	}

	claimed := 0
	for _, invitation := range invitations {
		cluster, err := s.clusterRepo.GetByID(invitation.ClusterID)
		if err != nil {
			log.Printf("claim: skipping invitation %d, cluster %d unavailable: %v", invitation.ID, invitation.ClusterID, err)
			continue
		}
		if !cluster.Status.CanTransitionTo(models.ClusterStatusLinked) {
			// merged or already resolved by an organizer in the meantime
			if err := s.invitationRepo.MarkClaimed(invitation.ID); err != nil {
				log.Printf("claim: failed to retire invitation %d: %v", invitation.ID, err)
			}
			continue
		}

		// a user owns at most one live cluster per event; when an earlier
		// invitation in the same event already linked one, fold this cluster
		// into it instead of linking a second
		existing, err := s.clusterRepo.FindByLinkedUser(invitation.EventID, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("claim: failed to check linked cluster for %s in event %d: %v", normalized, invitation.EventID, err)
			continue
		}
		if existing != nil && existing.ID != cluster.ID {
			err = s.db.Transaction(func(tx *gorm.DB) error {
				if _, _, err := s.mergeClusters(tx, existing, cluster); err != nil {
					return err
				}
				return s.invitationRepo.WithTx(tx).MarkClaimed(invitation.ID)
			})
			if err != nil {
				log.Printf("claim: failed to fold cluster %d into %d for %s: %v", cluster.ID, existing.ID, normalized, err)
				continue
			}
			claimed++
			continue
		}

		faces, err := s.faceRepo.ListByCluster(cluster.ID)
		if err != nil {
			log.Printf("claim: failed to load faces of cluster %d: %v", cluster.ID, err)
			continue
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.clusterRepo.WithTx(tx).LinkToUser(cluster.ID, user); err != nil {
				return err
			}
			if _, err := s.tagRepo.WithTx(tx).CreateForFaces(faces, user.ID); err != nil {
				return err
			}
			return s.invitationRepo.WithTx(tx).MarkClaimed(invitation.ID)
		})
		if err != nil {
			log.Printf("claim: failed to link cluster %d for %s: %v", cluster.ID, normalized, err)
			continue
		}
		claimed++
	}
	return claimed, nil
}

// findAccountByEmail looks for a claimed account for the email, scoped
// globally rather than to one event.
func (s *ResolutionService) findAccountByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user, err = s.memberRepo.FindLinkedUserByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

// normalizeEmail lower-cases and validates an address. Display-name forms
// ("Ada <ada@example.com>") are rejected; the engine stores bare addresses.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(email))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

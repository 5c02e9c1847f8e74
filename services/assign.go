package services

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// MemberAssignment is the per-participant outcome of an Assign call.
type MemberAssignment struct {
	MemberID    uint   `json:"member_id"`
	UserID      uint   `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	TagsCreated int64  `json:"tags_created"`
	Linked      bool   `json:"linked,omitempty"`      // the source cluster was linked directly to this participant
	MergedInto  *uint  `json:"merged_into,omitempty"` // the source cluster was absorbed into this existing cluster
	Error       string `json:"error,omitempty"`
}

// AssignResult reports an Assign call. A batch with failures still carries the
// successful outcomes; losing finished tagging because one participant's state
// was stale would be worse than a partial result.
type AssignResult struct {
	ClusterID uint               `json:"cluster_id"`
	FaceCount int                `json:"face_count"`
	Members   []MemberAssignment `json:"members"`
	Failed    int                `json:"failed"`
}

// resolvedMember pairs a membership row with its claimed account.
type resolvedMember struct {
	member *models.EventMember
	user   *models.User
}

// Assign links a cluster to one or more participants. Every participant gets
// one tag per face of the source cluster (duplicate-safe). Exactly one
// participant — the last of the batch, fixed before any sub-operation starts —
// also receives the mutating step: the source cluster is merged into their
// existing cluster in the event if one exists, or linked to them directly
// otherwise. All other participants get copy semantics only, so an earlier
// merge can never consume the faces a later participant still needs.
func (s *ResolutionService) Assign(eventID, clusterID uint, memberIDs []uint) (*AssignResult, error) {
	if len(memberIDs) == 0 {
		return nil, ErrNoParticipants
	}
	memberIDs = dedupeIDs(memberIDs)

	source, err := s.loadClusterForEvent(eventID, clusterID)
	if err != nil {
		return nil, err
	}
	if source.IsMerged() {
		return nil, ErrClusterMerged
	}

	faces, err := s.faceRepo.ListByCluster(source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load faces of cluster %d: %w", source.ID, err)
	}

	result := &AssignResult{
		ClusterID: source.ID,
		FaceCount: len(faces),
		Members:   make([]MemberAssignment, len(memberIDs)),
	}

	// Resolve every member before any sub-operation runs. Validation precedes
	// side effects.
	resolved := make([]*resolvedMember, len(memberIDs))
	for i, memberID := range memberIDs {
		result.Members[i].MemberID = memberID
		rm, err := s.resolveMember(eventID, memberID)
		if err != nil {
			if len(memberIDs) == 1 {
				// single-target assign surfaces the invite-and-defer signal
				return nil, err
			}
			result.Members[i].Error = err.Error()
			continue
		}
		resolved[i] = rm
		result.Members[i].UserID = rm.user.ID
		result.Members[i].DisplayName = rm.member.DisplayName
	}

	// The mover index is fixed here, before anything starts. Everyone else is
	// copy-only, so two sub-operations can never both believe they own the
	// mutating step.
	moverIdx := len(memberIDs) - 1

	var wg sync.WaitGroup
	for i := range memberIDs {
		if i == moverIdx || resolved[i] == nil {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := s.tagRepo.CreateForFaces(faces, resolved[i].user.ID)
			if err != nil {
				result.Members[i].Error = err.Error()
				return
			}
			result.Members[i].TagsCreated = created
		}(i)
	}
	wg.Wait()

	if resolved[moverIdx] != nil {
		if err := s.assignMover(eventID, source, faces, resolved[moverIdx], &result.Members[moverIdx]); err != nil {
			result.Members[moverIdx].Error = err.Error()
		}
	}

	for i := range result.Members {
		if result.Members[i].Error != "" {
			result.Failed++
		}
	}
	return result, nil
}

// resolveMember loads a membership row and its claimed account.
func (s *ResolutionService) resolveMember(eventID, memberID uint) (*resolvedMember, error) {
	member, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member %d not found: %w", memberID, err)
		}
		return nil, err
	}
	if member.EventID != eventID {
		return nil, fmt.Errorf("member %d does not belong to event %d", memberID, eventID)
	}
	if !member.HasAccount() {
		return nil, ErrNoAccount
	}
	user, err := s.userRepo.GetByID(*member.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account of member %d: %w", memberID, err)
	}
	return &resolvedMember{member: member, user: user}, nil
}

// assignMover performs the mutating step of an assignment inside one
// transaction: tags for the mover, then merge-or-link of the source cluster.
func (s *ResolutionService) assignMover(eventID uint, source *models.Cluster, faces []models.Face, rm *resolvedMember, outcome *MemberAssignment) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.tagRepo.WithTx(tx).CreateForFaces(faces, rm.user.ID)
		if err != nil {
			return err
		}
		outcome.TagsCreated = created

		existing, err := s.clusterRepo.WithTx(tx).FindByLinkedUser(eventID, rm.user.ID)
		switch {
		case err == nil && existing.ID == source.ID:
			// already linked to this participant; tags above were duplicate-safe
			outcome.Linked = true
			return nil
		case err == nil:
			// one participant, one cluster: absorb the source into theirs
			if _, _, err := s.mergeClusters(tx, existing, source); err != nil {
				return err
			}
			outcome.MergedInto = &existing.ID
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !source.Status.CanTransitionTo(models.ClusterStatusLinked) {
				return ErrInvalidTransition
			}
			if err := s.clusterRepo.WithTx(tx).LinkToUser(source.ID, rm.user); err != nil {
				return err
			}
			outcome.Linked = true
			return nil
		default:
			return err
		}
	})
}

// dedupeIDs drops repeated ids while preserving order. Assigning the same
// member twice in one batch is a caller mistake, not two assignments.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			log.Printf("dropping duplicate member id %d from assignment batch", id)
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// MergeResult reports a Merge call.
type MergeResult struct {
	PrimaryID   uint  `json:"primary_id"`
	SecondaryID uint  `json:"secondary_id"`
	MovedFaces  int64 `json:"moved_faces"`
	TagsCreated int64 `json:"tags_created"`
	FaceCount   int   `json:"face_count"` // primary's face count after the merge
}

// Merge absorbs the secondary cluster into the primary: every face of the
// secondary is reassigned, the primary's aggregates are recomputed and the
// secondary becomes a tombstone. Tags keep pointing at the same face ids, so
// no tag rewriting happens; when the primary is linked, the absorbed faces
// additionally get tags for the linked participant. Calling Merge twice with
// the same pair is a no-op the second time, not an error.
func (s *ResolutionService) Merge(eventID, primaryID, secondaryID uint) (*MergeResult, error) {
	if primaryID == secondaryID {
		return nil, ErrSelfMerge
	}

	primary, err := s.loadClusterForEvent(eventID, primaryID)
	if err != nil {
		return nil, err
	}
	secondary, err := s.loadClusterForEvent(eventID, secondaryID)
	if err != nil {
		return nil, err
	}
	if primary.IsMerged() {
		// merging into a tombstone means the caller's view is stale
		return nil, ErrClusterMerged
	}

	result := &MergeResult{PrimaryID: primaryID, SecondaryID: secondaryID}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		moved, tagged, err := s.mergeClusters(tx, primary, secondary)
		if err != nil {
			return err
		}
		result.MovedFaces = moved
		result.TagsCreated = tagged
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge cluster %d into %d: %w", secondaryID, primaryID, err)
	}

	merged, err := s.clusterRepo.GetByID(primaryID)
	if err != nil {
		return nil, err
	}
	result.FaceCount = merged.FaceCount
	return result, nil
}

// mergeClusters does the merge work inside an open transaction. It is shared
// between Merge and the mutating step of Assign. A secondary with zero faces
// (already merged by an earlier call) moves nothing and succeeds.
func (s *ResolutionService) mergeClusters(tx *gorm.DB, primary, secondary *models.Cluster) (int64, int64, error) {
	faceRepo := s.faceRepo.WithTx(tx)
	clusterRepo := s.clusterRepo.WithTx(tx)

	// snapshot the moving faces first; if the primary is linked they need tags
	var moving []models.Face
	if primary.LinkedUserID != nil {
		var err error
		moving, err = faceRepo.ListByCluster(secondary.ID)
		if err != nil {
			return 0, 0, err
		}
	}

	moved, err := faceRepo.ReassignCluster(secondary.ID, primary.ID)
	if err != nil {
		return 0, 0, err
	}

	var tagged int64
	if primary.LinkedUserID != nil && len(moving) > 0 {
		tagged, err = s.tagRepo.WithTx(tx).CreateForFaces(moving, *primary.LinkedUserID)
		if err != nil {
			return 0, 0, err
		}
	}

	if !secondary.IsMerged() {
		if err := clusterRepo.MarkMerged(secondary.ID); err != nil {
			return 0, 0, err
		}
	}

	if err := clusterRepo.RecomputeStats(primary.ID); err != nil {
		return 0, 0, err
	}
	return moved, tagged, nil
}

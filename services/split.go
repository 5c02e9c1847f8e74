package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// SplitResult reports a Split call.
type SplitResult struct {
	FaceID       uint  `json:"face_id"`
	OldClusterID uint  `json:"old_cluster_id"`
	NewClusterID uint  `json:"new_cluster_id"`
	NewLabel     int   `json:"new_label"`
	TagsDeleted  int64 `json:"tags_deleted"`
}

// Split removes one face from its cluster into a brand-new singleton cluster
// with the next unused per-event label. The face's tags are deleted (it is
// being un-attributed) but the face and its media are never destroyed; the
// singleton is independently resolvable afterwards. Splitting the only face of
// a cluster is refused: there is nothing to remove it from. The face must
// belong to a cluster of the given event.
func (s *ResolutionService) Split(eventID, faceID uint) (*SplitResult, error) {
	face, err := s.faceRepo.GetByID(faceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load face %d: %w", faceID, err)
	}

	oldCluster, err := s.clusterRepo.GetByID(face.ClusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster %d of face %d: %w", face.ClusterID, faceID, err)
	}
	if oldCluster.EventID != eventID {
		return nil, ErrEventMismatch
	}

	count, err := s.faceRepo.CountByCluster(oldCluster.ID)
	if err != nil {
		return nil, err
	}
	if count <= 1 {
		return nil, ErrSingletonCluster
	}

	result := &SplitResult{FaceID: faceID, OldClusterID: oldCluster.ID}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		clusterRepo := s.clusterRepo.WithTx(tx)
		faceRepo := s.faceRepo.WithTx(tx)

		deleted, err := s.tagRepo.WithTx(tx).DeleteByFace(faceID)
		if err != nil {
			return err
		}
		result.TagsDeleted = deleted

		// max+1 inside the transaction; the unique (event_id, label) index
		// rejects the losing writer under concurrent splits
		label, err := clusterRepo.NextLabel(oldCluster.EventID)
		if err != nil {
			return err
		}

		faceRef := faceID
		singleton := models.Cluster{
			EventID:              oldCluster.EventID,
			Label:                label,
			Status:               models.ClusterStatusPending,
			RepresentativeFaceID: &faceRef,
			Metadata: map[string]interface{}{
				models.ClusterMetaOrigin:    models.ClusterOriginSplit,
				models.ClusterMetaSingleton: true,
			},
		}
		if err := clusterRepo.Create(&singleton); err != nil {
			return err
		}
		result.NewClusterID = singleton.ID
		result.NewLabel = label

		if err := faceRepo.UpdateCluster(faceID, singleton.ID); err != nil {
			return err
		}

		if err := clusterRepo.RecomputeStats(oldCluster.ID); err != nil {
			return err
		}
		return clusterRepo.RecomputeStats(singleton.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to split face %d: %w", faceID, err)
	}
	return result, nil
}

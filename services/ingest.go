package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// DetectionFace is one detected face reported by the external clustering job.
type DetectionFace struct {
	MediaID uint    `json:"media_id"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Quality float64 `json:"quality"`
}

// DetectionCluster is one visual cluster reported by the external job, with
// its faces already grouped.
type DetectionCluster struct {
	Confidence string          `json:"confidence,omitempty"`
	GroupPhoto bool            `json:"group_photo,omitempty"`
	Faces      []DetectionFace `json:"faces"`
}

// IngestResult reports an IngestDetection call.
type IngestResult struct {
	ClustersCreated int `json:"clusters_created"`
	FacesCreated    int `json:"faces_created"`
}

// IngestDetection consumes the output of the detection/clustering job: a set
// of clusters whose faces are already grouped. Each cluster gets the next
// sequential label and every face lands with its owning cluster id set, never
// clusterless. The whole batch is one transaction.
func (s *ResolutionService) IngestDetection(eventID uint, detected []DetectionCluster) (*IngestResult, error) {
	result := &IngestResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		clusterRepo := s.clusterRepo.WithTx(tx)
		faceRepo := s.faceRepo.WithTx(tx)

		for _, dc := range detected {
			if len(dc.Faces) == 0 {
				continue
			}
			label, err := clusterRepo.NextLabel(eventID)
			if err != nil {
				return err
			}
			metadata := map[string]interface{}{
				models.ClusterMetaOrigin:    models.ClusterOriginDetection,
				models.ClusterMetaSingleton: len(dc.Faces) == 1,
			}
			if dc.Confidence != "" {
				metadata[models.ClusterMetaConfidence] = dc.Confidence
			}
			if dc.GroupPhoto {
				metadata[models.ClusterMetaGroupPhoto] = true
			}
			cluster := models.Cluster{
				EventID:  eventID,
				Label:    label,
				Status:   models.ClusterStatusPending,
				Metadata: metadata,
			}
			if err := clusterRepo.Create(&cluster); err != nil {
				return err
			}

			faces := make([]models.Face, len(dc.Faces))
			for i, df := range dc.Faces {
				faces[i] = models.Face{
					MediaID:   df.MediaID,
					ClusterID: cluster.ID,
					X1:        df.X1,
					Y1:        df.Y1,
					X2:        df.X2,
					Y2:        df.Y2,
					Quality:   df.Quality,
				}
			}
			if err := faceRepo.CreateBatch(faces); err != nil {
				return err
			}
			if err := clusterRepo.RecomputeStats(cluster.ID); err != nil {
				return err
			}

			result.ClustersCreated++
			result.FacesCreated += len(faces)
		}

		jobRepo := s.jobRepo.WithTx(tx)
		if err := jobRepo.SetStatus(eventID, models.JobStatusCompleted, nil); err != nil {
			return err
		}
		return jobRepo.AddCounts(eventID, result.FacesCreated, result.ClustersCreated)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest detection results for event %d: %w", eventID, err)
	}
	return result, nil
}

// SetJobStatus records a detection job lifecycle change reported by the
// external job (pending, processing, failed...).
func (s *ResolutionService) SetJobStatus(eventID uint, status string, jobErr *string) error {
	if !models.IsValidJobStatus(status) {
		return fmt.Errorf("invalid detection job status %q", status)
	}
	return s.jobRepo.SetStatus(eventID, status, jobErr)
}

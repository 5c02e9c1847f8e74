package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/repository"
)

// Notifier delivers invitation emails. Delivery happens out of band; the
// engine never blocks on it and treats failures as warnings.
type Notifier interface {
	NotifyInvitation(invitation *models.Invitation)
}

// ResolutionService orchestrates the mutations of the faces → clusters →
// participants graph: assign, merge, split and invite-and-defer. It is the
// sole writer of Cluster.Status, Cluster.RepresentativeFaceID and
// Face.ClusterID.
type ResolutionService struct {
	db             *gorm.DB
	clusterRepo    repository.ClusterRepositoryInterface
	faceRepo       repository.FaceRepositoryInterface
	tagRepo        repository.TagRepositoryInterface
	memberRepo     repository.EventMemberRepositoryInterface
	userRepo       repository.UserRepository
	invitationRepo repository.InvitationRepositoryInterface
	jobRepo        repository.DetectionJobRepositoryInterface
	notifier       Notifier
}

// NewResolutionService creates a new resolution service
func NewResolutionService(
	db *gorm.DB,
	clusterRepo repository.ClusterRepositoryInterface,
	faceRepo repository.FaceRepositoryInterface,
	tagRepo repository.TagRepositoryInterface,
	memberRepo repository.EventMemberRepositoryInterface,
	userRepo repository.UserRepository,
	invitationRepo repository.InvitationRepositoryInterface,
	jobRepo repository.DetectionJobRepositoryInterface,
	notifier Notifier,
) *ResolutionService {
	return &ResolutionService{
		db:             db,
		clusterRepo:    clusterRepo,
		faceRepo:       faceRepo,
		tagRepo:        tagRepo,
		memberRepo:     memberRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		jobRepo:        jobRepo,
		notifier:       notifier,
	}
}

// ClusterList is the read model for an event's resolution state: every
// non-merged cluster plus the detection job status, surfaced verbatim so the
// caller can tell "no clusters yet" apart from "clustering errored".
type ClusterList struct {
	Clusters  []models.Cluster `json:"clusters"`
	JobStatus string           `json:"job_status"`
	JobError  *string          `json:"job_error,omitempty"`
}

// ListClusters returns the annotated cluster set of an event. Read-only.
func (s *ResolutionService) ListClusters(eventID uint) (*ClusterList, error) {
	clusters, err := s.clusterRepo.ListByEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	job, err := s.jobRepo.GetByEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load detection job: %w", err)
	}
	if clusters == nil {
		clusters = []models.Cluster{}
	}
	return &ClusterList{
		Clusters:  clusters,
		JobStatus: job.Status,
		JobError:  job.Error,
	}, nil
}

// ListClusterFaces returns the faces of a cluster in natural media order.
func (s *ResolutionService) ListClusterFaces(eventID, clusterID uint) ([]models.Face, error) {
	cluster, err := s.clusterRepo.GetByID(clusterID)
	if err != nil {
		return nil, err
	}
	if cluster.EventID != eventID {
		return nil, ErrEventMismatch
	}
	return s.faceRepo.ListByCluster(clusterID)
}

// loadClusterForEvent fetches a cluster and verifies it belongs to the event.
func (s *ResolutionService) loadClusterForEvent(eventID, clusterID uint) (*models.Cluster, error) {
	cluster, err := s.clusterRepo.GetByID(clusterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load cluster %d: %w", clusterID, err)
	}
	if cluster.EventID != eventID {
		return nil, ErrEventMismatch
	}
	return cluster, nil
}

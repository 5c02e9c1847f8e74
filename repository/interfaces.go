package repository

import (
	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// ClusterRepositoryInterface defines the methods for cluster data operations
type ClusterRepositoryInterface interface {
	Create(cluster *models.Cluster) error
	GetByID(id uint) (*models.Cluster, error)
	ListByEvent(eventID uint) ([]models.Cluster, error)
	NextLabel(eventID uint) (int, error)
	RecomputeStats(clusterID uint) error
	MarkMerged(clusterID uint) error
	LinkToUser(clusterID uint, user *models.User) error
	MarkInvited(clusterID uint, email string) error
	UpdateStatus(clusterID uint, status models.ClusterStatus) error
	FindByLinkedUser(eventID, userID uint) (*models.Cluster, error)
	WithTx(tx *gorm.DB) *ClusterRepository
}

// FaceRepositoryInterface defines the methods for face data operations
type FaceRepositoryInterface interface {
	Create(face *models.Face) error
	CreateBatch(faces []models.Face) error
	GetByID(id uint) (*models.Face, error)
	ListByCluster(clusterID uint) ([]models.Face, error)
	CountByCluster(clusterID uint) (int64, error)
	ReassignCluster(fromClusterID, toClusterID uint) (int64, error)
	UpdateCluster(faceID, clusterID uint) error
	WithTx(tx *gorm.DB) *FaceRepository
}

// TagRepositoryInterface defines the methods for tag data operations
type TagRepositoryInterface interface {
	CreateForFaces(faces []models.Face, userID uint) (int64, error)
	DeleteByFace(faceID uint) (int64, error)
	CountByFace(faceID uint) (int64, error)
	CountForUserInEvent(eventID, userID uint) (int64, error)
	ListMediaForUser(eventID, userID uint) ([]models.Media, error)
	WithTx(tx *gorm.DB) *TagRepository
}

// EventMemberRepositoryInterface defines the methods for membership data operations
type EventMemberRepositoryInterface interface {
	Create(member *models.EventMember) error
	GetByID(id uint) (*models.EventMember, error)
	GetByEmail(eventID uint, email string) (*models.EventMember, error)
	GetByEventAndUser(eventID, userID uint) (*models.EventMember, error)
	ListByEvent(eventID uint) ([]models.EventMember, error)
	FindOrCreate(eventID uint, email, displayName string) (*models.EventMember, bool, error)
	FindLinkedUserByEmail(email string) (*models.User, error)
	LinkUser(memberID, userID uint) error
	LinkUserByEmail(email string, userID uint) (int64, error)
	WithTx(tx *gorm.DB) *EventMemberRepository
}

// UserRepository defines the methods for user data operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// InvitationRepositoryInterface defines the methods for invitation data operations
type InvitationRepositoryInterface interface {
	Create(invitation *models.Invitation) error
	GetByToken(token string) (*models.Invitation, error)
	ListUnclaimedByEmail(email string) ([]models.Invitation, error)
	ListByEvent(eventID uint) ([]models.Invitation, error)
	MarkNotified(id uint) error
	MarkClaimed(id uint) error
	WithTx(tx *gorm.DB) *InvitationRepository
}

// EventRepositoryInterface defines the methods for event data operations
type EventRepositoryInterface interface {
	Create(event *models.Event, owner *models.User) error
	GetByID(id uint) (*models.Event, error)
	ListByUser(userID uint) ([]models.Event, error)
}

// MediaRepositoryInterface defines the methods for media data operations
type MediaRepositoryInterface interface {
	Create(media *models.Media) error
	GetByID(id uint) (*models.Media, error)
	ListByEvent(eventID uint) ([]models.Media, error)
	CountByEvent(eventID uint) (int64, error)
}

// DetectionJobRepositoryInterface defines the methods for detection job data operations
type DetectionJobRepositoryInterface interface {
	GetByEvent(eventID uint) (*models.DetectionJob, error)
	SetStatus(eventID uint, status string, jobErr *string) error
	AddCounts(eventID uint, faces, clusters int) error
	WithTx(tx *gorm.DB) *DetectionJobRepository
}

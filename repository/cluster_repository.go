package repository

import (
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// ClusterRepository handles database operations for Cluster entities
type ClusterRepository struct {
	DB *gorm.DB
}

// NewClusterRepository creates a new instance of ClusterRepository
func NewClusterRepository(db *gorm.DB) *ClusterRepository {
	return &ClusterRepository{DB: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ClusterRepository) WithTx(tx *gorm.DB) *ClusterRepository {
	return &ClusterRepository{DB: tx}
}

// Create creates a new cluster record in the database
func (r *ClusterRepository) Create(cluster *models.Cluster) error {
	if cluster.Status == "" {
		cluster.Status = models.ClusterStatusPending
	}
	err := r.DB.Create(cluster).Error
	if err != nil {
		return fmt.Errorf("failed to create cluster (event %d, label %d): %w", cluster.EventID, cluster.Label, err)
	}
	return nil
}

// GetByID retrieves a cluster by its ID, preloading the representative face
func (r *ClusterRepository) GetByID(id uint) (*models.Cluster, error) {
	var cluster models.Cluster
	err := r.DB.Preload("RepresentativeFace").Preload("RepresentativeFace.Media").First(&cluster, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get cluster by ID %d: %w", id, err)
	}
	return &cluster, nil
}

// ListByEvent retrieves all non-merged clusters for an event ordered by label
func (r *ClusterRepository) ListByEvent(eventID uint) ([]models.Cluster, error) {
	var clusters []models.Cluster
	err := r.DB.
		Preload("RepresentativeFace").
		Preload("RepresentativeFace.Media").
		Where("event_id = ? AND status <> ?", eventID, models.ClusterStatusMerged).
		Order("label ASC").
		Find(&clusters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters for event %d: %w", eventID, err)
	}
	return clusters, nil
}

// NextLabel returns the next unused per-event label (max existing label + 1).
// Call it inside the same transaction as the Create that consumes it; the
// unique index on (event_id, label) rejects the losing writer on a race.
func (r *ClusterRepository) NextLabel(eventID uint) (int, error) {
	var maxLabel int
	query, args, err := psql.
		Select("COALESCE(MAX(label), 0)").
		From("clusters").
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build label query for event %d: %w", eventID, err)
	}
	if err := r.DB.Raw(query, args...).Scan(&maxLabel).Error; err != nil {
		return 0, fmt.Errorf("failed to get max label for event %d: %w", eventID, err)
	}
	return maxLabel + 1, nil
}

// clusterStats holds the aggregates recomputed from the faces table.
type clusterStats struct {
	FaceCount  int
	AvgQuality float64
}

// RecomputeStats recalculates FaceCount and AvgQuality from the faces table
// and repairs the representative face if it no longer belongs to the cluster.
func (r *ClusterRepository) RecomputeStats(clusterID uint) error {
	var stats clusterStats
	query, args, err := psql.
		Select("COUNT(*) AS face_count", "COALESCE(AVG(quality), 0) AS avg_quality").
		From("faces").
		Where(sq.Eq{"cluster_id": clusterID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build stats query for cluster %d: %w", clusterID, err)
	}
	if err := r.DB.Raw(query, args...).Scan(&stats).Error; err != nil {
		return fmt.Errorf("failed to compute stats for cluster %d: %w", clusterID, err)
	}

	updates := map[string]interface{}{
		"face_count":  stats.FaceCount,
		"avg_quality": stats.AvgQuality,
		"updated_at":  time.Now(),
	}

	var cluster models.Cluster
	if err := r.DB.First(&cluster, clusterID).Error; err != nil {
		return fmt.Errorf("failed to load cluster %d for stats update: %w", clusterID, err)
	}

	repValid := false
	if cluster.RepresentativeFaceID != nil {
		var count int64
		if err := r.DB.Model(&models.Face{}).
			Where("id = ? AND cluster_id = ?", *cluster.RepresentativeFaceID, clusterID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check representative face for cluster %d: %w", clusterID, err)
		}
		repValid = count > 0
	}
	if !repValid {
		var best models.Face
		err := r.DB.Where("cluster_id = ?", clusterID).Order("quality DESC").First(&best).Error
		switch {
		case err == nil:
			updates["representative_face_id"] = best.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			updates["representative_face_id"] = gorm.Expr("NULL")
		default:
			return fmt.Errorf("failed to pick representative face for cluster %d: %w", clusterID, err)
		}
	}

	if err := r.DB.Model(&models.Cluster{}).Where("id = ?", clusterID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update stats for cluster %d: %w", clusterID, err)
	}
	return nil
}

// MarkMerged tombstones a cluster: terminal status, zeroed face-bearing fields.
// The row is kept for traceability, never deleted.
func (r *ClusterRepository) MarkMerged(clusterID uint) error {
	updates := map[string]interface{}{
		"status":                 models.ClusterStatusMerged,
		"face_count":             0,
		"avg_quality":            0,
		"representative_face_id": gorm.Expr("NULL"),
		"updated_at":             time.Now(),
	}
	result := r.DB.Model(&models.Cluster{}).Where("id = ?", clusterID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark cluster %d merged: %w", clusterID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LinkToUser links a cluster to a claimed account and refreshes the
// denormalized display fields in the same write. Any pending invite email is
// cleared: the cluster is resolved.
func (r *ClusterRepository) LinkToUser(clusterID uint, user *models.User) error {
	updates := map[string]interface{}{
		"status":         models.ClusterStatusLinked,
		"linked_user_id": user.ID,
		"linked_name":    user.Name,
		"invite_email":   gorm.Expr("NULL"),
		"updated_at":     time.Now(),
	}
	if user.AvatarURL != nil {
		updates["linked_avatar_url"] = *user.AvatarURL
	} else {
		updates["linked_avatar_url"] = gorm.Expr("NULL")
	}
	result := r.DB.Model(&models.Cluster{}).Where("id = ?", clusterID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to link cluster %d to user %d: %w", clusterID, user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkInvited records a pending invitation email on the cluster.
func (r *ClusterRepository) MarkInvited(clusterID uint, email string) error {
	updates := map[string]interface{}{
		"status":       models.ClusterStatusInvited,
		"invite_email": email,
		"updated_at":   time.Now(),
	}
	result := r.DB.Model(&models.Cluster{}).Where("id = ?", clusterID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark cluster %d invited: %w", clusterID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus sets the cluster status. Transition legality is the caller's
// responsibility; the repository only persists.
func (r *ClusterRepository) UpdateStatus(clusterID uint, status models.ClusterStatus) error {
	result := r.DB.Model(&models.Cluster{}).Where("id = ?", clusterID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update status of cluster %d: %w", clusterID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByLinkedUser returns the non-merged cluster linked to a user within an
// event, or gorm.ErrRecordNotFound if the user owns none.
func (r *ClusterRepository) FindByLinkedUser(eventID, userID uint) (*models.Cluster, error) {
	var cluster models.Cluster
	err := r.DB.
		Where("event_id = ? AND linked_user_id = ? AND status <> ?", eventID, userID, models.ClusterStatusMerged).
		First(&cluster).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find cluster linked to user %d in event %d: %w", userID, eventID, err)
	}
	return &cluster, nil
}

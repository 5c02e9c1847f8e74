package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

// FaceRepository handles database operations for Face entities
type FaceRepository struct {
	DB *gorm.DB
}

// NewFaceRepository creates a new instance of FaceRepository
func NewFaceRepository(db *gorm.DB) *FaceRepository {
	return &FaceRepository{DB: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *FaceRepository) WithTx(tx *gorm.DB) *FaceRepository {
	return &FaceRepository{DB: tx}
}

// Create creates a new face record in the database
func (r *FaceRepository) Create(face *models.Face) error {
	err := r.DB.Create(face).Error
	if err != nil {
		return fmt.Errorf("failed to create face for media %d: %w", face.MediaID, err)
	}
	return nil
}

// CreateBatch inserts a set of faces as one statement. Used by the detection
// ingest surface; either all rows land or none do.
func (r *FaceRepository) CreateBatch(faces []models.Face) error {
	if len(faces) == 0 {
		return nil
	}
	if err := r.DB.Create(&faces).Error; err != nil {
		return fmt.Errorf("failed to create %d faces: %w", len(faces), err)
	}
	return nil
}

// GetByID retrieves a face by its ID, preloading the associated Media
func (r *FaceRepository) GetByID(id uint) (*models.Face, error) {
	var face models.Face
	err := r.DB.Preload("Media").First(&face, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get face by ID %d: %w", id, err)
	}
	return &face, nil
}

// ListByCluster retrieves all faces of a cluster, ordered naturally by their
// media path so IMG_2 sorts before IMG_10.
func (r *FaceRepository) ListByCluster(clusterID uint) ([]models.Face, error) {
	var faces []models.Face
	err := r.DB.Preload("Media").Where("cluster_id = ?", clusterID).Find(&faces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list faces for cluster %d: %w", clusterID, err)
	}
	sort.SliceStable(faces, func(i, j int) bool {
		pi, pj := "", ""
		if faces[i].Media != nil {
			pi = faces[i].Media.Path
		}
		if faces[j].Media != nil {
			pj = faces[j].Media.Path
		}
		if pi == pj {
			return faces[i].ID < faces[j].ID
		}
		return natsort.Compare(pi, pj)
	})
	return faces, nil
}

// CountByCluster returns the number of faces currently owned by a cluster
func (r *FaceRepository) CountByCluster(clusterID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Face{}).Where("cluster_id = ?", clusterID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count faces for cluster %d: %w", clusterID, err)
	}
	return count, nil
}

// ReassignCluster moves every face of fromClusterID to toClusterID in one
// statement and returns the number of faces moved. Zero moved faces is not an
// error; a repeated merge finds nothing to do.
func (r *FaceRepository) ReassignCluster(fromClusterID, toClusterID uint) (int64, error) {
	result := r.DB.Model(&models.Face{}).
		Where("cluster_id = ?", fromClusterID).
		Updates(map[string]interface{}{
			"cluster_id": toClusterID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reassign faces from cluster %d to %d: %w", fromClusterID, toClusterID, result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateCluster re-homes a single face into another cluster
func (r *FaceRepository) UpdateCluster(faceID, clusterID uint) error {
	result := r.DB.Model(&models.Face{}).Where("id = ?", faceID).Updates(map[string]interface{}{
		"cluster_id": clusterID,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to move face %d to cluster %d: %w", faceID, clusterID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

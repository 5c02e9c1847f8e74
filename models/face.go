package models

import "time"

// Face represents a detected face in one media item, produced by the external
// detection job. A face belongs to exactly one cluster at all times; ClusterID
// is never null. Only Merge and Split rewrite it.
type Face struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MediaID   uint      `json:"media_id" gorm:"index;not null"`
	ClusterID uint      `json:"cluster_id" gorm:"index;not null"`
	X1        float64   `json:"x1" gorm:"not null"`
	Y1        float64   `json:"y1" gorm:"not null"`
	X2        float64   `json:"x2" gorm:"not null"`
	Y2        float64   `json:"y2" gorm:"not null"`
	Quality   float64   `json:"quality" gorm:"not null"` // detection quality score in [0,1]
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Media   *Media   `json:"media,omitempty" gorm:"foreignKey:MediaID"`
	Cluster *Cluster `json:"-" gorm:"foreignKey:ClusterID"`
}

// TableName explicitly sets the table name for GORM.
func (Face) TableName() string {
	return "faces"
}

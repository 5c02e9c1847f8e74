package models

import "time"

// ClusterStatus is the lifecycle status of a cluster.
type ClusterStatus string

const (
	// ClusterStatusPending means the cluster was produced by the detection job
	// and nobody has resolved it yet.
	ClusterStatusPending ClusterStatus = "pending"
	// ClusterStatusLinked means the cluster is resolved to a claimed account.
	ClusterStatusLinked ClusterStatus = "linked"
	// ClusterStatusInvited means an invitation is pending for an email with no
	// claimed account yet; linking happens out of band once the account exists.
	ClusterStatusInvited ClusterStatus = "invited"
	// ClusterStatusIgnored means an organizer decided the cluster is noise
	// (a stranger, a statue) and it should not be resolved.
	ClusterStatusIgnored ClusterStatus = "ignored"
	// ClusterStatusMerged is terminal: the cluster's faces were absorbed into
	// another cluster and this row is kept only as a tombstone.
	ClusterStatusMerged ClusterStatus = "merged"
)

// clusterTransitions is the closed transition table for ClusterStatus.
// invited -> linked is triggered by the account-claim flow, not by organizers.
var clusterTransitions = map[ClusterStatus][]ClusterStatus{
	ClusterStatusPending: {ClusterStatusLinked, ClusterStatusInvited, ClusterStatusIgnored, ClusterStatusMerged},
	ClusterStatusLinked:  {ClusterStatusMerged},
	ClusterStatusInvited: {ClusterStatusLinked, ClusterStatusMerged},
	ClusterStatusIgnored: {ClusterStatusMerged},
	ClusterStatusMerged:  {},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ClusterStatus) CanTransitionTo(next ClusterStatus) bool {
	for _, allowed := range clusterTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValidClusterStatus checks if a string is a valid cluster status constant.
func IsValidClusterStatus(status string) bool {
	switch ClusterStatus(status) {
	case ClusterStatusPending, ClusterStatusLinked, ClusterStatusInvited, ClusterStatusIgnored, ClusterStatusMerged:
		return true
	default:
		return false
	}
}

// Metadata keys used in Cluster.Metadata.
const (
	ClusterMetaOrigin     = "origin"     // "detection" or "split"
	ClusterMetaConfidence = "confidence" // AI confidence tier reported by the job
	ClusterMetaGroupPhoto = "group"      // true when most faces come from group shots
	ClusterMetaSingleton  = "singleton"  // true when the job produced a single-face cluster
)

const (
	ClusterOriginDetection = "detection"
	ClusterOriginSplit     = "split"
)

// Cluster represents a group of faces believed to depict the same individual.
// FaceCount, AvgQuality and the linked display fields are write-through caches:
// they are recomputed inside the same transaction as any mutation and never
// edited independently.
type Cluster struct {
	ID      uint `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID uint `json:"event_id" gorm:"index:idx_event_label,unique;not null"`
	// Label is the sequential per-event display number. The unique index on
	// (event_id, label) rejects duplicate allocations under concurrent Splits.
	Label  int           `json:"label" gorm:"index:idx_event_label,unique;not null"`
	Status ClusterStatus `json:"status" gorm:"not null;default:pending"`

	LinkedUserID    *uint   `json:"linked_user_id,omitempty" gorm:"index"`
	LinkedName      *string `json:"linked_name,omitempty"`       // denormalized from User for display
	LinkedAvatarURL *string `json:"linked_avatar_url,omitempty"` // denormalized from User for display
	InviteEmail     *string `json:"invite_email,omitempty"`

	RepresentativeFaceID *uint `json:"representative_face_id,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty" gorm:"serializer:json"`

	FaceCount  int     `json:"face_count" gorm:"not null;default:0"`
	AvgQuality float64 `json:"avg_quality" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LinkedUser         *User `json:"-" gorm:"foreignKey:LinkedUserID"`
	RepresentativeFace *Face `json:"representative_face,omitempty" gorm:"foreignKey:RepresentativeFaceID"`
}

// TableName explicitly sets the table name for GORM.
func (Cluster) TableName() string {
	return "clusters"
}

// IsMerged reports whether the cluster is a tombstone.
func (c *Cluster) IsMerged() bool {
	return c.Status == ClusterStatusMerged
}

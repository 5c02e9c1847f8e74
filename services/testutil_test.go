package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harryless17/memoria-backend/database"
	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/repository"
)

// recordingNotifier captures invitations instead of delivering them.
type recordingNotifier struct {
	invitations []*models.Invitation
}

func (n *recordingNotifier) NotifyInvitation(inv *models.Invitation) {
	n.invitations = append(n.invitations, inv)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying sql.DB: %v", err)
	}
	// a single connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*ResolutionService, *gorm.DB, *recordingNotifier) {
	t.Helper()
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewResolutionService(
		db,
		repository.NewClusterRepository(db),
		repository.NewFaceRepository(db),
		repository.NewTagRepository(db),
		repository.NewEventMemberRepository(db),
		repository.NewGormUserRepository(db),
		repository.NewInvitationRepository(db),
		repository.NewDetectionJobRepository(db),
		notifier,
	)
	return svc, db, notifier
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: name, PasswordHash: "x"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return u
}

func seedEvent(t *testing.T, db *gorm.DB, ownerID uint) *models.Event {
	t.Helper()
	e := &models.Event{Name: "Mariage A&H", OwnerUserID: ownerID}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return e
}

func seedMember(t *testing.T, db *gorm.DB, eventID uint, email, name string, userID *uint, role string) *models.EventMember {
	t.Helper()
	m := &models.EventMember{EventID: eventID, Email: email, DisplayName: name, UserID: userID, Role: role}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed member %s: %v", email, err)
	}
	return m
}

func seedCluster(t *testing.T, db *gorm.DB, eventID uint, label int, status models.ClusterStatus) *models.Cluster {
	t.Helper()
	c := &models.Cluster{EventID: eventID, Label: label, Status: status}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to seed cluster label %d: %v", label, err)
	}
	return c
}

// seedFaces creates n faces in the cluster, one media row each, with
// descending quality so the first face is the best representative.
func seedFaces(t *testing.T, db *gorm.DB, eventID, clusterID uint, n int) []models.Face {
	t.Helper()
	faces := make([]models.Face, 0, n)
	for i := 0; i < n; i++ {
		media := &models.Media{EventID: eventID, Path: fmt.Sprintf("photos/c%d_%03d.jpg", clusterID, i)}
		if err := db.Create(media).Error; err != nil {
			t.Fatalf("failed to seed media: %v", err)
		}
		face := models.Face{
			MediaID:   media.ID,
			ClusterID: clusterID,
			X1:        10, Y1: 10, X2: 90, Y2: 90,
			Quality: 0.9 - float64(i)*0.05,
		}
		if err := db.Create(&face).Error; err != nil {
			t.Fatalf("failed to seed face: %v", err)
		}
		faces = append(faces, face)
	}
	if err := db.Model(&models.Cluster{}).Where("id = ?", clusterID).
		Updates(map[string]interface{}{"face_count": n, "representative_face_id": faces[0].ID}).Error; err != nil {
		t.Fatalf("failed to update cluster stats: %v", err)
	}
	return faces
}

func countFacesIn(t *testing.T, db *gorm.DB, clusterID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Face{}).Where("cluster_id = ?", clusterID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count faces: %v", err)
	}
	return n
}

func countTagsFor(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Tag{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count tags: %v", err)
	}
	return n
}

func reloadCluster(t *testing.T, db *gorm.DB, id uint) *models.Cluster {
	t.Helper()
	var c models.Cluster
	if err := db.First(&c, id).Error; err != nil {
		t.Fatalf("failed to reload cluster %d: %v", id, err)
	}
	return &c
}

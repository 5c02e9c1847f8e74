package workers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harryless17/memoria-backend/database"
	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/repository"
)

func newTestInvitationRepo(t *testing.T) (*repository.InvitationRepository, *gorm.DB) {
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
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return repository.NewInvitationRepository(db), db
}

func TestDispatcherDisabledWithoutURLs(t *testing.T) {
	repo, db := newTestInvitationRepo(t)
	nd, err := NewNotificationDispatcher(nil, "http://localhost:3000", repo, 4, 1)
	if err != nil {
		t.Fatalf("NewNotificationDispatcher failed: %v", err)
	}

	inv := &models.Invitation{EventID: 1, ClusterID: 1, Email: "x@example.com", DisplayName: "X"}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to seed invitation: %v", err)
	}

	nd.NotifyInvitation(inv)
	nd.Stop()

	// disabled delivery never marks the invitation notified
	var got models.Invitation
	if err := db.First(&got, inv.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.NotifiedAt != nil {
		t.Error("disabled dispatcher marked the invitation notified")
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	repo, _ := newTestInvitationRepo(t)
	nd := &NotificationDispatcher{
		JobQueue:       make(chan InviteJob, 1),
		InvitationRepo: repo,
		StopChan:       make(chan struct{}),
	}
	// no workers draining: the second job must be dropped, not block
	nd.NotifyInvitation(&models.Invitation{ID: 1, Email: "a@example.com"})
	nd.NotifyInvitation(&models.Invitation{ID: 2, Email: "b@example.com"})
	if len(nd.JobQueue) != 1 {
		t.Errorf("queue holds %d jobs, want 1", len(nd.JobQueue))
	}
}

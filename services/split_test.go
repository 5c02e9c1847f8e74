package services

import (
	"errors"
	"testing"

	"github.com/harryless17/memoria-backend/models"
)

func TestSplitCreatesSingleton(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	faces := seedFaces(t, db, event.ID, cluster.ID, 3)
	seedCluster(t, db, event.ID, 7, models.ClusterStatusPending) // occupies a high label

	victim := faces[1]
	result, err := svc.Split(event.ID, victim.ID)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if result.OldClusterID != cluster.ID {
		t.Errorf("wrong old cluster id: %d", result.OldClusterID)
	}
	if result.NewLabel != 8 {
		t.Errorf("expected next free label 8, got %d", result.NewLabel)
	}

	if n := countFacesIn(t, db, cluster.ID); n != 2 {
		t.Errorf("old cluster holds %d faces, want 2", n)
	}
	if n := countFacesIn(t, db, result.NewClusterID); n != 1 {
		t.Errorf("singleton holds %d faces, want 1", n)
	}

	singleton := reloadCluster(t, db, result.NewClusterID)
	if singleton.Status != models.ClusterStatusPending {
		t.Errorf("singleton status is %s, want pending", singleton.Status)
	}
	if singleton.RepresentativeFaceID == nil || *singleton.RepresentativeFaceID != victim.ID {
		t.Errorf("singleton representative is %v, want %d", singleton.RepresentativeFaceID, victim.ID)
	}
	if singleton.Metadata[models.ClusterMetaOrigin] != models.ClusterOriginSplit {
		t.Errorf("singleton origin metadata is %v", singleton.Metadata[models.ClusterMetaOrigin])
	}

	old := reloadCluster(t, db, cluster.ID)
	if old.FaceCount != 2 {
		t.Errorf("old cluster cached face count is %d, want 2", old.FaceCount)
	}
}

func TestSplitDeletesFaceTags(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	guest := seedUser(t, db, "samir@example.com", "Samir")
	member := seedMember(t, db, event.ID, guest.Email, guest.Name, &guest.ID, models.MemberRoleGuest)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	faces := seedFaces(t, db, event.ID, cluster.ID, 2)

	if _, err := svc.Assign(event.ID, cluster.ID, []uint{member.ID}); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	result, err := svc.Split(event.ID, faces[0].ID)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if result.TagsDeleted != 1 {
		t.Errorf("expected 1 deleted tag, got %d", result.TagsDeleted)
	}
	if n := countTagsFor(t, db, guest.ID); n != 1 {
		t.Errorf("participant keeps %d tags, want 1", n)
	}
}

func TestSplitSingletonRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	faces := seedFaces(t, db, event.ID, cluster.ID, 1)

	_, err := svc.Split(event.ID, faces[0].ID)
	if !errors.Is(err, ErrSingletonCluster) {
		t.Fatalf("expected ErrSingletonCluster, got %v", err)
	}

	// rejection leaves the store untouched
	var clusterCount int64
	db.Model(&models.Cluster{}).Count(&clusterCount)
	if clusterCount != 1 {
		t.Errorf("rejected split created a cluster (count %d)", clusterCount)
	}
	if n := countFacesIn(t, db, cluster.ID); n != 1 {
		t.Errorf("rejected split moved the face (count %d)", n)
	}
}

func TestSplitRejectsForeignEvent(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	other := seedEvent(t, db, owner.ID)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	faces := seedFaces(t, db, event.ID, cluster.ID, 2)

	_, err := svc.Split(other.ID, faces[0].ID)
	if !errors.Is(err, ErrEventMismatch) {
		t.Fatalf("expected ErrEventMismatch, got %v", err)
	}
	if n := countFacesIn(t, db, cluster.ID); n != 2 {
		t.Errorf("rejected split moved a face (count %d)", n)
	}
}

func TestSplitUnknownFace(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Split(1, 9999); err == nil {
		t.Fatal("expected an error for an unknown face")
	}
}

package services

import (
	"errors"
	"testing"

	"github.com/harryless17/memoria-backend/models"
)

func TestMergeMovesFacesAndTombstones(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	primary := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	secondary := seedCluster(t, db, event.ID, 2, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, primary.ID, 3)
	seedFaces(t, db, event.ID, secondary.ID, 2)

	result, err := svc.Merge(event.ID, primary.ID, secondary.ID)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.MovedFaces != 2 {
		t.Errorf("expected 2 moved faces, got %d", result.MovedFaces)
	}
	if result.FaceCount != 5 {
		t.Errorf("expected face count 5 after merge, got %d", result.FaceCount)
	}

	if n := countFacesIn(t, db, primary.ID); n != 5 {
		t.Errorf("primary holds %d faces, want 5", n)
	}
	if n := countFacesIn(t, db, secondary.ID); n != 0 {
		t.Errorf("secondary still holds %d faces", n)
	}

	gotSecondary := reloadCluster(t, db, secondary.ID)
	if gotSecondary.Status != models.ClusterStatusMerged {
		t.Errorf("expected secondary tombstoned, got %s", gotSecondary.Status)
	}
	gotPrimary := reloadCluster(t, db, primary.ID)
	if gotPrimary.FaceCount != 5 {
		t.Errorf("primary cached face count is %d, want 5", gotPrimary.FaceCount)
	}
	if gotPrimary.RepresentativeFaceID == nil {
		t.Error("primary lost its representative face")
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	primary := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	secondary := seedCluster(t, db, event.ID, 2, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, primary.ID, 1)
	seedFaces(t, db, event.ID, secondary.ID, 2)

	if _, err := svc.Merge(event.ID, primary.ID, secondary.ID); err != nil {
		t.Fatalf("first Merge failed: %v", err)
	}
	result, err := svc.Merge(event.ID, primary.ID, secondary.ID)
	if err != nil {
		t.Fatalf("repeated Merge errored: %v", err)
	}
	if result.MovedFaces != 0 {
		t.Errorf("repeated Merge moved %d faces, want 0", result.MovedFaces)
	}
	if n := countFacesIn(t, db, primary.ID); n != 3 {
		t.Errorf("face count changed on repeat: %d", n)
	}
}

func TestMergeSelfRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, cluster.ID, 2)

	_, err := svc.Merge(event.ID, cluster.ID, cluster.ID)
	if !errors.Is(err, ErrSelfMerge) {
		t.Fatalf("expected ErrSelfMerge, got %v", err)
	}
	got := reloadCluster(t, db, cluster.ID)
	if got.Status != models.ClusterStatusPending || countFacesIn(t, db, cluster.ID) != 2 {
		t.Error("self-merge mutated the cluster")
	}
}

func TestMergeIntoTombstoneRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	primary := seedCluster(t, db, event.ID, 1, models.ClusterStatusMerged)
	secondary := seedCluster(t, db, event.ID, 2, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, secondary.ID, 1)

	_, err := svc.Merge(event.ID, primary.ID, secondary.ID)
	if !errors.Is(err, ErrClusterMerged) {
		t.Fatalf("expected ErrClusterMerged, got %v", err)
	}
}

func TestMergeAcrossEventsRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	eventA := seedEvent(t, db, owner.ID)
	eventB := seedEvent(t, db, owner.ID)
	primary := seedCluster(t, db, eventA.ID, 1, models.ClusterStatusPending)
	foreign := seedCluster(t, db, eventB.ID, 1, models.ClusterStatusPending)

	_, err := svc.Merge(eventA.ID, primary.ID, foreign.ID)
	if err == nil {
		t.Fatal("expected cross-event merge to be rejected")
	}
}

func TestMergeLinkedPrimaryTagsAbsorbedFaces(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	guest := seedUser(t, db, "lina@example.com", "Lina")
	member := seedMember(t, db, event.ID, guest.Email, guest.Name, &guest.ID, models.MemberRoleGuest)

	primary := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, primary.ID, 2)
	if _, err := svc.Assign(event.ID, primary.ID, []uint{member.ID}); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	secondary := seedCluster(t, db, event.ID, 2, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, secondary.ID, 3)

	result, err := svc.Merge(event.ID, primary.ID, secondary.ID)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.TagsCreated != 3 {
		t.Errorf("expected 3 tags for the absorbed faces, got %d", result.TagsCreated)
	}
	if n := countTagsFor(t, db, guest.ID); n != 5 {
		t.Errorf("linked participant has %d tags, want 5", n)
	}
}

package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
)

func TestAssignSingleLinksCluster(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	guest := seedUser(t, db, "hichem@example.com", "Hichem")
	member := seedMember(t, db, event.ID, guest.Email, guest.Name, &guest.ID, models.MemberRoleGuest)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, cluster.ID, 4)

	result, err := svc.Assign(event.ID, cluster.ID, []uint{member.ID})
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if result.Failed != 0 {
		t.Fatalf("expected no failures, got %d", result.Failed)
	}
	if got := result.Members[0].TagsCreated; got != 4 {
		t.Errorf("expected 4 tags, got %d", got)
	}
	if !result.Members[0].Linked {
		t.Error("expected the cluster to be linked to the participant")
	}

	got := reloadCluster(t, db, cluster.ID)
	if got.Status != models.ClusterStatusLinked {
		t.Errorf("expected status linked, got %s", got.Status)
	}
	if got.LinkedUserID == nil || *got.LinkedUserID != guest.ID {
		t.Errorf("expected linked_user_id %d, got %v", guest.ID, got.LinkedUserID)
	}
	if got.LinkedName == nil || *got.LinkedName != guest.Name {
		t.Errorf("expected linked_name %q, got %v", guest.Name, got.LinkedName)
	}
	if n := countTagsFor(t, db, guest.ID); n != 4 {
		t.Errorf("expected 4 tags in store, got %d", n)
	}
}

func TestAssignRepeatCreatesNoDuplicateTags(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	guest := seedUser(t, db, "sonia@example.com", "Sonia")
	member := seedMember(t, db, event.ID, guest.Email, guest.Name, &guest.ID, models.MemberRoleGuest)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, cluster.ID, 3)

	if _, err := svc.Assign(event.ID, cluster.ID, []uint{member.ID}); err != nil {
		t.Fatalf("first Assign failed: %v", err)
	}
	result, err := svc.Assign(event.ID, cluster.ID, []uint{member.ID})
	if err != nil {
		t.Fatalf("second Assign failed: %v", err)
	}
	if got := result.Members[0].TagsCreated; got != 0 {
		t.Errorf("retry created %d new tags, want 0", got)
	}
	if n := countTagsFor(t, db, guest.ID); n != 3 {
		t.Errorf("expected 3 tags after retry, got %d", n)
	}
}

func TestAssignWithoutAccountSignalsInvite(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	member := seedMember(t, db, event.ID, "tata@example.com", "Tata Karima", nil, models.MemberRoleGuest)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, cluster.ID, 2)

	_, err := svc.Assign(event.ID, cluster.ID, []uint{member.ID})
	if !errors.Is(err, ErrNoAccount) {
		t.Fatalf("expected ErrNoAccount, got %v", err)
	}

	got := reloadCluster(t, db, cluster.ID)
	if got.Status != models.ClusterStatusPending {
		t.Errorf("failed assign mutated cluster status to %s", got.Status)
	}
	var tagCount int64
	db.Model(&models.Tag{}).Count(&tagCount)
	if tagCount != 0 {
		t.Errorf("failed assign created %d tags", tagCount)
	}
}

func TestAssignMergedClusterRejected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	guest := seedUser(t, db, "nina@example.com", "Nina")
	member := seedMember(t, db, event.ID, guest.Email, guest.Name, &guest.ID, models.MemberRoleGuest)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusMerged)

	_, err := svc.Assign(event.ID, cluster.ID, []uint{member.ID})
	if !errors.Is(err, ErrClusterMerged) {
		t.Fatalf("expected ErrClusterMerged, got %v", err)
	}
}

func TestAssignUnknownMemberIsNotFound(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, cluster.ID, 1)

	_, err := svc.Assign(event.ID, cluster.ID, []uint{9999})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestMultiAssignTagsEveryParticipant(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, cluster.ID, 5)

	users := make([]*models.User, 3)
	memberIDs := make([]uint, 3)
	for i, name := range []string{"Ali", "Bilal", "Chris"} {
		u := seedUser(t, db, name+"@example.com", name)
		m := seedMember(t, db, event.ID, u.Email, u.Name, &u.ID, models.MemberRoleGuest)
		users[i] = u
		memberIDs[i] = m.ID
	}

	result, err := svc.Assign(event.ID, cluster.ID, memberIDs)
	if err != nil {
		t.Fatalf("multi-assign failed: %v", err)
	}
	if result.Failed != 0 {
		t.Fatalf("expected no failures, got %d: %+v", result.Failed, result.Members)
	}

	var total int64
	for i, u := range users {
		n := countTagsFor(t, db, u.ID)
		if n != 5 {
			t.Errorf("participant %d has %d tags, want 5", i, n)
		}
		total += n
	}
	if total != 15 {
		t.Errorf("expected 15 tags total, got %d", total)
	}

	// the pre-selected mover is the last of the batch
	got := reloadCluster(t, db, cluster.ID)
	if got.Status != models.ClusterStatusLinked {
		t.Fatalf("expected cluster linked after multi-assign, got %s", got.Status)
	}
	if got.LinkedUserID == nil || *got.LinkedUserID != users[2].ID {
		t.Errorf("expected cluster linked to last participant %d, got %v", users[2].ID, got.LinkedUserID)
	}
	if result.Members[0].Linked || result.Members[1].Linked {
		t.Error("copy-only participants must not receive the mutating step")
	}
}

func TestMultiAssignMoverMergesIntoExistingCluster(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	mover := seedUser(t, db, "yasmine@example.com", "Yasmine")
	copyOnly := seedUser(t, db, "karim@example.com", "Karim")
	moverMember := seedMember(t, db, event.ID, mover.Email, mover.Name, &mover.ID, models.MemberRoleGuest)
	copyMember := seedMember(t, db, event.ID, copyOnly.Email, copyOnly.Name, &copyOnly.ID, models.MemberRoleGuest)

	// the mover already owns a linked cluster in this event
	existing := seedCluster(t, db, event.ID, 1, models.ClusterStatusLinked)
	db.Model(existing).Update("linked_user_id", mover.ID)
	seedFaces(t, db, event.ID, existing.ID, 2)

	source := seedCluster(t, db, event.ID, 2, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, source.ID, 3)

	result, err := svc.Assign(event.ID, source.ID, []uint{copyMember.ID, moverMember.ID})
	if err != nil {
		t.Fatalf("multi-assign failed: %v", err)
	}
	if result.Failed != 0 {
		t.Fatalf("expected no failures: %+v", result.Members)
	}

	moverOutcome := result.Members[1]
	if moverOutcome.MergedInto == nil || *moverOutcome.MergedInto != existing.ID {
		t.Fatalf("expected source merged into %d, got %+v", existing.ID, moverOutcome)
	}

	// face conservation: every face now lives in the mover's cluster
	if n := countFacesIn(t, db, existing.ID); n != 5 {
		t.Errorf("expected 5 faces in the surviving cluster, got %d", n)
	}
	if n := countFacesIn(t, db, source.ID); n != 0 {
		t.Errorf("expected 0 faces left in the source, got %d", n)
	}
	gotSource := reloadCluster(t, db, source.ID)
	if gotSource.Status != models.ClusterStatusMerged {
		t.Errorf("expected source tombstoned, got %s", gotSource.Status)
	}

	// copy-only participant got tags for the source faces only
	if n := countTagsFor(t, db, copyOnly.ID); n != 3 {
		t.Errorf("copy participant has %d tags, want 3", n)
	}
}

func TestAssignBatchRecordsPerMemberFailure(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	event := seedEvent(t, db, owner.ID)
	guest := seedUser(t, db, "mounir@example.com", "Mounir")
	withAccount := seedMember(t, db, event.ID, guest.Email, guest.Name, &guest.ID, models.MemberRoleGuest)
	noAccount := seedMember(t, db, event.ID, "cousin@example.com", "Le cousin", nil, models.MemberRoleGuest)
	cluster := seedCluster(t, db, event.ID, 1, models.ClusterStatusPending)
	seedFaces(t, db, event.ID, cluster.ID, 2)

	result, err := svc.Assign(event.ID, cluster.ID, []uint{noAccount.ID, withAccount.ID})
	if err != nil {
		t.Fatalf("batch assign should not fail outright: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected exactly one failed member, got %d", result.Failed)
	}
	if result.Members[0].Error == "" {
		t.Error("expected an error recorded for the account-less member")
	}
	if result.Members[1].TagsCreated != 2 || !result.Members[1].Linked {
		t.Errorf("expected the claimed member to be fully assigned, got %+v", result.Members[1])
	}
}

func TestAssignNoParticipants(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Assign(1, 1, nil); !errors.Is(err, ErrNoParticipants) {
		t.Fatalf("expected ErrNoParticipants, got %v", err)
	}
}

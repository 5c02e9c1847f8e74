package models

import "testing"

func TestClusterStatusTransitions(t *testing.T) {
	cases := []struct {
		from    ClusterStatus
		to      ClusterStatus
		allowed bool
	}{
		{ClusterStatusPending, ClusterStatusLinked, true},
		{ClusterStatusPending, ClusterStatusInvited, true},
		{ClusterStatusPending, ClusterStatusIgnored, true},
		{ClusterStatusPending, ClusterStatusMerged, true},
		{ClusterStatusLinked, ClusterStatusMerged, true},
		{ClusterStatusLinked, ClusterStatusPending, false},
		{ClusterStatusLinked, ClusterStatusInvited, false},
		{ClusterStatusInvited, ClusterStatusLinked, true},
		{ClusterStatusInvited, ClusterStatusMerged, true},
		{ClusterStatusInvited, ClusterStatusIgnored, false},
		{ClusterStatusIgnored, ClusterStatusMerged, true},
		{ClusterStatusIgnored, ClusterStatusLinked, false},
		{ClusterStatusMerged, ClusterStatusPending, false},
		{ClusterStatusMerged, ClusterStatusLinked, false},
		{ClusterStatusMerged, ClusterStatusMerged, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestIsValidClusterStatus(t *testing.T) {
	for _, valid := range []string{"pending", "linked", "invited", "ignored", "merged"} {
		if !IsValidClusterStatus(valid) {
			t.Errorf("expected %q to be a valid status", valid)
		}
	}
	for _, invalid := range []string{"", "Pending", "deleted", "done"} {
		if IsValidClusterStatus(invalid) {
			t.Errorf("expected %q to be rejected", invalid)
		}
	}
}

func TestClusterIsMerged(t *testing.T) {
	c := Cluster{Status: ClusterStatusLinked}
	if c.IsMerged() {
		t.Error("linked cluster should not be a tombstone")
	}
	c.Status = ClusterStatusMerged
	if !c.IsMerged() {
		t.Error("merged cluster should be a tombstone")
	}
}

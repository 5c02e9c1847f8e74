package services

import "errors"

// Validation errors: rejected before any mutation, no partial state possible.
var (
	// ErrNoParticipants is returned when Assign is called with an empty member set.
	ErrNoParticipants = errors.New("participant set must not be empty")
	// ErrSelfMerge is returned when a cluster is merged into itself.
	ErrSelfMerge = errors.New("cannot merge a cluster into itself")
	// ErrSingletonCluster is returned when Split targets the only face of a cluster.
	ErrSingletonCluster = errors.New("cannot split the only face of a cluster")
	// ErrInvalidEmail is returned when an invitation email fails to parse.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrEventMismatch is returned when a cluster or face does not belong to
	// the event named by the command.
	ErrEventMismatch = errors.New("cluster does not belong to this event")
)

// Conflict errors: the caller should refresh cluster state and retry.
var (
	// ErrClusterMerged is returned when an operation targets a tombstone; a
	// concurrent caller merged it first.
	ErrClusterMerged = errors.New("cluster has already been merged")
	// ErrInvalidTransition is returned when the cluster's status machine
	// forbids the requested transition (e.g. assigning an ignored cluster).
	ErrInvalidTransition = errors.New("cluster status does not allow this operation")
)

// ErrNoAccount signals that a member has no claimed account yet: the caller
// should use InviteAndDefer instead of Assign.
var ErrNoAccount = errors.New("member has no claimed account")

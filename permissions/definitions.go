package permissions

// PermissionScope defines the context in which a permission applies
type PermissionScope string

const (
	ScopeGlobal PermissionScope = "global" // applies system-wide
	ScopeEvent  PermissionScope = "event"  // applies within a specific event
)

// PermissionDefinition describes a single, specific permission
type PermissionDefinition struct {
	Key         string          `json:"key"`         // unique key, e.g., "cluster.assign"
	Name        string          `json:"name"`        // friendly name, e.g., "Assign Cluster"
	Description string          `json:"description"` // detailed description of what the permission allows
	Scope       PermissionScope `json:"scope"`       // scope of the permission (global or event-specific)
}

// PermissionGroupDefinition groups related permissions
type PermissionGroupDefinition struct {
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Permissions []PermissionDefinition `json:"permissions"`
}

// DefinedPermissionGroups holds all statically defined permission groups and their permissions
var DefinedPermissionGroups = []PermissionGroupDefinition{
	{
		Key:         "event",
		Name:        "Event Management",
		Description: "Permissions related to managing events and their members.",
		Permissions: []PermissionDefinition{
			{
				Key:         "event.create",
				Name:        "Create Event",
				Description: "Allows creating new events.",
				Scope:       ScopeGlobal,
			},
			{
				Key:         "event.view",
				Name:        "View Event",
				Description: "Allows viewing an event's media and clusters.",
				Scope:       ScopeEvent,
			},
			{
				Key:         "event.member.add",
				Name:        "Add Member",
				Description: "Allows adding participants to an event.",
				Scope:       ScopeEvent,
			},
			{
				Key:         "event.media.add",
				Name:        "Register Media",
				Description: "Allows registering uploaded media with an event.",
				Scope:       ScopeEvent,
			},
		},
	},
	{
		Key:         "cluster",
		Name:        "Cluster Resolution",
		Description: "Permissions related to resolving face clusters to participants.",
		Permissions: []PermissionDefinition{
			{
				Key:         "cluster.assign",
				Name:        "Assign Cluster",
				Description: "Allows assigning a face cluster to one or more participants.",
				Scope:       ScopeEvent,
			},
			{
				Key:         "cluster.merge",
				Name:        "Merge Clusters",
				Description: "Allows merging two clusters of the same event.",
				Scope:       ScopeEvent,
			},
			{
				Key:         "cluster.split",
				Name:        "Split Face",
				Description: "Allows detaching a face from its cluster into a new one.",
				Scope:       ScopeEvent,
			},
			{
				Key:         "cluster.invite",
				Name:        "Invite Participant",
				Description: "Allows inviting a participant by email and deferring cluster linkage.",
				Scope:       ScopeEvent,
			},
			{
				Key:         "cluster.ignore",
				Name:        "Ignore Cluster",
				Description: "Allows marking a cluster as not worth resolving.",
				Scope:       ScopeEvent,
			},
		},
	},
	{
		Key:         "detection",
		Name:        "Detection Ingest",
		Description: "Permissions related to ingesting face detection results.",
		Permissions: []PermissionDefinition{
			{
				Key:         "detection.ingest",
				Name:        "Ingest Detection Results",
				Description: "Allows submitting clustered face detections for an event.",
				Scope:       ScopeEvent,
			},
		},
	},
}

// RolePermissions maps an event member role to the event-scoped permission
// keys it grants. Owners and organizers can mutate cluster state; guests can
// only view.
var RolePermissions = map[string][]string{
	"owner": {
		"event.view", "event.member.add", "event.media.add",
		"cluster.assign", "cluster.merge", "cluster.split", "cluster.invite", "cluster.ignore",
		"detection.ingest",
	},
	"organizer": {
		"event.view", "event.member.add", "event.media.add",
		"cluster.assign", "cluster.merge", "cluster.split", "cluster.invite", "cluster.ignore",
		"detection.ingest",
	},
	"guest": {
		"event.view",
	},
}

// RoleHas reports whether the given role carries the permission key.
func RoleHas(role, key string) bool {
	for _, k := range RolePermissions[role] {
		if k == key {
			return true
		}
	}
	return false
}

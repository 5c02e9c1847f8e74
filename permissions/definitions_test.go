package permissions

import "testing"

func TestRoleHas(t *testing.T) {
	if !RoleHas("organizer", "cluster.merge") {
		t.Error("organizers should be able to merge clusters")
	}
	if !RoleHas("owner", "cluster.assign") {
		t.Error("owners should be able to assign clusters")
	}
	if RoleHas("guest", "cluster.assign") {
		t.Error("guests must not resolve clusters")
	}
	if RoleHas("guest", "cluster.split") {
		t.Error("guests must not split faces")
	}
	if !RoleHas("guest", "event.view") {
		t.Error("guests should be able to view")
	}
	if RoleHas("unknown", "event.view") {
		t.Error("unknown roles carry no permissions")
	}
}

func TestDefinedPermissionKeysAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, group := range DefinedPermissionGroups {
		for _, p := range group.Permissions {
			if seen[p.Key] {
				t.Errorf("duplicate permission key %q", p.Key)
			}
			seen[p.Key] = true
		}
	}
}

func TestRolePermissionsReferToDefinedKeys(t *testing.T) {
	defined := map[string]bool{}
	for _, group := range DefinedPermissionGroups {
		for _, p := range group.Permissions {
			defined[p.Key] = true
		}
	}
	for role, keys := range RolePermissions {
		for _, key := range keys {
			if !defined[key] {
				t.Errorf("role %q grants undefined permission %q", role, key)
			}
		}
	}
}

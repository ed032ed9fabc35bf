package workspace

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Research Lab", "research-lab"},
		{"Ada's Workspace", "ada-s-workspace"},
		{"  spaced  out  ", "spaced-out"},
		{"UPPER case 123", "upper-case-123"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultName(t *testing.T) {
	if got := DefaultName("Ada"); got != "Ada's Workspace" {
		t.Errorf("DefaultName(Ada) = %q", got)
	}
	if got := DefaultName(""); got != "My Workspace" {
		t.Errorf("DefaultName(empty) = %q", got)
	}
}

func TestDefaultRoleGrants(t *testing.T) {
	// Every default role receives exactly one permission, and every
	// default permission is granted to exactly one role.
	roles := map[string]bool{}
	perms := map[string]bool{}
	for _, g := range DefaultRoleGrants {
		if roles[g.Role] {
			t.Errorf("role %q granted twice", g.Role)
		}
		if perms[g.Permission] {
			t.Errorf("permission %q granted twice", g.Permission)
		}
		roles[g.Role] = true
		perms[g.Permission] = true
	}
	for _, p := range DefaultPermissions {
		if !perms[p] {
			t.Errorf("permission %q not covered by a default grant", p)
		}
	}
}

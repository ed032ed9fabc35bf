package storefront_test

import (
	"testing"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/workspace"
)

func TestProvisionWorkspaceDefaults(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	ws, err := sf.ProvisionWorkspace(ctx, user.ID, "Research Lab")
	if err != nil {
		t.Fatalf("provision workspace: %v", err)
	}
	if ws.Slug != "research-lab" {
		t.Errorf("expected slug %q, got %q", "research-lab", ws.Slug)
	}
	if ws.OwnerID != user.ID {
		t.Errorf("expected owner %s, got %s", user.ID, ws.OwnerID)
	}

	// Exactly the four default roles, each with one permission binding.
	roles, err := sf.ListWorkspaceRoles(ctx, ws.ID)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != len(workspace.DefaultRoleGrants) {
		t.Fatalf("expected %d roles, got %d", len(workspace.DefaultRoleGrants), len(roles))
	}
	names := map[string]bool{}
	for _, r := range roles {
		names[r.Name] = true
	}
	for _, grant := range workspace.DefaultRoleGrants {
		if !names[grant.Role] {
			t.Errorf("missing default role %q", grant.Role)
		}
	}

	// The creator is bound to the admin role.
	members, err := sf.ListWorkspaceMembers(ctx, ws.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member binding, got %d", len(members))
	}
	var adminID = roles[0].ID
	for _, r := range roles {
		if r.Name == workspace.RoleAdmin {
			adminID = r.ID
		}
	}
	if members[0].UserID != user.ID || members[0].RoleID != adminID {
		t.Errorf("expected admin binding for creator, got %+v", members[0])
	}
}

func TestProvisionWorkspaceDefaultName(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Empty name falls back to the owner-derived default.
	ws, err := sf.ProvisionWorkspace(ctx, user.ID, "")
	if err != nil {
		t.Fatalf("provision workspace: %v", err)
	}
	if ws.Name != workspace.DefaultName(user.Name) {
		t.Errorf("expected default name %q, got %q", workspace.DefaultName(user.Name), ws.Name)
	}
}

func TestProvisionWorkspaceUnknownOwner(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	// A user that was never created.
	_, err := sf.ProvisionWorkspace(ctx, id.NewUserID(), "Lab")
	if err == nil {
		t.Fatal("expected error for unknown owner")
	}
}

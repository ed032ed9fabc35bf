package storefront

import (
	"context"
	"fmt"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/workspace"
)

// ProvisionWorkspace creates a workspace with its default role bundle:
// four roles, one permission binding per role from the static grants
// table, and an admin binding for the creating user. The permission rows
// are global and must be seeded first.
func (sf *Storefront) ProvisionWorkspace(ctx context.Context, ownerID id.UserID, name string) (*workspace.Workspace, error) {
	owner, err := sf.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("provision workspace: %w", err)
	}
	if name == "" {
		name = workspace.DefaultName(owner.Name)
	}

	ws := &workspace.Workspace{
		Entity:  types.NewEntity(),
		ID:      id.NewWorkspaceID(),
		Name:    name,
		Slug:    workspace.Slugify(name),
		OwnerID: ownerID,
	}

	roles := make([]*workspace.Role, 0, len(workspace.DefaultRoleGrants))
	rolesByName := make(map[string]*workspace.Role, len(workspace.DefaultRoleGrants))
	for _, grant := range workspace.DefaultRoleGrants {
		r := &workspace.Role{
			Entity:      types.NewEntity(),
			ID:          id.NewWorkspaceRoleID(),
			WorkspaceID: ws.ID,
			Name:        grant.Role,
		}
		roles = append(roles, r)
		rolesByName[grant.Role] = r
	}

	if err := sf.store.CreateWorkspace(ctx, ws, roles); err != nil {
		return nil, fmt.Errorf("provision workspace: %w", err)
	}

	for _, grant := range workspace.DefaultRoleGrants {
		perm, err := sf.store.GetPermissionByName(ctx, grant.Permission)
		if err != nil {
			if IsNotFound(err) {
				err = fmt.Errorf("%w: workspace permission %q", ErrMissingConfig, grant.Permission)
			}
			return nil, fmt.Errorf("provision workspace: %w", err)
		}
		rp := &workspace.RolePermission{
			Entity:       types.NewEntity(),
			ID:           id.NewRolePermissionID(),
			RoleID:       rolesByName[grant.Role].ID,
			PermissionID: perm.ID,
		}
		if err := sf.store.CreateRolePermission(ctx, rp); err != nil {
			return nil, fmt.Errorf("provision workspace: %w", err)
		}
	}

	// The admin role must be among the roles the store just created.
	// Anything else is data corruption, not a recoverable condition.
	created, err := sf.store.ListWorkspaceRoles(ctx, ws.ID)
	if err != nil {
		return nil, fmt.Errorf("provision workspace: %w", err)
	}
	var admin *workspace.Role
	for _, r := range created {
		if r.Name == workspace.RoleAdmin {
			admin = r
			break
		}
	}
	if admin == nil {
		return nil, fmt.Errorf("provision workspace: %w", ErrAdminRoleMissing)
	}

	binding := &workspace.UserRole{
		Entity:      types.NewEntity(),
		ID:          id.NewMembershipID(),
		WorkspaceID: ws.ID,
		UserID:      ownerID,
		RoleID:      admin.ID,
	}
	if err := sf.store.CreateWorkspaceUserRole(ctx, binding); err != nil {
		return nil, fmt.Errorf("provision workspace: %w", err)
	}

	sf.plugins.EmitWorkspaceProvisioned(ctx, ws)

	sf.logger.Info("workspace provisioned",
		"workspace_id", ws.ID.String(),
		"owner_id", ownerID.String(),
		"slug", ws.Slug,
	)

	return ws, nil
}

// GetWorkspace retrieves a workspace by ID.
func (sf *Storefront) GetWorkspace(ctx context.Context, workspaceID id.WorkspaceID) (*workspace.Workspace, error) {
	return sf.store.GetWorkspace(ctx, workspaceID)
}

// ListWorkspaces returns the workspaces a user owns.
func (sf *Storefront) ListWorkspaces(ctx context.Context, ownerID id.UserID) ([]*workspace.Workspace, error) {
	return sf.store.ListWorkspacesByOwner(ctx, ownerID)
}

// ListWorkspaceRoles returns a workspace's roles.
func (sf *Storefront) ListWorkspaceRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.Role, error) {
	return sf.store.ListWorkspaceRoles(ctx, workspaceID)
}

// ListWorkspaceMembers returns a workspace's user-role bindings.
func (sf *Storefront) ListWorkspaceMembers(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.UserRole, error) {
	return sf.store.ListWorkspaceUserRoles(ctx, workspaceID)
}

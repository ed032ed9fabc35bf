package workspace

import (
	"context"

	"github.com/xraph/storefront/id"
)

type Store interface {
	// CreateWorkspace persists the workspace together with its initial
	// roles.
	CreateWorkspace(ctx context.Context, ws *Workspace, roles []*Role) error
	GetWorkspace(ctx context.Context, workspaceID id.WorkspaceID) (*Workspace, error)
	ListWorkspacesByOwner(ctx context.Context, ownerID id.UserID) ([]*Workspace, error)

	ListWorkspaceRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*Role, error)

	CreatePermission(ctx context.Context, p *Permission) error
	GetPermissionByName(ctx context.Context, name string) (*Permission, error)
	ListPermissions(ctx context.Context) ([]*Permission, error)

	CreateRolePermission(ctx context.Context, rp *RolePermission) error
	ListRolePermissions(ctx context.Context, roleID id.WorkspaceRoleID) ([]*RolePermission, error)

	CreateWorkspaceUserRole(ctx context.Context, ur *UserRole) error
	ListWorkspaceUserRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*UserRole, error)
}

// Package workspace holds workspaces and their role-based access
// control entities.
package workspace

import (
	"strings"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// Default workspace role names.
const (
	RoleAdmin   = "admin"
	RoleEditor  = "editor"
	RoleInviter = "inviter"
	RoleViewer  = "viewer"
)

// Default workspace permission names. These are global rows seeded once
// and referenced by every workspace's role-permission bindings.
const (
	PermFullControl = "full-control"
	PermUpdate      = "update"
	PermInvite      = "invite"
	PermView        = "view"
)

// DefaultPermissions lists the permission rows every deployment needs.
var DefaultPermissions = []string{PermFullControl, PermUpdate, PermInvite, PermView}

// RoleGrant pairs a default role with the permission it receives.
type RoleGrant struct {
	Role       string
	Permission string
}

// DefaultRoleGrants is the static provisioning table: every new
// workspace gets exactly these roles with exactly these permissions,
// iterated once at provisioning time.
var DefaultRoleGrants = []RoleGrant{
	{Role: RoleAdmin, Permission: PermFullControl},
	{Role: RoleEditor, Permission: PermUpdate},
	{Role: RoleInviter, Permission: PermInvite},
	{Role: RoleViewer, Permission: PermView},
}

type Workspace struct {
	types.Entity
	ID      id.WorkspaceID `json:"id"`
	Name    string         `json:"name"`
	Slug    string         `json:"slug"`
	OwnerID id.UserID      `json:"owner_id"`
}

// Role is scoped to one workspace, unlike account roles which are
// application-wide.
type Role struct {
	types.Entity
	ID          id.WorkspaceRoleID `json:"id"`
	WorkspaceID id.WorkspaceID     `json:"workspace_id"`
	Name        string             `json:"name"`
}

// Permission is a global capability name shared by all workspaces.
type Permission struct {
	types.Entity
	ID   id.PermissionID `json:"id"`
	Name string          `json:"name"`
}

// RolePermission binds one workspace role to one permission.
type RolePermission struct {
	types.Entity
	ID           id.RolePermissionID `json:"id"`
	RoleID       id.WorkspaceRoleID  `json:"role_id"`
	PermissionID id.PermissionID     `json:"permission_id"`
}

// UserRole binds a user to a role within one workspace.
type UserRole struct {
	types.Entity
	ID          id.MembershipID    `json:"id"`
	WorkspaceID id.WorkspaceID     `json:"workspace_id"`
	UserID      id.UserID          `json:"user_id"`
	RoleID      id.WorkspaceRoleID `json:"role_id"`
}

// Slugify converts a workspace name to a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DefaultName returns the workspace name used when the caller supplies
// none.
func DefaultName(userName string) string {
	if userName == "" {
		return "My Workspace"
	}
	return userName + "'s Workspace"
}

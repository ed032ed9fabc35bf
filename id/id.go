// Package id defines TypeID-based identity types for all Storefront entities.
//
// Every entity uses a single ID struct with a prefix that identifies the
// entity type. IDs are K-sortable (UUIDv7-based), globally unique, and
// URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Storefront entity types.
const (
	PrefixUser            Prefix = "user"   // Account
	PrefixRole            Prefix = "role"   // Application role
	PrefixUserRole        Prefix = "urole"  // Application role grant
	PrefixCashTransaction Prefix = "ctxn"   // Balance ledger entry
	PrefixProduct         Prefix = "prod"   // Catalog product
	PrefixTag             Prefix = "tag"    // Catalog tag
	PrefixProductTag      Prefix = "ptag"   // Product-tag join
	PrefixCartItem        Prefix = "cart"   // Cart item
	PrefixBill            Prefix = "bill"   // Checkout bill
	PrefixPaidProduct     Prefix = "pprod"  // Bill line
	PrefixWorkspace       Prefix = "ws"     // Workspace
	PrefixWorkspaceRole   Prefix = "wsrole" // Workspace role
	PrefixPermission      Prefix = "wsperm" // Workspace permission
	PrefixRolePermission  Prefix = "wsrp"   // Workspace role-permission join
	PrefixMembership      Prefix = "wsur"   // Workspace membership
	PrefixMetaFile        Prefix = "file"   // Upload metadata
	PrefixGatewayProduct  Prefix = "gwp"    // Synced gateway product
	PrefixGatewayVariant  Prefix = "gwv"    // Synced gateway variant
)

// ID is the primary identifier type for all Storefront entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "bill_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Per-entity aliases
// ──────────────────────────────────────────────────

// UserID is a type-safe identifier for users (prefix: "user").
type UserID = ID

// RoleID is a type-safe identifier for application roles (prefix: "role").
type RoleID = ID

// UserRoleID is a type-safe identifier for role grants (prefix: "urole").
type UserRoleID = ID

// CashTransactionID is a type-safe identifier for ledger entries (prefix: "ctxn").
type CashTransactionID = ID

// ProductID is a type-safe identifier for products (prefix: "prod").
type ProductID = ID

// TagID is a type-safe identifier for tags (prefix: "tag").
type TagID = ID

// ProductTagID is a type-safe identifier for product-tag joins (prefix: "ptag").
type ProductTagID = ID

// CartItemID is a type-safe identifier for cart items (prefix: "cart").
type CartItemID = ID

// BillID is a type-safe identifier for bills (prefix: "bill").
type BillID = ID

// PaidProductID is a type-safe identifier for bill lines (prefix: "pprod").
type PaidProductID = ID

// WorkspaceID is a type-safe identifier for workspaces (prefix: "ws").
type WorkspaceID = ID

// WorkspaceRoleID is a type-safe identifier for workspace roles (prefix: "wsrole").
type WorkspaceRoleID = ID

// PermissionID is a type-safe identifier for workspace permissions (prefix: "wsperm").
type PermissionID = ID

// RolePermissionID is a type-safe identifier for role-permission joins (prefix: "wsrp").
type RolePermissionID = ID

// MembershipID is a type-safe identifier for workspace memberships (prefix: "wsur").
type MembershipID = ID

// MetaFileID is a type-safe identifier for upload metadata (prefix: "file").
type MetaFileID = ID

// GatewayProductID is a type-safe identifier for synced gateway products (prefix: "gwp").
type GatewayProductID = ID

// GatewayVariantID is a type-safe identifier for synced gateway variants (prefix: "gwv").
type GatewayVariantID = ID

// AnyID is a type alias that accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewUserID generates a new unique user ID.
func NewUserID() ID { return New(PrefixUser) }

// NewRoleID generates a new unique role ID.
func NewRoleID() ID { return New(PrefixRole) }

// NewUserRoleID generates a new unique role grant ID.
func NewUserRoleID() ID { return New(PrefixUserRole) }

// NewCashTransactionID generates a new unique ledger entry ID.
func NewCashTransactionID() ID { return New(PrefixCashTransaction) }

// NewProductID generates a new unique product ID.
func NewProductID() ID { return New(PrefixProduct) }

// NewTagID generates a new unique tag ID.
func NewTagID() ID { return New(PrefixTag) }

// NewProductTagID generates a new unique product-tag join ID.
func NewProductTagID() ID { return New(PrefixProductTag) }

// NewCartItemID generates a new unique cart item ID.
func NewCartItemID() ID { return New(PrefixCartItem) }

// NewBillID generates a new unique bill ID.
func NewBillID() ID { return New(PrefixBill) }

// NewPaidProductID generates a new unique bill line ID.
func NewPaidProductID() ID { return New(PrefixPaidProduct) }

// NewWorkspaceID generates a new unique workspace ID.
func NewWorkspaceID() ID { return New(PrefixWorkspace) }

// NewWorkspaceRoleID generates a new unique workspace role ID.
func NewWorkspaceRoleID() ID { return New(PrefixWorkspaceRole) }

// NewPermissionID generates a new unique workspace permission ID.
func NewPermissionID() ID { return New(PrefixPermission) }

// NewRolePermissionID generates a new unique role-permission join ID.
func NewRolePermissionID() ID { return New(PrefixRolePermission) }

// NewMembershipID generates a new unique workspace membership ID.
func NewMembershipID() ID { return New(PrefixMembership) }

// NewMetaFileID generates a new unique upload metadata ID.
func NewMetaFileID() ID { return New(PrefixMetaFile) }

// NewGatewayProductID generates a new unique gateway product ID.
func NewGatewayProductID() ID { return New(PrefixGatewayProduct) }

// NewGatewayVariantID generates a new unique gateway variant ID.
func NewGatewayVariantID() ID { return New(PrefixGatewayVariant) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseUserID parses a string and validates the "user" prefix.
func ParseUserID(s string) (ID, error) { return ParseWithPrefix(s, PrefixUser) }

// ParseRoleID parses a string and validates the "role" prefix.
func ParseRoleID(s string) (ID, error) { return ParseWithPrefix(s, PrefixRole) }

// ParseProductID parses a string and validates the "prod" prefix.
func ParseProductID(s string) (ID, error) { return ParseWithPrefix(s, PrefixProduct) }

// ParseTagID parses a string and validates the "tag" prefix.
func ParseTagID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTag) }

// ParseCartItemID parses a string and validates the "cart" prefix.
func ParseCartItemID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCartItem) }

// ParseBillID parses a string and validates the "bill" prefix.
func ParseBillID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBill) }

// ParseWorkspaceID parses a string and validates the "ws" prefix.
func ParseWorkspaceID(s string) (ID, error) { return ParseWithPrefix(s, PrefixWorkspace) }

// ParseMetaFileID parses a string and validates the "file" prefix.
func ParseMetaFileID(s string) (ID, error) { return ParseWithPrefix(s, PrefixMetaFile) }

// ParseUserRoleID parses a string and validates the "urole" prefix.
func ParseUserRoleID(s string) (ID, error) { return ParseWithPrefix(s, PrefixUserRole) }

// ParseCashTransactionID parses a string and validates the "ctxn" prefix.
func ParseCashTransactionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCashTransaction) }

// ParseProductTagID parses a string and validates the "ptag" prefix.
func ParseProductTagID(s string) (ID, error) { return ParseWithPrefix(s, PrefixProductTag) }

// ParsePaidProductID parses a string and validates the "pprod" prefix.
func ParsePaidProductID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPaidProduct) }

// ParseWorkspaceRoleID parses a string and validates the "wsrole" prefix.
func ParseWorkspaceRoleID(s string) (ID, error) { return ParseWithPrefix(s, PrefixWorkspaceRole) }

// ParsePermissionID parses a string and validates the "wsperm" prefix.
func ParsePermissionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPermission) }

// ParseRolePermissionID parses a string and validates the "wsrp" prefix.
func ParseRolePermissionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixRolePermission) }

// ParseMembershipID parses a string and validates the "wsur" prefix.
func ParseMembershipID(s string) (ID, error) { return ParseWithPrefix(s, PrefixMembership) }

// ParseGatewayProductID parses a string and validates the "gwp" prefix.
func ParseGatewayProductID(s string) (ID, error) { return ParseWithPrefix(s, PrefixGatewayProduct) }

// ParseGatewayVariantID parses a string and validates the "gwv" prefix.
func ParseGatewayVariantID(s string) (ID, error) { return ParseWithPrefix(s, PrefixGatewayVariant) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}

package account

import (
	"context"

	"github.com/xraph/storefront/id"
)

type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, userID id.UserID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	CreateRole(ctx context.Context, r *Role) error
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)

	// UpsertUserRole creates the grant or, when a row already exists for
	// (user, role), atomically replaces its end date. No read-then-write.
	UpsertUserRole(ctx context.Context, ur *UserRole) (*UserRole, error)
	GetUserRole(ctx context.Context, userID id.UserID, roleID id.RoleID) (*UserRole, error)
	ListUserRoles(ctx context.Context, userID id.UserID) ([]*UserRole, error)

	// RecordCashTransaction inserts the ledger entry and increments (or
	// creates) the matching balance row in one atomic unit, returning
	// the updated balance.
	RecordCashTransaction(ctx context.Context, txn *CashTransaction) (*UserBalance, error)
	GetUserBalance(ctx context.Context, userID id.UserID, cash CashType) (*UserBalance, error)
	ListCashTransactions(ctx context.Context, userID id.UserID, opts ListOpts) ([]*CashTransaction, error)
}

type ListOpts struct {
	Cash   CashType
	Limit  int
	Offset int
}

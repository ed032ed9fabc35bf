// Package account holds users, application role grants, and the cash
// balance ledger.
package account

import (
	"time"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// Default application role names. Seeded once; membership purchases
// grant RolePro, new users start with RoleViewer.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
	RolePro    = "pro"
)

// DefaultRoles lists the application roles every deployment needs.
var DefaultRoles = []string{RoleAdmin, RoleViewer, RolePro}

type User struct {
	types.Entity
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type Role struct {
	types.Entity
	ID   id.RoleID `json:"id"`
	Name string    `json:"name"`
}

// UserRole is an application-level role grant with a validity window,
// unique per (user, role). Renewals reset EndDate from now; windows do
// not stack.
type UserRole struct {
	types.Entity
	ID        id.UserRoleID `json:"id"`
	UserID    id.UserID     `json:"user_id"`
	RoleID    id.RoleID     `json:"role_id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
}

// ActiveAt reports whether the grant covers the given instant.
func (ur *UserRole) ActiveAt(t time.Time) bool {
	return !ur.StartDate.After(t) && ur.EndDate.After(t)
}

// CashType partitions balances per user. CREDITS is the only type the
// purchase flow writes today.
type CashType string

const (
	CashCredits CashType = "CREDITS"
)

// TransactionType records the direction of a ledger entry. It is derived
// from the sign of the amount, never supplied by callers.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

// TransactionTypeFor returns the transaction type for a signed amount.
func TransactionTypeFor(amount int64) TransactionType {
	if amount < 0 {
		return TransactionWithdrawal
	}
	return TransactionDeposit
}

// CashTransaction is an append-only ledger entry. Rows are never updated
// or deleted.
type CashTransaction struct {
	types.Entity
	ID     id.CashTransactionID `json:"id"`
	UserID id.UserID            `json:"user_id"`
	Type   TransactionType      `json:"type"`
	Cash   CashType             `json:"cash_type"`
	Amount int64                `json:"amount"`
}

// UserBalance is the materialized aggregate per (user, cash type). It
// always equals the sum of the user's CashTransaction amounts for that
// type; both are written in one atomic store operation.
type UserBalance struct {
	types.Entity
	UserID  id.UserID `json:"user_id"`
	Cash    CashType  `json:"cash_type"`
	Balance int64     `json:"balance"`
}

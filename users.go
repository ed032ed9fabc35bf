package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/workspace"
)

// viewerGrantYears is the validity window of the default viewer grant.
// Viewer access never lapses in practice; the window exists because
// every grant carries one.
const viewerGrantYears = 100

// ──────────────────────────────────────────────────
// Accounts
// ──────────────────────────────────────────────────

// CreateUser creates a user, binds the default viewer role, and
// provisions the user's first workspace.
func (sf *Storefront) CreateUser(ctx context.Context, name, email string) (*account.User, error) {
	if email == "" {
		return nil, ValidationError{Field: "email", Message: "is required"}
	}

	u := &account.User{
		Entity: types.NewEntity(),
		ID:     id.NewUserID(),
		Name:   name,
		Email:  email,
	}
	if err := sf.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	viewer, err := sf.store.GetRoleByName(ctx, account.RoleViewer)
	if err != nil {
		if IsNotFound(err) {
			err = fmt.Errorf("%w: role %q", ErrMissingConfig, account.RoleViewer)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := time.Now().UTC()
	grant := &account.UserRole{
		Entity:    types.NewEntity(),
		ID:        id.NewUserRoleID(),
		UserID:    u.ID,
		RoleID:    viewer.ID,
		StartDate: now,
		EndDate:   now.AddDate(viewerGrantYears, 0, 0),
	}
	if _, err := sf.store.UpsertUserRole(ctx, grant); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := sf.ProvisionWorkspace(ctx, u.ID, workspace.DefaultName(u.Name)); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	sf.plugins.EmitUserCreated(ctx, u)
	return u, nil
}

// GetUser retrieves a user by ID.
func (sf *Storefront) GetUser(ctx context.Context, userID id.UserID) (*account.User, error) {
	return sf.store.GetUser(ctx, userID)
}

// GetUserByEmail retrieves a user by email.
func (sf *Storefront) GetUserByEmail(ctx context.Context, email string) (*account.User, error) {
	return sf.store.GetUserByEmail(ctx, email)
}

// UserStat returns the dashboard summary for a user: admin/pro standing
// from unexpired grants plus the CREDITS balance.
func (sf *Storefront) UserStat(ctx context.Context, userID id.UserID) (account.Stat, error) {
	roles, err := sf.store.ListRoles(ctx)
	if err != nil {
		return account.Stat{}, fmt.Errorf("user stat: %w", err)
	}
	grants, err := sf.store.ListUserRoles(ctx, userID)
	if err != nil {
		return account.Stat{}, fmt.Errorf("user stat: %w", err)
	}

	balance, err := sf.store.GetUserBalance(ctx, userID, account.CashCredits)
	if err != nil {
		if !IsNotFound(err) {
			return account.Stat{}, fmt.Errorf("user stat: %w", err)
		}
		balance = nil
	}

	return account.BuildStat(roles, grants, balance, time.Now().UTC()), nil
}

// ──────────────────────────────────────────────────
// Balance ledger
// ──────────────────────────────────────────────────

// RecordCashTransaction appends a ledger entry and updates the matching
// balance in one atomic unit, returning the updated balance. The
// transaction type is derived from the sign of amount.
func (sf *Storefront) RecordCashTransaction(ctx context.Context, userID id.UserID, cash account.CashType, amount int64) (*account.UserBalance, error) {
	if cash == "" {
		return nil, ValidationError{Field: "cash_type", Message: "is required"}
	}

	txn := &account.CashTransaction{
		Entity: types.NewEntity(),
		ID:     id.NewCashTransactionID(),
		UserID: userID,
		Type:   account.TransactionTypeFor(amount),
		Cash:   cash,
		Amount: amount,
	}

	balance, err := sf.store.RecordCashTransaction(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("process cash transaction: %w", err)
	}

	sf.plugins.EmitBalanceChanged(ctx, balance, amount)

	sf.logger.Debug("cash transaction recorded",
		"user_id", userID.String(),
		"cash_type", string(cash),
		"amount", amount,
		"balance", balance.Balance,
	)

	return balance, nil
}

// GetUserBalance returns the balance row for (user, cash type).
func (sf *Storefront) GetUserBalance(ctx context.Context, userID id.UserID, cash account.CashType) (*account.UserBalance, error) {
	return sf.store.GetUserBalance(ctx, userID, cash)
}

// ListCashTransactions returns a user's ledger entries.
func (sf *Storefront) ListCashTransactions(ctx context.Context, userID id.UserID, opts account.ListOpts) ([]*account.CashTransaction, error) {
	return sf.store.ListCashTransactions(ctx, userID, opts)
}

// ──────────────────────────────────────────────────
// Seed data
// ──────────────────────────────────────────────────

// SeedDefaults idempotently creates the default application roles and
// workspace permissions a fresh store needs before users can be created
// or workspaces provisioned.
func (sf *Storefront) SeedDefaults(ctx context.Context) error {
	for _, name := range account.DefaultRoles {
		_, err := sf.store.GetRoleByName(ctx, name)
		if err == nil {
			continue
		}
		if !IsNotFound(err) {
			return fmt.Errorf("seed defaults: %w", err)
		}
		r := &account.Role{
			Entity: types.NewEntity(),
			ID:     id.NewRoleID(),
			Name:   name,
		}
		if err := sf.store.CreateRole(ctx, r); err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
	}

	for _, name := range workspace.DefaultPermissions {
		_, err := sf.store.GetPermissionByName(ctx, name)
		if err == nil {
			continue
		}
		if !IsNotFound(err) {
			return fmt.Errorf("seed defaults: %w", err)
		}
		p := &workspace.Permission{
			Entity: types.NewEntity(),
			ID:     id.NewPermissionID(),
			Name:   name,
		}
		if err := sf.store.CreatePermission(ctx, p); err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
	}

	return nil
}

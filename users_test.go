package storefront_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/store/memory"
)

func TestCreateUser(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID.IsNil() {
		t.Error("expected a user ID")
	}

	got, err := sf.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected %s, got %s", user.ID, got.ID)
	}

	// New users start as viewers, not pro.
	stat, err := sf.UserStat(ctx, user.ID)
	if err != nil {
		t.Fatalf("user stat: %v", err)
	}
	if stat.IsPro || stat.IsAdmin {
		t.Errorf("expected plain viewer standing, got %+v", stat)
	}

	// The first workspace was provisioned alongside the account.
	workspaces, err := sf.ListWorkspaces(ctx, user.ID)
	if err != nil {
		t.Fatalf("list workspaces: %v", err)
	}
	if len(workspaces) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(workspaces))
	}
}

func TestCreateUserValidation(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	_, err := sf.CreateUser(ctx, "Ada", "")
	if !storefront.IsValidation(err) {
		t.Fatalf("expected validation error for empty email, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	if _, err := sf.CreateUser(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := sf.CreateUser(ctx, "Imposter", "ada@example.com")
	if !errors.Is(err, storefront.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCreateUserRequiresSeededRoles(t *testing.T) {
	// No SeedDefaults: the viewer role is absent.
	ctx := context.Background()
	sf := storefront.New(memory.New(),
		storefront.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		storefront.WithSweepInterval(0),
	)
	if err := sf.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = sf.Stop() })

	_, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if !storefront.IsConfiguration(err) {
		t.Fatalf("expected configuration error on unseeded store, got %v", err)
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	// The helper already seeded once.
	if err := sf.SeedDefaults(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
}

func TestRecordCashTransactionValidation(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err = sf.RecordCashTransaction(ctx, user.ID, "", 100)
	if !storefront.IsValidation(err) {
		t.Fatalf("expected validation error for empty cash type, got %v", err)
	}
}

func TestRecordCashTransactionUnknownUser(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	_, err := sf.RecordCashTransaction(ctx, storefront.ID{}, account.CashCredits, 100)
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestGetUserBalanceNotFound(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err = sf.GetUserBalance(ctx, user.ID, account.CashCredits)
	if !errors.Is(err, storefront.ErrBalanceNotFound) {
		t.Fatalf("expected ErrBalanceNotFound before first transaction, got %v", err)
	}
}

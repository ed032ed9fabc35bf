package account

import (
	"testing"
	"time"

	"github.com/xraph/storefront/id"
)

func TestBuildStat(t *testing.T) {
	now := time.Now().UTC()

	admin := &Role{ID: id.NewRoleID(), Name: RoleAdmin}
	pro := &Role{ID: id.NewRoleID(), Name: RolePro}
	viewer := &Role{ID: id.NewRoleID(), Name: RoleViewer}
	roles := []*Role{admin, pro, viewer}

	userID := id.NewUserID()
	grant := func(roleID id.RoleID, start, end time.Time) *UserRole {
		return &UserRole{
			ID:        id.NewUserRoleID(),
			UserID:    userID,
			RoleID:    roleID,
			StartDate: start,
			EndDate:   end,
		}
	}

	tests := []struct {
		name    string
		grants  []*UserRole
		balance *UserBalance
		want    Stat
	}{
		{
			name: "active pro grant",
			grants: []*UserRole{
				grant(pro.ID, now.Add(-time.Hour), now.Add(time.Hour)),
			},
			want: Stat{IsPro: true, CashText: "0 B"},
		},
		{
			name: "expired pro grant",
			grants: []*UserRole{
				grant(pro.ID, now.Add(-48*time.Hour), now.Add(-time.Hour)),
			},
			want: Stat{CashText: "0 B"},
		},
		{
			name: "future grant does not count yet",
			grants: []*UserRole{
				grant(pro.ID, now.Add(time.Hour), now.Add(48*time.Hour)),
			},
			want: Stat{CashText: "0 B"},
		},
		{
			name: "admin and pro together",
			grants: []*UserRole{
				grant(admin.ID, now.Add(-time.Hour), now.Add(time.Hour)),
				grant(pro.ID, now.Add(-time.Hour), now.Add(time.Hour)),
			},
			want: Stat{IsAdmin: true, IsPro: true, CashText: "0 B"},
		},
		{
			name: "viewer only",
			grants: []*UserRole{
				grant(viewer.ID, now.Add(-time.Hour), now.Add(time.Hour)),
			},
			want: Stat{CashText: "0 B"},
		},
		{
			name:    "balance carried through",
			balance: &UserBalance{UserID: userID, Cash: CashCredits, Balance: 2048},
			want:    Stat{Cash: 2048, CashText: "2.0 KiB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildStat(roles, tt.grants, tt.balance, now)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTransactionTypeFor(t *testing.T) {
	tests := []struct {
		amount int64
		want   TransactionType
	}{
		{100, TransactionDeposit},
		{0, TransactionDeposit},
		{-1, TransactionWithdrawal},
		{-5000, TransactionWithdrawal},
	}

	for _, tt := range tests {
		if got := TransactionTypeFor(tt.amount); got != tt.want {
			t.Errorf("TransactionTypeFor(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

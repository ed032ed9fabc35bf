package account

import (
	"fmt"
	"time"
)

// Stat is the dashboard summary for a user: role standing plus the
// CREDITS balance, with the balance pre-formatted for display.
type Stat struct {
	IsAdmin  bool   `json:"is_admin"`
	IsPro    bool   `json:"is_pro"`
	Cash     int64  `json:"cash"`
	CashText string `json:"cash_text"`
}

// BuildStat derives a Stat from a user's role grants and CREDITS balance.
// Only grants whose window covers now count.
func BuildStat(roles []*Role, grants []*UserRole, balance *UserBalance, now time.Time) Stat {
	byID := make(map[string]string, len(roles))
	for _, r := range roles {
		byID[r.ID.String()] = r.Name
	}

	var s Stat
	for _, g := range grants {
		if !g.ActiveAt(now) {
			continue
		}
		switch byID[g.RoleID.String()] {
		case RoleAdmin:
			s.IsAdmin = true
		case RolePro:
			s.IsPro = true
		}
	}

	if balance != nil {
		s.Cash = balance.Balance
	}
	s.CashText = FormatBytes(s.Cash)
	return s
}

// FormatBytes renders a CREDITS amount in binary byte units. Credits are
// denominated in bytes of quota.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

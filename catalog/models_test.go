package catalog

import (
	"testing"
	"time"
)

func TestMembershipDuration(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		duration time.Duration
		ok       bool
	}{
		{"no tags", nil, 0, false},
		{"unrelated tags", []string{TagCash, TagWorkspace}, 0, false},
		{"membership defaults to monthly", []string{TagMembership}, MonthlyDuration, true},
		{"membership monthly", []string{TagMembership, TagMonthly}, MonthlyDuration, true},
		{"membership annual", []string{TagMembership, TagAnnual}, AnnualDuration, true},
		{"annual without membership", []string{TagAnnual}, 0, false},
		{"annual wins over monthly", []string{TagMembership, TagMonthly, TagAnnual}, AnnualDuration, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, ok := MembershipDuration(tt.tags)
			if ok != tt.ok || duration != tt.duration {
				t.Errorf("MembershipDuration(%v) = (%v, %v), want (%v, %v)",
					tt.tags, duration, ok, tt.duration, tt.ok)
			}
		})
	}
}

package ledgermodel

import (
	"testing"
	"time"
)

func TestRecomputeRequiresAllMilestones(t *testing.T) {
	now := time.Now()
	r := &Reconciliation{CustomerPaid: true, DealCreated: true, CommissionApproved: true, CompanyPaid: true}
	r.Recompute(now)
	if r.FullySettled {
		t.Fatal("four of five milestones must not settle")
	}
	if r.SettledAt != nil {
		t.Fatal("settled_at set before settlement")
	}

	r.AffiliatePaid = true
	r.Recompute(now)
	if !r.FullySettled {
		t.Fatal("all five milestones must settle")
	}
	if r.SettledAt == nil || !r.SettledAt.Equal(now) {
		t.Fatalf("settled_at = %v, want %v", r.SettledAt, now)
	}
}

func TestRecomputeKeepsFirstSettledAt(t *testing.T) {
	first := time.Now()
	r := &Reconciliation{CustomerPaid: true, DealCreated: true, CommissionApproved: true, CompanyPaid: true, AffiliatePaid: true}
	r.Recompute(first)

	later := first.Add(time.Hour)
	r.Recompute(later)
	if !r.SettledAt.Equal(first) {
		t.Fatalf("settled_at moved to %v on replay, want %v", r.SettledAt, first)
	}
}

func TestRecomputeUnsettlesWhenMilestoneDrops(t *testing.T) {
	now := time.Now()
	r := &Reconciliation{CustomerPaid: true, DealCreated: true, CommissionApproved: true, CompanyPaid: true, AffiliatePaid: true}
	r.Recompute(now)

	// a milestone correction must be reflected in the derived flag
	r.CompanyPaid = false
	r.Recompute(now)
	if r.FullySettled {
		t.Fatal("flag must track milestones back down")
	}
}

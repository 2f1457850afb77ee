package state

import "testing"

func TestCommissionTransitions(t *testing.T) {
	cases := []struct {
		from, to CommissionStatus
		ok       bool
	}{
		{CommissionPending, CommissionApproved, true},
		{CommissionPending, CommissionRejected, true},
		{CommissionApproved, CommissionPendingPayout, true},
		{CommissionPendingPayout, CommissionPaid, true},
		// transfer-failure compensating reversal
		{CommissionPendingPayout, CommissionApproved, true},
		// regressions
		{CommissionPaid, CommissionPending, false},
		{CommissionPaid, CommissionApproved, false},
		{CommissionApproved, CommissionPending, false},
		{CommissionRejected, CommissionApproved, false},
		{CommissionPending, CommissionPaid, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestPayoutTerminalProtection(t *testing.T) {
	if PayoutCompleted.CanTransition(PayoutFailed) {
		t.Error("completed payout must not regress to failed")
	}
	if PayoutFailed.CanTransition(PayoutCompleted) {
		t.Error("failed payout must not move to completed")
	}
	if !PayoutCompleted.Terminal() || !PayoutFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
	if !PayoutProcessing.CanTransition(PayoutCompleted) {
		t.Error("processing -> completed must be legal")
	}
	// out-of-order delivery: "transfer paid" may beat "transfer created"
	if !PayoutScheduled.CanTransition(PayoutCompleted) {
		t.Error("scheduled -> completed must be legal")
	}
}

func TestBatchTerminalProtection(t *testing.T) {
	if BatchSucceeded.CanTransition(BatchFailed) {
		t.Error("succeeded batch must not regress")
	}
	if BatchFailed.CanTransition(BatchSucceeded) {
		t.Error("failed batch must not succeed afterwards")
	}
	if !BatchPending.CanTransition(BatchSucceeded) {
		t.Error("pending -> succeeded must be legal")
	}
}

func TestCompanyPaymentRelease(t *testing.T) {
	// failed charge releases commissions back to pending
	if !CompanyPayProcessing.CanTransition(CompanyPayPending) {
		t.Error("processing -> pending must be legal after a failed charge")
	}
	if CompanyPayPaid.CanTransition(CompanyPayPending) {
		t.Error("paid must be terminal")
	}
}

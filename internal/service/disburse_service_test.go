package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/idgen"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	mainmodel "affiliate-settlement-api/internal/model/main"
	"affiliate-settlement-api/internal/processor"
	"affiliate-settlement-api/internal/state"
)

func TestMain(m *testing.M) {
	idgen.Init(1)
	os.Exit(m.Run())
}

// ---- in-memory doubles ----

type fakeLedger struct {
	batches     map[uint64]*ledgermodel.CompanyPayment
	commissions map[uint64]*ledgermodel.Commission
	payouts     map[uint64]*ledgermodel.Payout
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		batches:     map[uint64]*ledgermodel.CompanyPayment{},
		commissions: map[uint64]*ledgermodel.Commission{},
		payouts:     map[uint64]*ledgermodel.Payout{},
	}
}

func (f *fakeLedger) GetBatch(id uint64) (*ledgermodel.CompanyPayment, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeLedger) GetPayout(id uint64) (*ledgermodel.Payout, error) {
	p, ok := f.payouts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeLedger) ListCommissionsByIDs(ids []uint64) ([]ledgermodel.Commission, error) {
	out := make([]ledgermodel.Commission, 0, len(ids))
	for _, id := range ids {
		if c, ok := f.commissions[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeLedger) InsertPayout(p *ledgermodel.Payout) error {
	cp := *p
	f.payouts[p.PayoutID] = &cp
	return nil
}

func (f *fakeLedger) TransitionCommission(id uint64, from, to state.CommissionStatus, extra map[string]interface{}) error {
	c, ok := f.commissions[id]
	if !ok || c.Status != from {
		return errors.New("stale")
	}
	c.Status = to
	if v, ok := extra["payout_id"]; ok {
		if v == nil {
			c.PayoutID = nil
		} else {
			pid := v.(uint64)
			c.PayoutID = &pid
		}
	}
	return nil
}

func (f *fakeLedger) TransitionPayout(id uint64, from, to state.PayoutStatus, extra map[string]interface{}) error {
	p, ok := f.payouts[id]
	if !ok || p.Status != from {
		return errors.New("stale")
	}
	p.Status = to
	if v, ok := extra["transfer_ref"].(*string); ok {
		p.TransferRef = v
	}
	return nil
}

func (f *fakeLedger) UndisbursedCommissions(affiliateID uint64) ([]ledgermodel.Commission, error) {
	var out []ledgermodel.Commission
	for _, c := range f.commissions {
		if c.AffiliateID == affiliateID && c.Status == state.CommissionApproved &&
			c.CompanyPayStat == state.CompanyPayPaid && c.PayoutID == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// The Apply fakes mirror the dao transaction semantics on the in-memory maps:
// a terminal-state no-op on the head row plus unconditional derived writes.
func (f *fakeLedger) ApplyBatchSucceeded(b *ledgermodel.CompanyPayment, chargeRef string, paidAt time.Time) error {
	stored := f.batches[b.BatchID]
	if stored.Status != state.BatchSucceeded {
		stored.Status = state.BatchSucceeded
		stored.PaidAt = &paidAt
	}
	for _, c := range f.commissions {
		if c.BatchID != nil && *c.BatchID == b.BatchID && c.CompanyPayStat == state.CompanyPayProcessing {
			c.CompanyPayStat = state.CompanyPayPaid
			c.CompanyPaidAt = &paidAt
		}
	}
	return nil
}

func (f *fakeLedger) ApplyPayoutCompleted(p *ledgermodel.Payout, now time.Time) error {
	stored := f.payouts[p.PayoutID]
	if stored.Status != state.PayoutCompleted {
		stored.Status = state.PayoutCompleted
		stored.ProcessedAt = &now
	}
	for _, c := range f.commissions {
		if c.PayoutID != nil && *c.PayoutID == p.PayoutID && c.Status == state.CommissionPendingPayout {
			c.Status = state.CommissionPaid
			c.AffiliatePaidAt = &now
		}
	}
	return nil
}

func (f *fakeLedger) ApplyPayoutFailed(p *ledgermodel.Payout, reason string) error {
	stored := f.payouts[p.PayoutID]
	if stored.Status != state.PayoutFailed {
		stored.Status = state.PayoutFailed
		stored.FailureReason = &reason
	}
	for _, c := range f.commissions {
		if c.PayoutID != nil && *c.PayoutID == p.PayoutID && c.Status == state.CommissionPendingPayout {
			c.Status = state.CommissionApproved
			c.PayoutID = nil
		}
	}
	return nil
}

type fakeMain struct {
	affiliates map[uint64]*mainmodel.Affiliate
}

func (f *fakeMain) GetAffiliate(id uint64) (*mainmodel.Affiliate, error) {
	a, ok := f.affiliates[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeMain) UpdateAffiliateAccountStatus(id uint64, status state.AccountStatus) error {
	f.affiliates[id].AccountStatus = status
	return nil
}

type treasuryEntry struct {
	txType   int8
	amount   decimal.Decimal
	currency string
	refType  string
	refID    uint64
}

type fakeTreasury struct {
	entries []treasuryEntry
}

func (f *fakeTreasury) Append(txType int8, amount decimal.Decimal, currency, refType string, refID uint64) error {
	for _, e := range f.entries {
		if e.txType == txType && e.refType == refType && e.refID == refID {
			return nil // same dedupe as the real ledger table
		}
	}
	f.entries = append(f.entries, treasuryEntry{txType, amount, currency, refType, refID})
	return nil
}

func (f *fakeTreasury) count(txType int8) int {
	n := 0
	for _, e := range f.entries {
		if e.txType == txType {
			n++
		}
	}
	return n
}

type fakeAudit struct{ writes int }

func (f *fakeAudit) Write(entityType string, entityID uint64, eventID, from, to, note, traceID string) {
	f.writes++
}

type fakeRetry struct{ members map[uint64]bool }

func newFakeRetry() *fakeRetry { return &fakeRetry{members: map[uint64]bool{}} }

func (f *fakeRetry) Add(id uint64) error { f.members[id] = true; return nil }
func (f *fakeRetry) Remove(id uint64)    { delete(f.members, id) }
func (f *fakeRetry) Members() ([]uint64, error) {
	out := make([]uint64, 0, len(f.members))
	for id := range f.members {
		out = append(out, id)
	}
	return out, nil
}

type fakeProcessor struct {
	transfers     []processor.TransferReq
	transferErr   error
	transferResp  *processor.TransferResp
	accountStatus string
}

func (f *fakeProcessor) CreateCharge(ctx context.Context, req processor.ChargeReq) (*processor.ChargeResp, error) {
	return nil, errors.New("not used")
}

func (f *fakeProcessor) CreateCheckoutSession(ctx context.Context, req processor.CheckoutReq) (*processor.CheckoutResp, error) {
	return nil, errors.New("not used")
}

func (f *fakeProcessor) CreateTransfer(ctx context.Context, req processor.TransferReq) (*processor.TransferResp, error) {
	f.transfers = append(f.transfers, req)
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	if f.transferResp != nil {
		return f.transferResp, nil
	}
	return &processor.TransferResp{TransferRef: fmt.Sprintf("tr_%d", len(f.transfers))}, nil
}

func (f *fakeProcessor) GetAccountStatus(ctx context.Context, accountRef string) (*processor.AccountStatusResp, error) {
	return &processor.AccountStatusResp{AccountRef: accountRef, Status: f.accountStatus}, nil
}

// ---- fixtures ----

const (
	testBatchID     = uint64(9001)
	testAffiliateID = uint64(501)
)

func newTestService() (*DisburseService, *fakeLedger, *fakeMain, *fakeTreasury, *fakeRetry, *fakeProcessor) {
	ledger := newFakeLedger()
	main := &fakeMain{affiliates: map[uint64]*mainmodel.Affiliate{}}
	treasury := &fakeTreasury{}
	retry := newFakeRetry()
	proc := &fakeProcessor{}
	svc := &DisburseService{
		mainDao:   main,
		ledgerDao: ledger,
		treasury:  treasury,
		audit:     &fakeAudit{},
		proc:      proc,
		retry:     retry,
	}
	return svc, ledger, main, treasury, retry, proc
}

func verifiedAffiliate(id uint64) *mainmodel.Affiliate {
	acct := fmt.Sprintf("acct_%d", id)
	return &mainmodel.Affiliate{
		AffiliateID:     id,
		AccountStatus:   state.AccountVerified,
		PayoutAccountID: &acct,
	}
}

func seedCommission(ledger *fakeLedger, id uint64, currency string, amount string) *ledgermodel.Commission {
	bid := testBatchID
	c := &ledgermodel.Commission{
		CommissionID:   id,
		AffiliateID:    testAffiliateID,
		CompanyID:      1,
		PayoutAmount:   decimal.RequireFromString(amount),
		Currency:       currency,
		Status:         state.CommissionApproved,
		CompanyPayStat: state.CompanyPayProcessing,
		BatchID:        &bid,
	}
	ledger.commissions[id] = c
	return c
}

func seedBatch(ledger *fakeLedger, status state.BatchStatus, commissionIDs ...uint64) {
	ledger.batches[testBatchID] = &ledgermodel.CompanyPayment{
		BatchID:       testBatchID,
		CompanyID:     1,
		TotalAmount:   decimal.RequireFromString("100"),
		FeeAmount:     decimal.RequireFromString("10"),
		Currency:      "USD",
		CommissionIDs: ledgermodel.IDList(commissionIDs),
		Status:        status,
	}
}

// ---- tests ----

// A crash can land a batch at succeeded with its commissions still stuck at
// company_pay_status=processing. The redelivered success event must finish
// the derived writes and disburse, not no-op on the terminal batch status.
func TestConfirmBatchPaidReplayHealsStuckCommissions(t *testing.T) {
	svc, ledger, main, _, _, proc := newTestService()
	seedCommission(ledger, 1, "USD", "80")
	seedBatch(ledger, state.BatchSucceeded, 1)
	main.affiliates[testAffiliateID] = verifiedAffiliate(testAffiliateID)

	if err := svc.ConfirmBatchPaid(testBatchID, "ch_1", "evt_redelivered", "t1"); err != nil {
		t.Fatalf("ConfirmBatchPaid: %v", err)
	}

	c := ledger.commissions[1]
	if c.CompanyPayStat != state.CompanyPayPaid {
		t.Fatalf("commission still %s, replay did not heal the company-paid flag", c.CompanyPayStat)
	}
	if len(proc.transfers) != 1 {
		t.Fatalf("expected 1 transfer after healing, got %d", len(proc.transfers))
	}
	if c.Status != state.CommissionPendingPayout || c.PayoutID == nil {
		t.Fatalf("commission not handed to a payout: status=%s payout=%v", c.Status, c.PayoutID)
	}
}

func TestConfirmBatchPaidIgnoresFailedBatch(t *testing.T) {
	svc, ledger, main, treasury, _, proc := newTestService()
	seedCommission(ledger, 1, "USD", "80")
	seedBatch(ledger, state.BatchFailed, 1)
	main.affiliates[testAffiliateID] = verifiedAffiliate(testAffiliateID)

	if err := svc.ConfirmBatchPaid(testBatchID, "ch_1", "evt_late", "t1"); err != nil {
		t.Fatalf("ConfirmBatchPaid: %v", err)
	}
	if ledger.batches[testBatchID].Status != state.BatchFailed {
		t.Fatal("a late success event resurrected a failed batch")
	}
	if len(proc.transfers) != 0 || len(treasury.entries) != 0 {
		t.Fatal("failed batch must produce no transfers or treasury entries")
	}
}

func TestConfirmBatchPaidTreasuryDedupeOnReplay(t *testing.T) {
	svc, ledger, main, treasury, _, _ := newTestService()
	seedCommission(ledger, 1, "USD", "80")
	seedBatch(ledger, state.BatchProcessing, 1)
	main.affiliates[testAffiliateID] = verifiedAffiliate(testAffiliateID)

	for i := 0; i < 3; i++ {
		if err := svc.ConfirmBatchPaid(testBatchID, "ch_1", fmt.Sprintf("evt_%d", i), "t1"); err != nil {
			t.Fatalf("ConfirmBatchPaid #%d: %v", i, err)
		}
	}
	if n := treasury.count(ledgermodel.TreasuryCommissionReceived); n != 1 {
		t.Fatalf("inflow recorded %d times, want 1", n)
	}
	if n := treasury.count(ledgermodel.TreasuryPlatformFee); n != 1 {
		t.Fatalf("fee recorded %d times, want 1", n)
	}
	if n := len(ledger.payouts); n != 1 {
		t.Fatalf("replay created %d payouts, want 1", n)
	}
}

// One affiliate earning in two currencies gets two transfers, each summing
// only its own currency.
func TestDisburseSplitsByCurrency(t *testing.T) {
	svc, ledger, main, _, _, proc := newTestService()
	seedCommission(ledger, 1, "USD", "80")
	seedCommission(ledger, 2, "EUR", "50")
	seedCommission(ledger, 3, "USD", "20")
	seedBatch(ledger, state.BatchProcessing, 1, 2, 3)
	main.affiliates[testAffiliateID] = verifiedAffiliate(testAffiliateID)

	if err := svc.ConfirmBatchPaid(testBatchID, "ch_1", "evt_1", "t1"); err != nil {
		t.Fatalf("ConfirmBatchPaid: %v", err)
	}
	if len(proc.transfers) != 2 {
		t.Fatalf("expected one transfer per currency, got %d", len(proc.transfers))
	}
	sums := map[string]decimal.Decimal{}
	for _, tr := range proc.transfers {
		sums[tr.Currency] = tr.Amount
	}
	if !sums["USD"].Equal(decimal.RequireFromString("100")) {
		t.Fatalf("USD transfer = %s, want 100", sums["USD"])
	}
	if !sums["EUR"].Equal(decimal.RequireFromString("50")) {
		t.Fatalf("EUR transfer = %s, want 50", sums["EUR"])
	}
}

func TestDisburseUnverifiedAffiliateEntersRetrySet(t *testing.T) {
	svc, ledger, main, _, retry, proc := newTestService()
	seedCommission(ledger, 1, "USD", "80")
	seedBatch(ledger, state.BatchProcessing, 1)
	main.affiliates[testAffiliateID] = &mainmodel.Affiliate{
		AffiliateID:   testAffiliateID,
		AccountStatus: state.AccountPendingVerify,
	}

	if err := svc.ConfirmBatchPaid(testBatchID, "ch_1", "evt_1", "t1"); err != nil {
		t.Fatalf("ConfirmBatchPaid: %v", err)
	}
	if len(proc.transfers) != 0 {
		t.Fatal("unverified affiliate must not receive a transfer")
	}
	if !retry.members[testAffiliateID] {
		t.Fatal("affiliate missing from retry set")
	}
	if ledger.commissions[1].CompanyPayStat != state.CompanyPayPaid {
		t.Fatal("company-paid flag must advance even when disbursement is deferred")
	}
}

// A failed transfer reverts the commissions and must put the affiliate back
// in the retry set, otherwise the reverted rows are unreachable until the
// next batch.
func TestFailPayoutRevertsAndSchedulesRetry(t *testing.T) {
	svc, ledger, main, treasury, retry, _ := newTestService()
	main.affiliates[testAffiliateID] = verifiedAffiliate(testAffiliateID)
	pid := uint64(7001)
	ref := "tr_1"
	c := seedCommission(ledger, 1, "USD", "80")
	c.Status = state.CommissionPendingPayout
	c.CompanyPayStat = state.CompanyPayPaid
	c.PayoutID = &pid
	ledger.payouts[pid] = &ledgermodel.Payout{
		PayoutID:      pid,
		AffiliateID:   testAffiliateID,
		Amount:        decimal.RequireFromString("80"),
		Currency:      "USD",
		CommissionIDs: ledgermodel.IDList{1},
		Status:        state.PayoutProcessing,
		TransferRef:   &ref,
	}

	if err := svc.FailPayout(pid, "insufficient funds", "evt_fail", "t1"); err != nil {
		t.Fatalf("FailPayout: %v", err)
	}
	if ledger.payouts[pid].Status != state.PayoutFailed {
		t.Fatalf("payout status = %s, want failed", ledger.payouts[pid].Status)
	}
	if c.Status != state.CommissionApproved || c.PayoutID != nil {
		t.Fatalf("commission not reverted: status=%s payout=%v", c.Status, c.PayoutID)
	}
	if n := treasury.count(ledgermodel.TreasuryPayoutReversal); n != 1 {
		t.Fatalf("reversal recorded %d times, want 1", n)
	}
	if !retry.members[testAffiliateID] {
		t.Fatal("affiliate not scheduled for retry after transfer failure")
	}
}

func TestFailPayoutIgnoresCompletedPayout(t *testing.T) {
	svc, ledger, _, _, retry, _ := newTestService()
	pid := uint64(7001)
	ledger.payouts[pid] = &ledgermodel.Payout{
		PayoutID:      pid,
		AffiliateID:   testAffiliateID,
		CommissionIDs: ledgermodel.IDList{1},
		Status:        state.PayoutCompleted,
	}
	c := seedCommission(ledger, 1, "USD", "80")
	c.Status = state.CommissionPaid
	c.PayoutID = &pid

	if err := svc.FailPayout(pid, "late failure", "evt_late", "t1"); err != nil {
		t.Fatalf("FailPayout: %v", err)
	}
	if ledger.payouts[pid].Status != state.PayoutCompleted {
		t.Fatal("a failed event regressed a completed payout")
	}
	if c.Status != state.CommissionPaid {
		t.Fatal("paid commission reverted by a late failure event")
	}
	if len(retry.members) != 0 {
		t.Fatal("completed payout must not schedule a retry")
	}
}

// A crash between the payout flip and the commission writes leaves the payout
// completed with commissions stuck at pending_payout. The redelivered paid
// event must finish them.
func TestCompletePayoutReplayHealsStuckCommissions(t *testing.T) {
	svc, ledger, _, _, _, _ := newTestService()
	pid := uint64(7001)
	ledger.payouts[pid] = &ledgermodel.Payout{
		PayoutID:      pid,
		AffiliateID:   testAffiliateID,
		CommissionIDs: ledgermodel.IDList{1},
		Status:        state.PayoutCompleted,
	}
	c := seedCommission(ledger, 1, "USD", "80")
	c.Status = state.CommissionPendingPayout
	c.CompanyPayStat = state.CompanyPayPaid
	c.PayoutID = &pid

	if err := svc.CompletePayout(pid, "evt_redelivered", "t1"); err != nil {
		t.Fatalf("CompletePayout: %v", err)
	}
	if c.Status != state.CommissionPaid {
		t.Fatalf("commission still %s, replay did not heal it", c.Status)
	}
}

func TestCompletePayoutIgnoresFailedPayout(t *testing.T) {
	svc, ledger, _, _, _, _ := newTestService()
	pid := uint64(7001)
	ledger.payouts[pid] = &ledgermodel.Payout{
		PayoutID:      pid,
		AffiliateID:   testAffiliateID,
		CommissionIDs: ledgermodel.IDList{1},
		Status:        state.PayoutFailed,
	}
	c := seedCommission(ledger, 1, "USD", "80")
	c.CompanyPayStat = state.CompanyPayPaid

	if err := svc.CompletePayout(pid, "evt_late", "t1"); err != nil {
		t.Fatalf("CompletePayout: %v", err)
	}
	if ledger.payouts[pid].Status != state.PayoutFailed {
		t.Fatal("a paid event resurrected a failed payout")
	}
	if c.Status == state.CommissionPaid {
		t.Fatal("commission marked paid under a failed payout")
	}
}

func TestSweepAffiliateSplitsByCurrency(t *testing.T) {
	svc, ledger, main, _, retry, proc := newTestService()
	main.affiliates[testAffiliateID] = verifiedAffiliate(testAffiliateID)
	retry.members[testAffiliateID] = true
	for i, cur := range []string{"USD", "EUR"} {
		c := seedCommission(ledger, uint64(i+1), cur, "40")
		c.CompanyPayStat = state.CompanyPayPaid
		c.BatchID = nil
	}

	if err := svc.SweepAffiliate(testAffiliateID); err != nil {
		t.Fatalf("SweepAffiliate: %v", err)
	}
	if len(proc.transfers) != 2 {
		t.Fatalf("expected one transfer per currency, got %d", len(proc.transfers))
	}
	if len(retry.members) != 0 {
		t.Fatal("drained affiliate must leave the retry set")
	}
}

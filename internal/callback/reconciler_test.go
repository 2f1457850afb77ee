package callback

import (
	"testing"

	"affiliate-settlement-api/internal/dto"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	mainmodel "affiliate-settlement-api/internal/model/main"
	"affiliate-settlement-api/internal/state"
)

func TestParseAccountStatus(t *testing.T) {
	cases := map[string]state.AccountStatus{
		"verified": state.AccountVerified,
		"pending":  state.AccountPendingVerify,
		"disabled": state.AccountDisabled,
		"":         state.AccountUnverified,
		"garbage":  state.AccountUnverified,
	}
	for in, want := range cases {
		if got := parseAccountStatus(in); got != want {
			t.Errorf("parseAccountStatus(%q) = %v, want %v", in, got, want)
		}
	}
}

// ---- dispatch doubles ----

type stubLedger struct {
	batchByCharge    map[string]*ledgermodel.CompanyPayment
	payoutByTransfer map[string]*ledgermodel.Payout
}

func (s *stubLedger) GetBatchByChargeRef(ref string) (*ledgermodel.CompanyPayment, error) {
	return s.batchByCharge[ref], nil
}

func (s *stubLedger) GetPayoutByTransferRef(ref string) (*ledgermodel.Payout, error) {
	return s.payoutByTransfer[ref], nil
}

func (s *stubLedger) GetCommission(id uint64) (*ledgermodel.Commission, error) { return nil, nil }

func (s *stubLedger) TransitionBatch(id uint64, from, to state.BatchStatus, extra map[string]interface{}) error {
	return nil
}

func (s *stubLedger) TransitionPayout(id uint64, from, to state.PayoutStatus, extra map[string]interface{}) error {
	return nil
}

func (s *stubLedger) ReleaseCommissionsFromBatch(batchID uint64) error { return nil }

func (s *stubLedger) GetReconByPayment(paymentID uint64) (*ledgermodel.Reconciliation, error) {
	return nil, nil
}

func (s *stubLedger) InsertRecon(rec *ledgermodel.Reconciliation) error { return nil }
func (s *stubLedger) SaveRecon(rec *ledgermodel.Reconciliation) error   { return nil }

type stubMain struct{}

func (stubMain) GetCustomerPaymentByChargeRef(ref string) (*mainmodel.CustomerPayment, error) {
	return nil, nil
}
func (stubMain) UpdateCustomerPayment(id uint64, fields map[string]interface{}) error { return nil }
func (stubMain) GetCompany(id uint64) (*mainmodel.Company, error)                    { return nil, nil }
func (stubMain) CreateDeal(d *mainmodel.Deal) error                                  { return nil }
func (stubMain) GetAffiliateByAccountRef(accountRef string) (*mainmodel.Affiliate, error) {
	return nil, nil
}
func (stubMain) UpdateAffiliateAccountStatus(id uint64, status state.AccountStatus) error {
	return nil
}

type stubAudit struct{}

func (stubAudit) Write(entityType string, entityID uint64, eventID, from, to, note, traceID string) {
}

type settlerCall struct {
	method string
	id     uint64
	reason string
}

type stubSettler struct{ calls []settlerCall }

func (s *stubSettler) ConfirmBatchPaid(batchID uint64, chargeRef, eventID, traceID string) error {
	s.calls = append(s.calls, settlerCall{method: "confirm", id: batchID})
	return nil
}

func (s *stubSettler) CompletePayout(payoutID uint64, eventID, traceID string) error {
	s.calls = append(s.calls, settlerCall{method: "complete", id: payoutID})
	return nil
}

func (s *stubSettler) FailPayout(payoutID uint64, reason, eventID, traceID string) error {
	s.calls = append(s.calls, settlerCall{method: "fail", id: payoutID, reason: reason})
	return nil
}

func (s *stubSettler) SweepAffiliate(affiliateID uint64) error {
	s.calls = append(s.calls, settlerCall{method: "sweep", id: affiliateID})
	return nil
}

func newDispatchReconciler() (*Reconciler, *stubLedger, *stubSettler) {
	ledger := &stubLedger{
		batchByCharge:    map[string]*ledgermodel.CompanyPayment{},
		payoutByTransfer: map[string]*ledgermodel.Payout{},
	}
	settle := &stubSettler{}
	r := &Reconciler{
		mainDao:   stubMain{},
		ledgerDao: ledger,
		auditDao:  stubAudit{},
		disburse:  settle,
	}
	return r, ledger, settle
}

func envelope(evtType string, data dto.EventData) *dto.EventEnvelope {
	return &dto.EventEnvelope{
		Event: dto.ProcessorEvent{
			EventID: "evt_1",
			Type:    evtType,
			Data:    data,
		},
		TraceID: "t1",
	}
}

// ---- dispatch tests ----

func TestHandleRoutesBatchChargeToSettler(t *testing.T) {
	r, ledger, settle := newDispatchReconciler()
	ledger.batchByCharge["ch_9"] = &ledgermodel.CompanyPayment{BatchID: 9001, Status: state.BatchProcessing}

	err := r.Handle(envelope(dto.EventChargeSucceeded, dto.EventData{
		Purpose:   dto.PurposeCompanyBatch,
		ChargeRef: "ch_9",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(settle.calls) != 1 || settle.calls[0].method != "confirm" || settle.calls[0].id != 9001 {
		t.Fatalf("settler calls = %+v, want one confirm for batch 9001", settle.calls)
	}
}

func TestHandleRoutesTransferPaid(t *testing.T) {
	r, ledger, settle := newDispatchReconciler()
	ledger.payoutByTransfer["tr_5"] = &ledgermodel.Payout{PayoutID: 7001, Status: state.PayoutProcessing}

	err := r.Handle(envelope(dto.EventTransferPaid, dto.EventData{TransferRef: "tr_5"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(settle.calls) != 1 || settle.calls[0].method != "complete" || settle.calls[0].id != 7001 {
		t.Fatalf("settler calls = %+v, want one complete for payout 7001", settle.calls)
	}
}

func TestHandleRoutesTransferFailedWithReason(t *testing.T) {
	r, ledger, settle := newDispatchReconciler()
	ledger.payoutByTransfer["tr_5"] = &ledgermodel.Payout{PayoutID: 7001, Status: state.PayoutProcessing}

	err := r.Handle(envelope(dto.EventTransferFailed, dto.EventData{TransferRef: "tr_5"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(settle.calls) != 1 || settle.calls[0].method != "fail" || settle.calls[0].id != 7001 {
		t.Fatalf("settler calls = %+v, want one fail for payout 7001", settle.calls)
	}
	if settle.calls[0].reason != "transfer failed" {
		t.Fatalf("empty reason must default, got %q", settle.calls[0].reason)
	}
}

func TestHandleUnknownEventTypeIsIgnored(t *testing.T) {
	r, _, settle := newDispatchReconciler()
	if err := r.Handle(envelope("payout.link.created", dto.EventData{})); err != nil {
		t.Fatalf("unknown event type must not error: %v", err)
	}
	if len(settle.calls) != 0 {
		t.Fatalf("unknown event type reached the settler: %+v", settle.calls)
	}
}

func TestHandleUnknownTransferRefErrors(t *testing.T) {
	r, _, _ := newDispatchReconciler()
	err := r.Handle(envelope(dto.EventTransferPaid, dto.EventData{TransferRef: "tr_missing"}))
	if err == nil {
		t.Fatal("a transfer event with no matching payout must error for redelivery")
	}
}

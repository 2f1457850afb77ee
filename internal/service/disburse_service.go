package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/dao"
	"affiliate-settlement-api/internal/idgen"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	mainmodel "affiliate-settlement-api/internal/model/main"
	"affiliate-settlement-api/internal/notify"
	"affiliate-settlement-api/internal/processor"
	"affiliate-settlement-api/internal/state"
	"affiliate-settlement-api/internal/utils"
)

// The dao dependencies behind narrow interfaces so flow tests can substitute
// in-memory doubles. *dao.LedgerDao and friends satisfy them structurally.
type disburseLedger interface {
	GetBatch(id uint64) (*ledgermodel.CompanyPayment, error)
	GetPayout(id uint64) (*ledgermodel.Payout, error)
	ListCommissionsByIDs(ids []uint64) ([]ledgermodel.Commission, error)
	InsertPayout(p *ledgermodel.Payout) error
	TransitionCommission(id uint64, from, to state.CommissionStatus, extra map[string]interface{}) error
	TransitionPayout(id uint64, from, to state.PayoutStatus, extra map[string]interface{}) error
	UndisbursedCommissions(affiliateID uint64) ([]ledgermodel.Commission, error)
	ApplyBatchSucceeded(b *ledgermodel.CompanyPayment, chargeRef string, paidAt time.Time) error
	ApplyPayoutCompleted(p *ledgermodel.Payout, now time.Time) error
	ApplyPayoutFailed(p *ledgermodel.Payout, reason string) error
}

type disburseMain interface {
	GetAffiliate(id uint64) (*mainmodel.Affiliate, error)
	UpdateAffiliateAccountStatus(id uint64, status state.AccountStatus) error
}

type treasuryAppender interface {
	Append(txType int8, amount decimal.Decimal, currency, refType string, refID uint64) error
}

type auditWriter interface {
	Write(entityType string, entityID uint64, eventID, from, to, note, traceID string)
}

// DisburseService fans a confirmed batch out into per-affiliate payout
// transfers, and owns the payout side of the event state machine
// (complete / fail / compensating reversal).
type DisburseService struct {
	mainDao   disburseMain
	ledgerDao disburseLedger
	treasury  treasuryAppender
	audit     auditWriter
	proc      processor.Client
	retry     retryQueue
}

func NewDisburseService(proc processor.Client) *DisburseService {
	return &DisburseService{
		mainDao:   dao.NewMainDao(),
		ledgerDao: dao.NewLedgerDao(),
		treasury:  dao.NewTreasuryDao(),
		audit:     dao.NewAuditDao(),
		proc:      proc,
		retry:     redisRetryQueue{},
	}
}

// ConfirmBatchPaid applies the batch-succeeded effects: batch terminal state,
// commissions company-paid, reconciliation milestones, treasury entries, then
// disbursement. Both the synchronous charge path and the webhook path land
// here, which is what keeps the two paths convergent. The entity-group writes
// commit in one transaction, and a replay for an already-succeeded batch runs
// them again so a crash between the batch flip and the derived writes heals
// on the next delivery.
func (s *DisburseService) ConfirmBatchPaid(batchID uint64, chargeRef, eventID, traceID string) error {
	batch, err := s.ledgerDao.GetBatch(batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("batch %d not found", batchID)
	}
	if batch.Status == state.BatchFailed {
		log.Printf("[DISBURSE] batch %d already failed, ignoring success event %s", batchID, eventID)
		return nil
	}

	firstApply := batch.Status != state.BatchSucceeded
	paidAt := time.Now()
	if batch.PaidAt != nil {
		paidAt = *batch.PaidAt
	}
	if err := s.ledgerDao.ApplyBatchSucceeded(batch, chargeRef, paidAt); err != nil {
		return err
	}
	if firstApply {
		s.audit.Write(ledgermodel.RefBatch, batchID, eventID,
			batch.Status.String(), state.BatchSucceeded.String(), "charge confirmed", traceID)
	} else {
		log.Printf("[DISBURSE] batch %d success re-applied (event %s)", batchID, eventID)
	}

	// money in, and the fee slice recognized as platform revenue
	if err := s.treasury.Append(ledgermodel.TreasuryCommissionReceived,
		batch.TotalAmount, batch.Currency, ledgermodel.RefBatch, batchID); err != nil {
		log.Printf("[DISBURSE] treasury inflow for batch %d: %v", batchID, err)
	}
	if batch.FeeAmount.Sign() > 0 {
		if err := s.treasury.Append(ledgermodel.TreasuryPlatformFee,
			batch.FeeAmount, batch.Currency, ledgermodel.RefBatch, batchID); err != nil {
			log.Printf("[DISBURSE] treasury fee for batch %d: %v", batchID, err)
		}
	}

	return s.DisburseForBatch(batchID, eventID, traceID)
}

// payGroup keys disbursement grouping. One transfer carries one currency, so
// an affiliate earning in two currencies gets two payouts.
type payGroup struct {
	affiliateID uint64
	currency    string
}

// DisburseForBatch groups the batch's paid, payout-free commissions by
// affiliate and currency and issues one transfer per eligible group. Groups
// are processed sequentially and independently: one affiliate's failure never
// touches a sibling's transfer.
func (s *DisburseService) DisburseForBatch(batchID uint64, eventID, traceID string) error {
	batch, err := s.ledgerDao.GetBatch(batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("batch %d not found", batchID)
	}

	rows, err := s.ledgerDao.ListCommissionsByIDs(batch.CommissionIDs)
	if err != nil {
		return err
	}

	groups := map[payGroup][]ledgermodel.Commission{}
	for _, c := range rows {
		if c.Status != state.CommissionApproved || c.CompanyPayStat != state.CompanyPayPaid || c.PayoutID != nil {
			continue // already disbursed, reverted rows get picked up on replay
		}
		key := payGroup{affiliateID: c.AffiliateID, currency: c.Currency}
		groups[key] = append(groups[key], c)
	}
	if len(groups) == 0 {
		log.Printf("[DISBURSE] batch %d: nothing to disburse (event %s)", batchID, eventID)
		return nil
	}

	var firstErr error
	for key, group := range groups {
		if err := s.disburseGroup(key.affiliateID, group, &batchID, eventID, traceID); err != nil {
			log.Printf("[DISBURSE] batch %d affiliate %d group failed: %v", batchID, key.affiliateID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// disburseGroup issues one transfer for one affiliate's single-currency
// commission group. Unverified accounts are skipped, not failed: the
// commissions stay company-paid and undisbursed, and the affiliate enters the
// retry set.
func (s *DisburseService) disburseGroup(affiliateID uint64, group []ledgermodel.Commission, batchID *uint64, eventID, traceID string) error {
	affiliate, err := s.mainDao.GetAffiliate(affiliateID)
	if err != nil {
		return err
	}
	if affiliate == nil {
		return fmt.Errorf("affiliate %d not found", affiliateID)
	}
	if affiliate.AccountStatus != state.AccountVerified || affiliate.PayoutAccountID == nil {
		log.Printf("[DISBURSE] affiliate %d account %s, skipping %d commissions until verified",
			affiliateID, affiliate.AccountStatus, len(group))
		if err := s.retry.Add(affiliateID); err != nil {
			log.Printf("[DISBURSE] retry set add for affiliate %d: %v", affiliateID, err)
		}
		return nil
	}

	amount := decimal.Zero
	ids := make(ledgermodel.IDList, 0, len(group))
	currency := group[0].Currency
	for _, c := range group {
		amount = amount.Add(c.PayoutAmount)
		ids = append(ids, c.CommissionID)
	}

	payout := &ledgermodel.Payout{
		PayoutID:      idgen.New(),
		AffiliateID:   affiliateID,
		BatchID:       batchID,
		Amount:        amount,
		Currency:      currency,
		CommissionIDs: ids,
		Status:        state.PayoutScheduled,
	}
	if err := s.ledgerDao.InsertPayout(payout); err != nil {
		return err
	}
	// reference the payout before the transfer goes out so a crash in between
	// leaves rows that the failure reversal or a replay can find
	for _, cid := range ids {
		if err := s.ledgerDao.TransitionCommission(cid, state.CommissionApproved, state.CommissionPendingPayout,
			map[string]interface{}{"payout_id": payout.PayoutID}); err != nil {
			log.Printf("[DISBURSE] commission %d pending_payout transition: %v", cid, err)
		}
	}

	resp, err := s.proc.CreateTransfer(context.Background(), processor.TransferReq{
		ReferenceID: payout.PayoutID,
		AccountRef:  *affiliate.PayoutAccountID,
		Amount:      amount,
		Currency:    currency,
	})
	if err != nil || (resp != nil && resp.Declined) {
		reason := "transfer request failed"
		if err != nil {
			reason = err.Error()
		} else if resp.Reason != "" {
			reason = resp.Reason
		}
		// same compensating reversal as a transfer.failed event
		return s.FailPayout(payout.PayoutID, reason, eventID, traceID)
	}

	if err := s.ledgerDao.TransitionPayout(payout.PayoutID, state.PayoutScheduled, state.PayoutProcessing,
		map[string]interface{}{"transfer_ref": utils.PtrString(resp.TransferRef)}); err != nil &&
		!errors.Is(err, dao.ErrStaleTransition) {
		return err
	}

	if err := s.treasury.Append(ledgermodel.TreasuryAffiliatePayout,
		amount.Neg(), currency, ledgermodel.RefPayout, payout.PayoutID); err != nil {
		log.Printf("[DISBURSE] treasury outflow for payout %d: %v", payout.PayoutID, err)
	}
	s.audit.Write(ledgermodel.RefPayout, payout.PayoutID, eventID,
		state.PayoutScheduled.String(), state.PayoutProcessing.String(),
		fmt.Sprintf("transfer %s issued for affiliate %d, amount %s %s", resp.TransferRef, affiliateID, amount, currency),
		traceID)
	log.Printf("[DISBURSE] payout %d issued: affiliate=%d amount=%s %s commissions=%d",
		payout.PayoutID, affiliateID, amount, currency, len(ids))
	return nil
}

// CompletePayout applies "transfer paid": payout terminal, commissions paid,
// affiliate_paid milestone, all in one transaction. A replay for an
// already-completed payout re-runs the derived writes so partial state heals.
func (s *DisburseService) CompletePayout(payoutID uint64, eventID, traceID string) error {
	payout, err := s.ledgerDao.GetPayout(payoutID)
	if err != nil {
		return err
	}
	if payout == nil {
		return fmt.Errorf("payout %d not found", payoutID)
	}
	if payout.Status == state.PayoutFailed {
		// terminal-state protection: a late success cannot resurrect a failure
		log.Printf("[DISBURSE] payout %d is failed, ignoring paid event %s", payoutID, eventID)
		return nil
	}

	firstApply := payout.Status != state.PayoutCompleted
	if err := s.ledgerDao.ApplyPayoutCompleted(payout, time.Now()); err != nil {
		return err
	}
	if !firstApply {
		log.Printf("[DISBURSE] payout %d completion re-applied (event %s)", payoutID, eventID)
		return nil
	}

	s.audit.Write(ledgermodel.RefPayout, payoutID, eventID,
		payout.Status.String(), state.PayoutCompleted.String(), "transfer paid", traceID)
	log.Printf("[DISBURSE] payout %d completed (event %s)", payoutID, eventID)
	return nil
}

// FailPayout applies "transfer failed" and the compensating reversal: the
// commissions drop back to approved with the payout reference cleared, and
// the affiliate enters the retry set so the sweep re-disburses them.
func (s *DisburseService) FailPayout(payoutID uint64, reason, eventID, traceID string) error {
	payout, err := s.ledgerDao.GetPayout(payoutID)
	if err != nil {
		return err
	}
	if payout == nil {
		return fmt.Errorf("payout %d not found", payoutID)
	}
	if payout.Status == state.PayoutCompleted {
		// terminal-state protection: a completed payout must not regress
		log.Printf("[DISBURSE] payout %d is completed, ignoring failed event %s", payoutID, eventID)
		return nil
	}

	firstApply := payout.Status != state.PayoutFailed
	if err := s.ledgerDao.ApplyPayoutFailed(payout, reason); err != nil {
		return err
	}

	// the outflow line was appended when the transfer went out; net it back
	if payout.TransferRef != nil {
		if err := s.treasury.Append(ledgermodel.TreasuryPayoutReversal,
			payout.Amount, payout.Currency, ledgermodel.RefPayout, payoutID); err != nil {
			log.Printf("[DISBURSE] treasury reversal for payout %d: %v", payoutID, err)
		}
	}

	// reverted commissions are only reachable through the sweep, so the
	// affiliate must re-enter the retry set
	if err := s.retry.Add(payout.AffiliateID); err != nil {
		log.Printf("[DISBURSE] retry set add for affiliate %d: %v", payout.AffiliateID, err)
	}

	if !firstApply {
		log.Printf("[DISBURSE] payout %d failure re-applied (event %s)", payoutID, eventID)
		return nil
	}

	s.audit.Write(ledgermodel.RefPayout, payoutID, eventID,
		payout.Status.String(), state.PayoutFailed.String(), reason, traceID)
	notify.Alert("Affiliate transfer failed",
		fmt.Sprintf("payout %d, affiliate %d, amount %s %s: %s",
			payoutID, payout.AffiliateID, payout.Amount, payout.Currency, reason))
	log.Printf("[DISBURSE] payout %d failed, %d commissions reverted: %s", payoutID, len(payout.CommissionIDs), reason)
	return nil
}

// SweepAffiliate retries disbursement for one affiliate's company-paid,
// undisbursed commissions, one transfer per currency. Used after account
// verification and by the periodic sweep.
func (s *DisburseService) SweepAffiliate(affiliateID uint64) error {
	affiliate, err := s.mainDao.GetAffiliate(affiliateID)
	if err != nil {
		return err
	}
	if affiliate == nil {
		s.retry.Remove(affiliateID)
		return nil
	}
	if affiliate.AccountStatus != state.AccountVerified {
		// the account.updated webhook can be missed; ask the processor directly
		if affiliate.PayoutAccountID == nil {
			return nil // stays in the retry set
		}
		status, err := s.proc.GetAccountStatus(context.Background(), *affiliate.PayoutAccountID)
		if err != nil || status == nil || status.Status != "verified" {
			return nil // stays in the retry set
		}
		if err := s.mainDao.UpdateAffiliateAccountStatus(affiliateID, state.AccountVerified); err != nil {
			return err
		}
		affiliate.AccountStatus = state.AccountVerified
		log.Printf("[SWEEP] affiliate %d verified per processor, proceeding", affiliateID)
	}
	rows, err := s.ledgerDao.UndisbursedCommissions(affiliateID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		s.retry.Remove(affiliateID)
		return nil
	}
	byCurrency := map[string][]ledgermodel.Commission{}
	for _, c := range rows {
		byCurrency[c.Currency] = append(byCurrency[c.Currency], c)
	}
	for _, group := range byCurrency {
		if err := s.disburseGroup(affiliateID, group, nil, "", ""); err != nil {
			return err
		}
	}
	s.retry.Remove(affiliateID)
	return nil
}

// RetrySweep drains the retry set. Runs on a ticker and on demand.
func (s *DisburseService) RetrySweep() {
	ids, err := s.retry.Members()
	if err != nil {
		log.Printf("[SWEEP] read retry set: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}
	log.Printf("[SWEEP] retrying disbursement for %d affiliates", len(ids))
	for _, affiliateID := range ids {
		if err := s.SweepAffiliate(affiliateID); err != nil {
			log.Printf("[SWEEP] affiliate %d: %v", affiliateID, err)
		}
	}
}

// StartSweeper launches the periodic retry sweep.
func (s *DisburseService) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		for range ticker.C {
			s.RetrySweep()
		}
	}()
}

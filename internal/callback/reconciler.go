// Package callback is the event reconciler: it consumes payment-lifecycle
// events from the processor and applies the matching state transitions to
// batches, payouts, commissions and reconciliation rows. Every handler loads
// current state first and no-ops when the transition is already applied, so
// at-least-once, out-of-order delivery is safe.
package callback

import (
	"fmt"
	"log"
	"time"

	"affiliate-settlement-api/internal/dao"
	"affiliate-settlement-api/internal/dto"
	"affiliate-settlement-api/internal/idgen"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	mainmodel "affiliate-settlement-api/internal/model/main"
	"affiliate-settlement-api/internal/service"
	"affiliate-settlement-api/internal/state"
	"affiliate-settlement-api/internal/utils"
)

// The dependencies behind narrow interfaces so dispatch tests can substitute
// doubles. The concrete DAOs and *service.DisburseService satisfy them.
type reconLedger interface {
	GetBatchByChargeRef(ref string) (*ledgermodel.CompanyPayment, error)
	GetPayoutByTransferRef(ref string) (*ledgermodel.Payout, error)
	GetCommission(id uint64) (*ledgermodel.Commission, error)
	TransitionBatch(id uint64, from, to state.BatchStatus, extra map[string]interface{}) error
	TransitionPayout(id uint64, from, to state.PayoutStatus, extra map[string]interface{}) error
	ReleaseCommissionsFromBatch(batchID uint64) error
	GetReconByPayment(paymentID uint64) (*ledgermodel.Reconciliation, error)
	InsertRecon(rec *ledgermodel.Reconciliation) error
	SaveRecon(rec *ledgermodel.Reconciliation) error
}

type reconMain interface {
	GetCustomerPaymentByChargeRef(ref string) (*mainmodel.CustomerPayment, error)
	UpdateCustomerPayment(id uint64, fields map[string]interface{}) error
	GetCompany(id uint64) (*mainmodel.Company, error)
	CreateDeal(d *mainmodel.Deal) error
	GetAffiliateByAccountRef(accountRef string) (*mainmodel.Affiliate, error)
	UpdateAffiliateAccountStatus(id uint64, status state.AccountStatus) error
}

type auditWriter interface {
	Write(entityType string, entityID uint64, eventID, from, to, note, traceID string)
}

// settler is the payout side of the state machine, owned by the disburse
// service.
type settler interface {
	ConfirmBatchPaid(batchID uint64, chargeRef, eventID, traceID string) error
	CompletePayout(payoutID uint64, eventID, traceID string) error
	FailPayout(payoutID uint64, reason, eventID, traceID string) error
	SweepAffiliate(affiliateID uint64) error
}

type Reconciler struct {
	mainDao   reconMain
	ledgerDao reconLedger
	auditDao  auditWriter
	disburse  settler
}

func NewReconciler(disburse *service.DisburseService) *Reconciler {
	return &Reconciler{
		mainDao:   dao.NewMainDao(),
		ledgerDao: dao.NewLedgerDao(),
		auditDao:  dao.NewAuditDao(),
		disburse:  disburse,
	}
}

// Handle dispatches one event by type. Unrecognized types are logged and
// ignored, never errored: the processor adds types faster than we consume
// them and an unknown type must not poison the queue.
func (r *Reconciler) Handle(env *dto.EventEnvelope) error {
	evt := &env.Event
	switch evt.Type {
	case dto.EventChargeSucceeded:
		return r.chargeSucceeded(evt, env.TraceID)
	case dto.EventChargeFailed:
		return r.chargeFailed(evt, env.TraceID)
	case dto.EventChargeRefunded:
		return r.chargeRefunded(evt, env.TraceID)
	case dto.EventTransferCreated:
		return r.transferCreated(evt, env.TraceID)
	case dto.EventTransferPaid:
		return r.transferPaid(evt, env.TraceID)
	case dto.EventTransferFailed:
		return r.transferFailed(evt, env.TraceID)
	case dto.EventAccountUpdated:
		return r.accountUpdated(evt, env.TraceID)
	default:
		log.Printf("[RECONCILE] unsupported event type %q (id %s), ignoring", evt.Type, evt.EventID)
		return nil
	}
}

// chargeSucceeded covers both charge flavors: an originating customer payment
// and a company commission batch.
func (r *Reconciler) chargeSucceeded(evt *dto.ProcessorEvent, traceID string) error {
	switch evt.Data.Purpose {
	case dto.PurposeCompanyBatch:
		batch, err := r.ledgerDao.GetBatchByChargeRef(evt.Data.ChargeRef)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("no batch for charge_ref %s", evt.Data.ChargeRef)
		}
		return r.disburse.ConfirmBatchPaid(batch.BatchID, evt.Data.ChargeRef, evt.EventID, traceID)
	case dto.PurposeCustomerPayment:
		return r.customerPaid(evt, traceID)
	default:
		log.Printf("[RECONCILE] charge.succeeded with unknown purpose %q (event %s)", evt.Data.Purpose, evt.EventID)
		return nil
	}
}

func (r *Reconciler) customerPaid(evt *dto.ProcessorEvent, traceID string) error {
	payment, err := r.mainDao.GetCustomerPaymentByChargeRef(evt.Data.ChargeRef)
	if err != nil {
		return err
	}
	if payment == nil {
		return fmt.Errorf("no customer payment for charge_ref %s", evt.Data.ChargeRef)
	}
	if payment.Status == mainmodel.CustomerPaySucceeded {
		log.Printf("[RECONCILE] payment %d already succeeded, no-op (event %s)", payment.PaymentID, evt.EventID)
		return nil
	}

	now := time.Now()
	if err := r.mainDao.UpdateCustomerPayment(payment.PaymentID, map[string]interface{}{
		"status":  mainmodel.CustomerPaySucceeded,
		"paid_at": utils.PtrTime(now),
	}); err != nil {
		return err
	}

	rec, err := r.ledgerDao.GetReconByPayment(payment.PaymentID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &ledgermodel.Reconciliation{
			ReconID:           idgen.New(),
			CustomerPaymentID: payment.PaymentID,
		}
		rec.CustomerPaid = true
		rec.Recompute(now)
		if err := r.ledgerDao.InsertRecon(rec); err != nil {
			return err
		}
	} else if !rec.CustomerPaid {
		rec.CustomerPaid = true
		rec.Recompute(now)
		if err := r.ledgerDao.SaveRecon(rec); err != nil {
			return err
		}
	}

	// companies can opt in to deal creation straight from a tracked payment;
	// the payment must carry the partnership from its tracking link
	company, err := r.mainDao.GetCompany(payment.CompanyID)
	if err == nil && company != nil && company.AutoDealCreate && payment.DealID == nil && payment.PartnershipID != nil {
		deal := &mainmodel.Deal{
			DealID:            idgen.New(),
			PartnershipID:     *payment.PartnershipID,
			CustomerPaymentID: &payment.PaymentID,
			Value:             payment.Amount,
			Currency:          payment.Currency,
			ClosedAt:          utils.PtrTime(now),
		}
		if err := r.mainDao.CreateDeal(deal); err != nil {
			log.Printf("[RECONCILE] auto deal create for payment %d: %v", payment.PaymentID, err)
		} else {
			_ = r.mainDao.UpdateCustomerPayment(payment.PaymentID, map[string]interface{}{"deal_id": deal.DealID})
			rec.DealID = &deal.DealID
			rec.DealCreated = true
			rec.Recompute(now)
			if err := r.ledgerDao.SaveRecon(rec); err != nil {
				log.Printf("[RECONCILE] recon deal link for payment %d: %v", payment.PaymentID, err)
			}
		}
	}

	r.auditDao.Write(ledgermodel.RefPayment, payment.PaymentID, evt.EventID,
		"pending", "succeeded", "customer charge confirmed", traceID)
	return nil
}

// chargeFailed marks the owning entity failed. Batch commissions are released
// untouched so they stay eligible for re-batching.
func (r *Reconciler) chargeFailed(evt *dto.ProcessorEvent, traceID string) error {
	switch evt.Data.Purpose {
	case dto.PurposeCompanyBatch:
		batch, err := r.ledgerDao.GetBatchByChargeRef(evt.Data.ChargeRef)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("no batch for charge_ref %s", evt.Data.ChargeRef)
		}
		if batch.Status.Terminal() {
			log.Printf("[RECONCILE] batch %d already terminal, ignoring failure event %s", batch.BatchID, evt.EventID)
			return nil
		}
		reason := evt.Data.Reason
		if reason == "" {
			reason = "charge failed"
		}
		if err := r.ledgerDao.TransitionBatch(batch.BatchID, batch.Status, state.BatchFailed,
			map[string]interface{}{"failure_reason": utils.PtrString(reason)}); err != nil {
			return err
		}
		if err := r.ledgerDao.ReleaseCommissionsFromBatch(batch.BatchID); err != nil {
			return err
		}
		r.auditDao.Write(ledgermodel.RefBatch, batch.BatchID, evt.EventID,
			batch.Status.String(), state.BatchFailed.String(), reason, traceID)
		return nil
	case dto.PurposeCustomerPayment:
		payment, err := r.mainDao.GetCustomerPaymentByChargeRef(evt.Data.ChargeRef)
		if err != nil || payment == nil {
			return err
		}
		if payment.Status != mainmodel.CustomerPayPending {
			return nil
		}
		return r.mainDao.UpdateCustomerPayment(payment.PaymentID,
			map[string]interface{}{"status": mainmodel.CustomerPayFailed})
	default:
		log.Printf("[RECONCILE] charge.failed with unknown purpose %q (event %s)", evt.Data.Purpose, evt.EventID)
		return nil
	}
}

// chargeRefunded records the refund on the customer payment. Clawback of an
// already-paid commission is deliberately manual: the linked commission is
// flagged for review, never reversed automatically.
func (r *Reconciler) chargeRefunded(evt *dto.ProcessorEvent, traceID string) error {
	payment, err := r.mainDao.GetCustomerPaymentByChargeRef(evt.Data.ChargeRef)
	if err != nil {
		return err
	}
	if payment == nil {
		return fmt.Errorf("no customer payment for charge_ref %s", evt.Data.ChargeRef)
	}
	if payment.Status == mainmodel.CustomerPayRefunded {
		log.Printf("[RECONCILE] payment %d already refunded, no-op (event %s)", payment.PaymentID, evt.EventID)
		return nil
	}

	if err := r.mainDao.UpdateCustomerPayment(payment.PaymentID, map[string]interface{}{
		"status":          mainmodel.CustomerPayRefunded,
		"refunded_amount": evt.Data.Amount,
	}); err != nil {
		return err
	}
	r.auditDao.Write(ledgermodel.RefPayment, payment.PaymentID, evt.EventID,
		"succeeded", "refunded", fmt.Sprintf("refund %s %s", evt.Data.Amount, evt.Data.Currency), traceID)

	if rec, err := r.ledgerDao.GetReconByPayment(payment.PaymentID); err == nil && rec != nil && rec.CommissionID != nil {
		if c, err := r.ledgerDao.GetCommission(*rec.CommissionID); err == nil && c != nil && c.Status == state.CommissionPaid {
			r.auditDao.Write(ledgermodel.RefCommission, c.CommissionID, evt.EventID,
				c.Status.String(), c.Status.String(),
				"refund received after payout: flagged for manual review", traceID)
			log.Printf("[RECONCILE] ⚠️ commission %d already paid out, refund needs manual review", c.CommissionID)
		}
	}
	return nil
}

// transferCreated only advances scheduled -> processing; it may legitimately
// arrive after transfer.paid and must then be ignored.
func (r *Reconciler) transferCreated(evt *dto.ProcessorEvent, traceID string) error {
	payout, err := r.ledgerDao.GetPayoutByTransferRef(evt.Data.TransferRef)
	if err != nil {
		return err
	}
	if payout == nil {
		return fmt.Errorf("no payout for transfer_ref %s", evt.Data.TransferRef)
	}
	if payout.Status != state.PayoutScheduled {
		log.Printf("[RECONCILE] payout %d is %s, ignoring transfer.created (event %s)",
			payout.PayoutID, payout.Status, evt.EventID)
		return nil
	}
	if err := r.ledgerDao.TransitionPayout(payout.PayoutID, state.PayoutScheduled, state.PayoutProcessing, nil); err != nil {
		if err == dao.ErrStaleTransition {
			return nil
		}
		return err
	}
	r.auditDao.Write(ledgermodel.RefPayout, payout.PayoutID, evt.EventID,
		state.PayoutScheduled.String(), state.PayoutProcessing.String(), "transfer created", traceID)
	return nil
}

func (r *Reconciler) transferPaid(evt *dto.ProcessorEvent, traceID string) error {
	payout, err := r.ledgerDao.GetPayoutByTransferRef(evt.Data.TransferRef)
	if err != nil {
		return err
	}
	if payout == nil {
		return fmt.Errorf("no payout for transfer_ref %s", evt.Data.TransferRef)
	}
	return r.disburse.CompletePayout(payout.PayoutID, evt.EventID, traceID)
}

func (r *Reconciler) transferFailed(evt *dto.ProcessorEvent, traceID string) error {
	payout, err := r.ledgerDao.GetPayoutByTransferRef(evt.Data.TransferRef)
	if err != nil {
		return err
	}
	if payout == nil {
		return fmt.Errorf("no payout for transfer_ref %s", evt.Data.TransferRef)
	}
	reason := evt.Data.Reason
	if reason == "" {
		reason = "transfer failed"
	}
	return r.disburse.FailPayout(payout.PayoutID, reason, evt.EventID, traceID)
}

// accountUpdated records the new account status. Verification does not
// retroactively disburse by itself; it feeds the observable retry sweep.
func (r *Reconciler) accountUpdated(evt *dto.ProcessorEvent, traceID string) error {
	affiliate, err := r.mainDao.GetAffiliateByAccountRef(evt.Data.AccountRef)
	if err != nil {
		return err
	}
	if affiliate == nil {
		log.Printf("[RECONCILE] no affiliate for account_ref %s, ignoring (event %s)", evt.Data.AccountRef, evt.EventID)
		return nil
	}

	newStatus := parseAccountStatus(evt.Data.AccountStatus)
	if affiliate.AccountStatus == newStatus {
		return nil
	}
	if err := r.mainDao.UpdateAffiliateAccountStatus(affiliate.AffiliateID, newStatus); err != nil {
		return err
	}
	r.auditDao.Write("affiliate", affiliate.AffiliateID, evt.EventID,
		affiliate.AccountStatus.String(), newStatus.String(), "payout account status changed", traceID)

	if newStatus == state.AccountVerified {
		// pick up any commissions that were skipped while unverified
		if err := r.disburse.SweepAffiliate(affiliate.AffiliateID); err != nil {
			log.Printf("[RECONCILE] post-verify sweep for affiliate %d: %v", affiliate.AffiliateID, err)
		}
	}
	return nil
}

func parseAccountStatus(s string) state.AccountStatus {
	switch s {
	case "verified":
		return state.AccountVerified
	case "pending":
		return state.AccountPendingVerify
	case "disabled":
		return state.AccountDisabled
	default:
		return state.AccountUnverified
	}
}

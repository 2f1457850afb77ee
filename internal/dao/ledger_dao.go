package dao

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"affiliate-settlement-api/internal/dal"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	"affiliate-settlement-api/internal/state"
)

// LedgerDao owns the commission, batch, payout and reconciliation tables.
// Status writes are conditional on the expected prior status: concurrent
// handlers race through the database, not through in-process locks.
type LedgerDao struct{}

func NewLedgerDao() *LedgerDao { return &LedgerDao{} }

// ErrStaleTransition reports a conditional update that matched no row: the
// entity was not in the expected prior state. Callers treat it as "already
// applied or concurrent winner", not as data corruption.
var ErrStaleTransition = errors.New("stale transition: entity not in expected status")

// ---- commissions ----

func (r *LedgerDao) InsertCommission(c *ledgermodel.Commission) error {
	return dal.LedgerDB.Create(c).Error
}

func (r *LedgerDao) GetCommission(id uint64) (*ledgermodel.Commission, error) {
	var c ledgermodel.Commission
	err := dal.LedgerDB.Where("commission_id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *LedgerDao) GetCommissionByDeal(dealID uint64) (*ledgermodel.Commission, error) {
	var c ledgermodel.Commission
	err := dal.LedgerDB.Where("deal_id = ?", dealID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *LedgerDao) ListCommissions(companyID, affiliateID uint64, status *int8, limit, offset int) ([]ledgermodel.Commission, int64, error) {
	q := dal.LedgerDB.Model(&ledgermodel.Commission{})
	if companyID != 0 {
		q = q.Where("company_id = ?", companyID)
	}
	if affiliateID != 0 {
		q = q.Where("affiliate_id = ?", affiliateID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []ledgermodel.Commission
	if limit <= 0 {
		limit = 50
	}
	err := q.Order("commission_id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

func (r *LedgerDao) ListCommissionsByIDs(ids []uint64) ([]ledgermodel.Commission, error) {
	var out []ledgermodel.Commission
	err := dal.LedgerDB.Where("commission_id IN ?", ids).Find(&out).Error
	return out, err
}

// TransitionCommission moves one commission from -> to, guarded by the
// transition table and a conditional write on the prior status.
func (r *LedgerDao) TransitionCommission(id uint64, from, to state.CommissionStatus, extra map[string]interface{}) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("commission %d: illegal transition %s -> %s", id, from, to)
	}
	fields := map[string]interface{}{
		"status":      to,
		"update_time": time.Now(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	res := dal.LedgerDB.Model(&ledgermodel.Commission{}).
		Where("commission_id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// ---- batches ----

func (r *LedgerDao) InsertBatch(b *ledgermodel.CompanyPayment) error {
	return dal.LedgerDB.Create(b).Error
}

func (r *LedgerDao) GetBatch(id uint64) (*ledgermodel.CompanyPayment, error) {
	var b ledgermodel.CompanyPayment
	err := dal.LedgerDB.Where("batch_id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *LedgerDao) GetBatchByChargeRef(ref string) (*ledgermodel.CompanyPayment, error) {
	var b ledgermodel.CompanyPayment
	err := dal.LedgerDB.Where("charge_ref = ?", ref).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *LedgerDao) ListBatches(companyID uint64, limit, offset int) ([]ledgermodel.CompanyPayment, int64, error) {
	q := dal.LedgerDB.Model(&ledgermodel.CompanyPayment{})
	if companyID != 0 {
		q = q.Where("company_id = ?", companyID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []ledgermodel.CompanyPayment
	if limit <= 0 {
		limit = 50
	}
	err := q.Order("batch_id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

func (r *LedgerDao) TransitionBatch(id uint64, from, to state.BatchStatus, extra map[string]interface{}) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("batch %d: illegal transition %s -> %s", id, from, to)
	}
	fields := map[string]interface{}{
		"status":      to,
		"update_time": time.Now(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	res := dal.LedgerDB.Model(&ledgermodel.CompanyPayment{}).
		Where("batch_id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// ReserveCommissionsForBatch is the single atomic read-modify-write that moves
// a commission set out of the poolable "unpaid" state. All rows must be
// approved, company-pay pending, batch-free and owned by the company; any
// mismatch rolls the whole reservation back.
func (r *LedgerDao) ReserveCommissionsForBatch(companyID, batchID uint64, ids []uint64) ([]ledgermodel.Commission, error) {
	var reserved []ledgermodel.Commission
	err := dal.LedgerDB.Transaction(func(tx *gorm.DB) error {
		var rows []ledgermodel.Commission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("commission_id IN ?", ids).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) != len(ids) {
			return fmt.Errorf("commission set incomplete: want %d got %d", len(ids), len(rows))
		}
		for _, c := range rows {
			if c.CompanyID != companyID {
				return fmt.Errorf("commission %d not owned by company %d", c.CommissionID, companyID)
			}
			if c.Status != state.CommissionApproved {
				return fmt.Errorf("commission %d not approved", c.CommissionID)
			}
			if c.CompanyPayStat != state.CompanyPayPending || c.BatchID != nil {
				return fmt.Errorf("commission %d already in a batch", c.CommissionID)
			}
		}
		res := tx.Model(&ledgermodel.Commission{}).
			Where("commission_id IN ? AND company_pay_status = ? AND batch_id IS NULL", ids, state.CompanyPayPending).
			Updates(map[string]interface{}{
				"company_pay_status": state.CompanyPayProcessing,
				"batch_id":           batchID,
				"update_time":        time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			// lost a race to a concurrent batch
			return fmt.Errorf("commission set changed while reserving: want %d moved %d", len(ids), res.RowsAffected)
		}
		reserved = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// ReleaseCommissionsFromBatch undoes a reservation after a failed charge:
// company-pay back to pending and the batch reference cleared. Commission
// status is untouched so the rows stay eligible for a new batch.
func (r *LedgerDao) ReleaseCommissionsFromBatch(batchID uint64) error {
	return dal.LedgerDB.Model(&ledgermodel.Commission{}).
		Where("batch_id = ? AND company_pay_status = ?", batchID, state.CompanyPayProcessing).
		Updates(map[string]interface{}{
			"company_pay_status": state.CompanyPayPending,
			"batch_id":           nil,
			"update_time":        time.Now(),
		}).Error
}

// ---- payouts ----

func (r *LedgerDao) InsertPayout(p *ledgermodel.Payout) error {
	return dal.LedgerDB.Create(p).Error
}

func (r *LedgerDao) GetPayout(id uint64) (*ledgermodel.Payout, error) {
	var p ledgermodel.Payout
	err := dal.LedgerDB.Where("payout_id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *LedgerDao) GetPayoutByTransferRef(ref string) (*ledgermodel.Payout, error) {
	var p ledgermodel.Payout
	err := dal.LedgerDB.Where("transfer_ref = ?", ref).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *LedgerDao) ListPayouts(affiliateID, batchID uint64, status *int8, limit, offset int) ([]ledgermodel.Payout, int64, error) {
	q := dal.LedgerDB.Model(&ledgermodel.Payout{})
	if affiliateID != 0 {
		q = q.Where("affiliate_id = ?", affiliateID)
	}
	if batchID != 0 {
		q = q.Where("batch_id = ?", batchID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []ledgermodel.Payout
	if limit <= 0 {
		limit = 50
	}
	err := q.Order("payout_id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

func (r *LedgerDao) TransitionPayout(id uint64, from, to state.PayoutStatus, extra map[string]interface{}) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("payout %d: illegal transition %s -> %s", id, from, to)
	}
	fields := map[string]interface{}{
		"status":      to,
		"update_time": time.Now(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	res := dal.LedgerDB.Model(&ledgermodel.Payout{}).
		Where("payout_id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// ApplyBatchSucceeded commits the full batch-paid entity group in one
// transaction: the batch row (unless already succeeded), its commissions to
// company-paid, and the reconciliation milestones. Every write is condition
// checked, so replaying the whole group after a partial failure re-applies
// exactly the missing pieces.
func (r *LedgerDao) ApplyBatchSucceeded(b *ledgermodel.CompanyPayment, chargeRef string, paidAt time.Time) error {
	return dal.LedgerDB.Transaction(func(tx *gorm.DB) error {
		if b.Status != state.BatchSucceeded {
			if !b.Status.CanTransition(state.BatchSucceeded) {
				return fmt.Errorf("batch %d: illegal transition %s -> succeeded", b.BatchID, b.Status)
			}
			fields := map[string]interface{}{
				"status":      state.BatchSucceeded,
				"paid_at":     paidAt,
				"update_time": time.Now(),
			}
			if chargeRef != "" {
				fields["charge_ref"] = chargeRef
			}
			// zero rows means a concurrent handler already moved it; the
			// derived writes below still run
			if err := tx.Model(&ledgermodel.CompanyPayment{}).
				Where("batch_id = ? AND status = ?", b.BatchID, b.Status).
				Updates(fields).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&ledgermodel.Commission{}).
			Where("batch_id = ? AND company_pay_status = ?", b.BatchID, state.CompanyPayProcessing).
			Updates(map[string]interface{}{
				"company_pay_status": state.CompanyPayPaid,
				"company_paid_at":    paidAt,
				"update_time":        time.Now(),
			}).Error; err != nil {
			return err
		}

		for _, cid := range b.CommissionIDs {
			var rec ledgermodel.Reconciliation
			err := tx.Where("commission_id = ?", cid).First(&rec).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if rec.CommissionApproved && rec.CompanyPaid {
				continue
			}
			rec.CommissionApproved = true
			rec.CompanyPaid = true
			rec.Recompute(time.Now())
			if err := tx.Save(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyPayoutCompleted commits the transfer-paid entity group in one
// transaction: payout terminal (unless already completed), commissions to
// paid, affiliate_paid reconciliation milestone. Safe to replay.
func (r *LedgerDao) ApplyPayoutCompleted(p *ledgermodel.Payout, now time.Time) error {
	return dal.LedgerDB.Transaction(func(tx *gorm.DB) error {
		if p.Status != state.PayoutCompleted {
			if !p.Status.CanTransition(state.PayoutCompleted) {
				return fmt.Errorf("payout %d: illegal transition %s -> completed", p.PayoutID, p.Status)
			}
			if err := tx.Model(&ledgermodel.Payout{}).
				Where("payout_id = ? AND status = ?", p.PayoutID, p.Status).
				Updates(map[string]interface{}{
					"status":       state.PayoutCompleted,
					"processed_at": now,
					"update_time":  time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&ledgermodel.Commission{}).
			Where("payout_id = ? AND status = ?", p.PayoutID, state.CommissionPendingPayout).
			Updates(map[string]interface{}{
				"status":            state.CommissionPaid,
				"affiliate_paid_at": now,
				"update_time":       time.Now(),
			}).Error; err != nil {
			return err
		}

		for _, cid := range p.CommissionIDs {
			var rec ledgermodel.Reconciliation
			err := tx.Where("commission_id = ?", cid).First(&rec).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if rec.AffiliatePaid {
				continue
			}
			rec.AffiliatePaid = true
			rec.Recompute(now)
			if err := tx.Save(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyPayoutFailed commits the transfer-failed entity group in one
// transaction: payout terminal with reason (unless already failed) and the
// compensating reversal on its commissions. Safe to replay.
func (r *LedgerDao) ApplyPayoutFailed(p *ledgermodel.Payout, reason string) error {
	return dal.LedgerDB.Transaction(func(tx *gorm.DB) error {
		if p.Status != state.PayoutFailed {
			if !p.Status.CanTransition(state.PayoutFailed) {
				return fmt.Errorf("payout %d: illegal transition %s -> failed", p.PayoutID, p.Status)
			}
			if err := tx.Model(&ledgermodel.Payout{}).
				Where("payout_id = ? AND status = ?", p.PayoutID, p.Status).
				Updates(map[string]interface{}{
					"status":         state.PayoutFailed,
					"failure_reason": reason,
					"update_time":    time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		// match on payout_id, not the id list: a replay must not touch rows a
		// later sweep already re-assigned to a new payout
		return tx.Model(&ledgermodel.Commission{}).
			Where("payout_id = ? AND status = ?", p.PayoutID, state.CommissionPendingPayout).
			Updates(map[string]interface{}{
				"status":      state.CommissionApproved,
				"payout_id":   nil,
				"update_time": time.Now(),
			}).Error
	})
}

// UndisbursedCommissions returns company-paid commissions with no payout
// reference for one affiliate: the retry-sweep input set.
func (r *LedgerDao) UndisbursedCommissions(affiliateID uint64) ([]ledgermodel.Commission, error) {
	var out []ledgermodel.Commission
	err := dal.LedgerDB.
		Where("affiliate_id = ? AND status = ? AND company_pay_status = ? AND payout_id IS NULL",
			affiliateID, state.CommissionApproved, state.CompanyPayPaid).
		Find(&out).Error
	return out, err
}

// ---- reconciliation ----

func (r *LedgerDao) GetReconByPayment(paymentID uint64) (*ledgermodel.Reconciliation, error) {
	var rec ledgermodel.Reconciliation
	err := dal.LedgerDB.Where("customer_payment_id = ?", paymentID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rec, err
}

func (r *LedgerDao) GetReconByCommission(commissionID uint64) (*ledgermodel.Reconciliation, error) {
	var rec ledgermodel.Reconciliation
	err := dal.LedgerDB.Where("commission_id = ?", commissionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rec, err
}

func (r *LedgerDao) InsertRecon(rec *ledgermodel.Reconciliation) error {
	return dal.LedgerDB.Create(rec).Error
}

func (r *LedgerDao) SaveRecon(rec *ledgermodel.Reconciliation) error {
	return dal.LedgerDB.Save(rec).Error
}

func (r *LedgerDao) ListRecon(limit, offset int, onlyUnsettled bool) ([]ledgermodel.Reconciliation, int64, error) {
	q := dal.LedgerDB.Model(&ledgermodel.Reconciliation{})
	if onlyUnsettled {
		q = q.Where("fully_settled = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []ledgermodel.Reconciliation
	if limit <= 0 {
		limit = 50
	}
	err := q.Order("recon_id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

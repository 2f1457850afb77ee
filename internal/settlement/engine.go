package settlement

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/config"
	"affiliate-settlement-api/internal/constant"
	"affiliate-settlement-api/internal/dao"
	"affiliate-settlement-api/internal/idgen"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	"affiliate-settlement-api/internal/state"
	"affiliate-settlement-api/internal/utils"
)

// Engine records commission splits at deal close and owns the pre-batch
// commission lifecycle (approve / reject). No money moves here.
type Engine struct {
	mainDao   *dao.MainDao
	ledgerDao *dao.LedgerDao
	auditDao  *dao.AuditDao
}

func NewEngine() *Engine {
	return &Engine{
		mainDao:   dao.NewMainDao(),
		ledgerDao: dao.NewLedgerDao(),
		auditDao:  dao.NewAuditDao(),
	}
}

// RecordCommission computes and inserts the commission row for a closed deal.
// Validation failures are synchronous errors, never retried.
func (e *Engine) RecordCommission(dealID uint64) (*ledgermodel.Commission, error) {
	deal, err := e.mainDao.GetDeal(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, constant.NewError(constant.CodeDealRefMissing)
	}
	if deal.Value.Sign() <= 0 {
		return nil, constant.NewError(constant.CodeDealValueInvalid)
	}

	own, err := e.mainDao.ResolveOwnership(dealID)
	if err != nil {
		return nil, err
	}
	if own == nil || own.AffiliateID == 0 || own.CompanyID == 0 {
		return nil, constant.NewError(constant.CodeDealRefMissing)
	}

	company, err := e.mainDao.GetCompany(own.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil || company.Status != 1 {
		return nil, constant.NewError(constant.CodeCompanyNotFound)
	}

	// one commission per deal
	if existing, err := e.ledgerDao.GetCommissionByDeal(dealID); err != nil {
		return nil, err
	} else if existing != nil {
		log.Printf("[COMMISSION] deal %d already has commission %d, skipping", dealID, existing.CommissionID)
		return existing, nil
	}

	feeRate := company.PlatformFeeRate
	if feeRate.IsZero() {
		// companies without an override use the platform-wide rate
		if d, err := decimal.NewFromString(config.C.Settlement.PlatformFeeRate); err == nil {
			feeRate = d
		}
	}
	res := Calculate(deal.Value, company.CommissionRate, company.RateType,
		feeRate, company.FeePayer, company.Currency)

	c := &ledgermodel.Commission{
		CommissionID:   idgen.New(),
		DealID:         dealID,
		AffiliateID:    own.AffiliateID,
		CompanyID:      own.CompanyID,
		DealValue:      deal.Value,
		Amount:         res.CommissionAmount,
		PlatformFee:    res.PlatformFee,
		PayoutAmount:   res.PayoutAmount,
		FeePayer:       res.FeePayer,
		Currency:       res.Currency,
		Status:         state.CommissionPending,
		CompanyPayStat: state.CompanyPayPending,
	}
	if err := e.ledgerDao.InsertCommission(c); err != nil {
		return nil, err
	}

	// link the commission into the settlement record when the deal originated
	// from a tracked customer payment
	if deal.CustomerPaymentID != nil {
		if rec, err := e.ledgerDao.GetReconByPayment(*deal.CustomerPaymentID); err == nil && rec != nil {
			rec.DealID = &deal.DealID
			rec.CommissionID = &c.CommissionID
			rec.DealCreated = true
			rec.Recompute(time.Now())
			if err := e.ledgerDao.SaveRecon(rec); err != nil {
				log.Printf("[COMMISSION] recon link failed for commission %d: %v", c.CommissionID, err)
			}
		}
	}

	e.auditDao.Write(ledgermodel.RefCommission, c.CommissionID, "", "",
		c.Status.String(), fmt.Sprintf("recorded for deal %d", dealID), "")
	log.Printf("[COMMISSION] recorded %d: deal=%d amount=%s fee=%s payout=%s",
		c.CommissionID, dealID, c.Amount, c.PlatformFee, c.PayoutAmount)
	return c, nil
}

// Approve moves a pending commission to approved. The caller's company
// identity must match the commission owner.
func (e *Engine) Approve(commissionID, companyID uint64, operator string) error {
	return e.review(commissionID, companyID, operator, state.CommissionApproved)
}

// Reject moves a pending commission to rejected.
func (e *Engine) Reject(commissionID, companyID uint64, operator string) error {
	return e.review(commissionID, companyID, operator, state.CommissionRejected)
}

func (e *Engine) review(commissionID, companyID uint64, operator string, to state.CommissionStatus) error {
	c, err := e.ledgerDao.GetCommission(commissionID)
	if err != nil {
		return err
	}
	if c == nil {
		return constant.NewError(constant.CodeCommissionNotFound)
	}
	if c.CompanyID != companyID {
		return constant.NewError(constant.CodePermissionDenied)
	}
	if c.Status != state.CommissionPending {
		return constant.NewError(constant.CodeCommissionStatusInvalid)
	}

	extra := map[string]interface{}{}
	if to == state.CommissionApproved {
		extra["approved_at"] = utils.PtrTime(time.Now())
	}
	if err := e.ledgerDao.TransitionCommission(commissionID, state.CommissionPending, to, extra); err != nil {
		return err
	}

	if to == state.CommissionApproved {
		if rec, err := e.ledgerDao.GetReconByCommission(commissionID); err == nil && rec != nil {
			rec.CommissionApproved = true
			rec.Recompute(time.Now())
			if err := e.ledgerDao.SaveRecon(rec); err != nil {
				log.Printf("[COMMISSION] recon milestone failed for commission %d: %v", commissionID, err)
			}
		}
	}

	e.auditDao.Write(ledgermodel.RefCommission, commissionID, "",
		state.CommissionPending.String(), to.String(), "reviewed by "+operator, "")
	return nil
}

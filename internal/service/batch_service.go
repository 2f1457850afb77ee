package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/constant"
	"affiliate-settlement-api/internal/dao"
	"affiliate-settlement-api/internal/dto"
	"affiliate-settlement-api/internal/idgen"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	mainmodel "affiliate-settlement-api/internal/model/main"
	"affiliate-settlement-api/internal/notify"
	"affiliate-settlement-api/internal/processor"
	"affiliate-settlement-api/internal/state"
	"affiliate-settlement-api/internal/utils"
)

// BatchService groups a company's approved, unpaid commissions into one
// outbound charge. Reserving the commissions and creating the batch happen
// before the charge is attempted, so the rows leave the poolable set even if
// confirmation only arrives later through the webhook.
type BatchService struct {
	mainDao   *dao.MainDao
	ledgerDao *dao.LedgerDao
	auditDao  *dao.AuditDao
	proc      processor.Client
	disburse  *DisburseService
}

func NewBatchService(proc processor.Client, disburse *DisburseService) *BatchService {
	return &BatchService{
		mainDao:   dao.NewMainDao(),
		ledgerDao: dao.NewLedgerDao(),
		auditDao:  dao.NewAuditDao(),
		proc:      proc,
		disburse:  disburse,
	}
}

// CreateBatch validates ownership and status of every referenced commission,
// reserves the set atomically, records the batch and initiates the charge.
// The synchronous confirm path (stored method, captured immediately) applies
// exactly the same effects as the asynchronous webhook path.
func (s *BatchService) CreateBatch(ctx context.Context, req dto.CreateBatchReq) (*dto.CreateBatchResp, error) {
	company, err := s.mainDao.GetCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil || company.Status != 1 {
		return nil, constant.NewError(constant.CodeCompanyNotFound)
	}

	// pre-check for precise error codes; the reservation re-verifies under lock
	rows, err := s.ledgerDao.ListCommissionsByIDs(req.CommissionIDs)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(req.CommissionIDs) {
		return nil, constant.NewError(constant.CodeCommissionNotFound)
	}
	for _, c := range rows {
		if c.CompanyID != req.CompanyID {
			return nil, constant.NewError(constant.CodeBatchOwnership)
		}
		if c.Status != state.CommissionApproved {
			return nil, constant.NewError(constant.CodeCommissionNotApproved)
		}
		if c.CompanyPayStat != state.CompanyPayPending || c.BatchID != nil {
			return nil, constant.NewError(constant.CodeCommissionInBatch)
		}
	}

	batchID := idgen.New()
	reserved, err := s.ledgerDao.ReserveCommissionsForBatch(req.CompanyID, batchID, req.CommissionIDs)
	if err != nil {
		log.Printf("[BATCH] reservation failed for company %d: %v", req.CompanyID, err)
		return nil, constant.NewError(constant.CodeCommissionInBatch)
	}

	total := decimal.Zero
	feeTotal := decimal.Zero
	for _, c := range reserved {
		charge := c.Amount
		if c.FeePayer == mainmodel.FeePayerCompany { // fee rides on top of the charge
			charge = charge.Add(c.PlatformFee)
		}
		total = total.Add(charge)
		feeTotal = feeTotal.Add(c.PlatformFee)
	}

	batch := &ledgermodel.CompanyPayment{
		BatchID:       batchID,
		CompanyID:     req.CompanyID,
		TotalAmount:   total,
		FeeAmount:     feeTotal,
		Currency:      company.Currency,
		CommissionIDs: ledgermodel.IDList(req.CommissionIDs),
		Status:        state.BatchPending,
	}
	if err := s.ledgerDao.InsertBatch(batch); err != nil {
		// reservation has happened; release so the rows are not stranded
		_ = s.ledgerDao.ReleaseCommissionsFromBatch(batchID)
		return nil, err
	}
	s.auditDao.Write(ledgermodel.RefBatch, batchID, "", "", state.BatchPending.String(),
		fmt.Sprintf("created with %d commissions, total %s", len(reserved), total), "")

	method := req.PaymentMethodID
	if method == "" && company.PaymentMethodID != nil {
		method = *company.PaymentMethodID
	}
	if method != "" {
		return s.chargeImmediate(ctx, batch, method)
	}
	return s.checkoutRedirect(ctx, batch)
}

func (s *BatchService) chargeImmediate(ctx context.Context, batch *ledgermodel.CompanyPayment, methodID string) (*dto.CreateBatchResp, error) {
	resp, err := s.proc.CreateCharge(ctx, processor.ChargeReq{
		Purpose:         dto.PurposeCompanyBatch,
		ReferenceID:     batch.BatchID,
		Amount:          batch.TotalAmount,
		Currency:        batch.Currency,
		PaymentMethodID: methodID,
	})
	if err != nil || (resp != nil && resp.Declined) {
		reason := "charge request failed"
		if err != nil {
			reason = err.Error()
		} else if resp.Reason != "" {
			reason = resp.Reason
		}
		s.failBatch(batch, reason)
		return nil, constant.NewError(constant.CodeBatchChargeFailed)
	}

	if err := s.ledgerDao.TransitionBatch(batch.BatchID, state.BatchPending, state.BatchProcessing,
		map[string]interface{}{"charge_ref": resp.ChargeRef}); err != nil {
		log.Printf("[BATCH] batch %d processing transition: %v", batch.BatchID, err)
	}

	if resp.Captured {
		// synchronous confirmation: same effects as the webhook path
		if err := s.disburse.ConfirmBatchPaid(batch.BatchID, resp.ChargeRef, "", ""); err != nil {
			log.Printf("[BATCH] sync confirm failed for batch %d: %v", batch.BatchID, err)
		}
		return &dto.CreateBatchResp{
			BatchID:     batch.BatchID,
			TotalAmount: batch.TotalAmount,
			Currency:    batch.Currency,
			Status:      state.BatchSucceeded.String(),
			Paid:        true,
		}, nil
	}

	return &dto.CreateBatchResp{
		BatchID:     batch.BatchID,
		TotalAmount: batch.TotalAmount,
		Currency:    batch.Currency,
		Status:      state.BatchProcessing.String(),
	}, nil
}

func (s *BatchService) checkoutRedirect(ctx context.Context, batch *ledgermodel.CompanyPayment) (*dto.CreateBatchResp, error) {
	resp, err := s.proc.CreateCheckoutSession(ctx, processor.CheckoutReq{
		Purpose:     dto.PurposeCompanyBatch,
		ReferenceID: batch.BatchID,
		Amount:      batch.TotalAmount,
		Currency:    batch.Currency,
	})
	if err != nil {
		s.failBatch(batch, err.Error())
		return nil, constant.NewError(constant.CodeBatchChargeFailed)
	}

	if err := s.ledgerDao.TransitionBatch(batch.BatchID, state.BatchPending, state.BatchProcessing,
		map[string]interface{}{
			"charge_ref":   resp.ChargeRef,
			"checkout_url": resp.CheckoutURL,
		}); err != nil {
		log.Printf("[BATCH] batch %d processing transition: %v", batch.BatchID, err)
	}

	// no synchronous completion here: confirmation arrives via the reconciler
	return &dto.CreateBatchResp{
		BatchID:     batch.BatchID,
		TotalAmount: batch.TotalAmount,
		Currency:    batch.Currency,
		Status:      state.BatchProcessing.String(),
		CheckoutURL: resp.CheckoutURL,
	}, nil
}

// failBatch marks the batch failed and releases its commissions so the
// company can retry with a new batch.
func (s *BatchService) failBatch(batch *ledgermodel.CompanyPayment, reason string) {
	if err := s.ledgerDao.TransitionBatch(batch.BatchID, state.BatchPending, state.BatchFailed,
		map[string]interface{}{"failure_reason": utils.PtrString(reason)}); err != nil {
		log.Printf("[BATCH] batch %d fail transition: %v", batch.BatchID, err)
	}
	if err := s.ledgerDao.ReleaseCommissionsFromBatch(batch.BatchID); err != nil {
		log.Printf("[BATCH] batch %d release commissions: %v", batch.BatchID, err)
	}
	s.auditDao.Write(ledgermodel.RefBatch, batch.BatchID, "",
		state.BatchPending.String(), state.BatchFailed.String(), reason, "")
	notify.Alert("Batch charge failed",
		fmt.Sprintf("batch %d, company %d, amount %s %s: %s",
			batch.BatchID, batch.CompanyID, batch.TotalAmount, batch.Currency, reason))
}

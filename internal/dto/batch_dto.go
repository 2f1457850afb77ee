package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateBatchReq struct {
	CompanyID       uint64   `json:"companyId" binding:"required"`
	CommissionIDs   []uint64 `json:"commissionIds" binding:"required,min=1"`
	PaymentMethodID string   `json:"paymentMethodId"` // empty selects the hosted checkout flow
}

// CreateBatchResp is either a confirmation (immediate charge captured) or a
// redirect handle (hosted checkout); exactly one of Paid / CheckoutURL is set.
type CreateBatchResp struct {
	BatchID     uint64          `json:"batchId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Paid        bool            `json:"paid"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
}

type BatchView struct {
	BatchID       uint64          `json:"batchId"`
	CompanyID     uint64          `json:"companyId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	FeeAmount     decimal.Decimal `json:"feeAmount"`
	Currency      string          `json:"currency"`
	CommissionIDs []uint64        `json:"commissionIds"`
	StatusText    string          `json:"status"`
	ChargeRef     *string         `json:"chargeRef"`
	FailureReason *string         `json:"failureReason"`
	PaidAt        *time.Time      `json:"paidAt"`
	CreateTime    time.Time       `json:"createTime"`
}

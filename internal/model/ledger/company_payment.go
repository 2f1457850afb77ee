package ledgermodel

import (
	"time"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/state"
)

// CompanyPayment is one company-initiated outbound charge covering a batch of
// approved commissions (commission amount plus fee when the company bears it).
type CompanyPayment struct {
	BatchID       uint64            `gorm:"column:batch_id;primaryKey;not null" json:"batchId"`
	CompanyID     uint64            `gorm:"column:company_id;not null" json:"companyId"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:decimal(18,4);not null" json:"totalAmount"`
	FeeAmount     decimal.Decimal   `gorm:"column:fee_amount;type:decimal(18,4);not null" json:"feeAmount"` // platform fee portion of the total
	Currency      string            `gorm:"column:currency;type:char(3);not null" json:"currency"`
	CommissionIDs IDList            `gorm:"column:commission_ids;type:json" json:"commissionIds"`
	Status        state.BatchStatus `gorm:"column:status;not null" json:"status"`
	ChargeRef     *string           `gorm:"column:charge_ref;type:varchar(64)" json:"chargeRef"`     // processor charge id
	CheckoutURL   *string           `gorm:"column:checkout_url;type:varchar(255)" json:"checkoutUrl"` // hosted checkout redirect, when no stored method
	FailureReason *string           `gorm:"column:failure_reason;type:varchar(255)" json:"failureReason"`
	PaidAt        *time.Time        `gorm:"column:paid_at" json:"paidAt"`
	CreateTime    time.Time         `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
	UpdateTime    time.Time         `gorm:"column:update_time;autoUpdateTime;not null" json:"updateTime"`
}

func (CompanyPayment) TableName() string { return "s_company_payment" }

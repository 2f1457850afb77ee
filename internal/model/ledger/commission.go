package ledgermodel

import (
	"time"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/state"
)

// Commission is one affiliate-earned amount on one closed deal.
type Commission struct {
	CommissionID    uint64                     `gorm:"column:commission_id;primaryKey;not null" json:"commissionId"`
	DealID          uint64                     `gorm:"column:deal_id;not null" json:"dealId"`
	AffiliateID     uint64                     `gorm:"column:affiliate_id;not null" json:"affiliateId"`
	CompanyID       uint64                     `gorm:"column:company_id;not null" json:"companyId"` // derived through deal -> partnership -> product
	DealValue       decimal.Decimal            `gorm:"column:deal_value;type:decimal(18,4);not null" json:"dealValue"`
	Amount          decimal.Decimal            `gorm:"column:amount;type:decimal(18,4);not null" json:"amount"`              // gross commission
	PlatformFee     decimal.Decimal            `gorm:"column:platform_fee;type:decimal(18,4);not null" json:"platformFee"`   // platform cut
	PayoutAmount    decimal.Decimal            `gorm:"column:payout_amount;type:decimal(18,4);not null" json:"payoutAmount"` // what the affiliate receives
	FeePayer        int8                       `gorm:"column:fee_payer;not null" json:"feePayer"`                            // 1 affiliate, 2 company
	Currency        string                     `gorm:"column:currency;type:char(3);not null" json:"currency"`
	Status          state.CommissionStatus     `gorm:"column:status;not null" json:"status"`
	CompanyPayStat  state.CompanyPaymentStatus `gorm:"column:company_pay_status;not null" json:"companyPayStatus"`
	BatchID         *uint64                    `gorm:"column:batch_id" json:"batchId"`   // current company payment batch
	PayoutID        *uint64                    `gorm:"column:payout_id" json:"payoutId"` // current affiliate payout, cleared on transfer failure
	ApprovedAt      *time.Time                 `gorm:"column:approved_at" json:"approvedAt"`
	CompanyPaidAt   *time.Time                 `gorm:"column:company_paid_at" json:"companyPaidAt"`
	AffiliatePaidAt *time.Time                 `gorm:"column:affiliate_paid_at" json:"affiliatePaidAt"`
	CreateTime      time.Time                  `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
	UpdateTime      time.Time                  `gorm:"column:update_time;autoUpdateTime;not null" json:"updateTime"`
}

func (Commission) TableName() string { return "s_commission" }

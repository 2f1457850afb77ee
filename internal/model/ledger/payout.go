package ledgermodel

import (
	"time"

	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/state"
)

// Payout is one outbound transfer to one affiliate. All included commissions
// share the affiliate and have company_pay_status = paid.
type Payout struct {
	PayoutID      uint64             `gorm:"column:payout_id;primaryKey;not null" json:"payoutId"`
	AffiliateID   uint64             `gorm:"column:affiliate_id;not null" json:"affiliateId"`
	BatchID       *uint64            `gorm:"column:batch_id" json:"batchId"` // batch that triggered the disbursement, nil for retry-sweep payouts spanning batches
	Amount        decimal.Decimal    `gorm:"column:amount;type:decimal(18,4);not null" json:"amount"`
	Currency      string             `gorm:"column:currency;type:char(3);not null" json:"currency"`
	CommissionIDs IDList             `gorm:"column:commission_ids;type:json" json:"commissionIds"`
	Status        state.PayoutStatus `gorm:"column:status;not null" json:"status"`
	TransferRef   *string            `gorm:"column:transfer_ref;type:varchar(64)" json:"transferRef"`
	FailureReason *string            `gorm:"column:failure_reason;type:varchar(255)" json:"failureReason"`
	ProcessedAt   *time.Time         `gorm:"column:processed_at" json:"processedAt"`
	CreateTime    time.Time          `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
	UpdateTime    time.Time          `gorm:"column:update_time;autoUpdateTime;not null" json:"updateTime"`
}

func (Payout) TableName() string { return "s_payout" }

package mainmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer payment statuses.
const (
	CustomerPayPending   int8 = 0
	CustomerPaySucceeded int8 = 1
	CustomerPayFailed    int8 = 2
	CustomerPayRefunded  int8 = 3
)

// CustomerPayment is the originating money-in event from a paying customer.
type CustomerPayment struct {
	PaymentID      uint64           `gorm:"column:payment_id;primaryKey;not null" json:"paymentId"`
	CompanyID      uint64           `gorm:"column:company_id;not null" json:"companyId"`
	PartnershipID  *uint64          `gorm:"column:partnership_id" json:"partnershipId"`
	DealID         *uint64          `gorm:"column:deal_id" json:"dealId"`
	Amount         decimal.Decimal  `gorm:"column:amount;type:decimal(18,4);not null" json:"amount"`
	RefundedAmount *decimal.Decimal `gorm:"column:refunded_amount;type:decimal(18,4)" json:"refundedAmount"`
	Currency       string           `gorm:"column:currency;type:char(3);not null" json:"currency"`
	Status         int8             `gorm:"column:status;not null" json:"status"`
	ChargeRef      string           `gorm:"column:charge_ref;type:varchar(64);not null" json:"chargeRef"`
	PaidAt         *time.Time       `gorm:"column:paid_at" json:"paidAt"`
	CreateTime     time.Time        `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
	UpdateTime     time.Time        `gorm:"column:update_time;autoUpdateTime;not null" json:"updateTime"`
}

func (CustomerPayment) TableName() string { return "s_customer_payment" }

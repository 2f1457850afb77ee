package mainmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission rate types.
const (
	RateTypePercent int8 = 1
	RateTypeFixed   int8 = 2
)

// Fee payer policies.
const (
	FeePayerAffiliate int8 = 1 // payout = commission - platform fee
	FeePayerCompany   int8 = 2 // payout = commission, batch total carries the fee
)

// Company holds the commission configuration resolved at deal close.
type Company struct {
	CompanyID       uint64          `gorm:"column:company_id;primaryKey;not null" json:"companyId"`
	Name            string          `gorm:"column:name;type:varchar(64);not null" json:"name"`
	Status          int8            `gorm:"column:status;not null" json:"status"` // 1 active
	RateType        int8            `gorm:"column:rate_type;not null" json:"rateType"`
	CommissionRate  decimal.Decimal `gorm:"column:commission_rate;type:decimal(10,4);not null" json:"commissionRate"` // percent or fixed amount per RateType
	PlatformFeeRate decimal.Decimal `gorm:"column:platform_fee_rate;type:decimal(10,4);not null" json:"platformFeeRate"`
	FeePayer        int8            `gorm:"column:fee_payer;not null" json:"feePayer"`
	Currency        string          `gorm:"column:currency;type:char(3);not null" json:"currency"`
	PaymentMethodID *string         `gorm:"column:payment_method_id;type:varchar(64)" json:"paymentMethodId"` // stored processor method, nil forces hosted checkout
	AutoDealCreate  bool            `gorm:"column:auto_deal_create;not null" json:"autoDealCreate"`
	CreateTime      time.Time       `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
	UpdateTime      time.Time       `gorm:"column:update_time;autoUpdateTime;not null" json:"updateTime"`
}

func (Company) TableName() string { return "s_company" }

package mainmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a company's sellable offering; the company link in the
// deal -> partnership -> product -> company ownership chain.
type Product struct {
	ProductID  uint64    `gorm:"column:product_id;primaryKey;not null" json:"productId"`
	CompanyID  uint64    `gorm:"column:company_id;not null" json:"companyId"`
	Name       string    `gorm:"column:name;type:varchar(64);not null" json:"name"`
	Status     int8      `gorm:"column:status;not null" json:"status"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
}

func (Product) TableName() string { return "s_product" }

// Partnership ties an affiliate to a product they promote.
type Partnership struct {
	PartnershipID uint64    `gorm:"column:partnership_id;primaryKey;not null" json:"partnershipId"`
	ProductID     uint64    `gorm:"column:product_id;not null" json:"productId"`
	AffiliateID   uint64    `gorm:"column:affiliate_id;not null" json:"affiliateId"`
	Status        int8      `gorm:"column:status;not null" json:"status"`
	CreateTime    time.Time `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
}

func (Partnership) TableName() string { return "s_partnership" }

// Deal is a closed sale attributed to a partnership.
type Deal struct {
	DealID            uint64          `gorm:"column:deal_id;primaryKey;not null" json:"dealId"`
	PartnershipID     uint64          `gorm:"column:partnership_id;not null" json:"partnershipId"`
	CustomerPaymentID *uint64         `gorm:"column:customer_payment_id" json:"customerPaymentId"`
	Value             decimal.Decimal `gorm:"column:value;type:decimal(18,4);not null" json:"value"`
	Currency          string          `gorm:"column:currency;type:char(3);not null" json:"currency"`
	ClosedAt          *time.Time      `gorm:"column:closed_at" json:"closedAt"`
	CreateTime        time.Time       `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
}

func (Deal) TableName() string { return "s_deal" }

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordCommissionReq struct {
	DealID uint64 `json:"dealId" binding:"required"`
}

type CommissionActionReq struct {
	CompanyID uint64 `json:"companyId" binding:"required"`
	Operator  string `json:"operator"`
}

type ListCommissionsReq struct {
	CompanyID   uint64 `form:"companyId"`
	AffiliateID uint64 `form:"affiliateId"`
	Status      *int8  `form:"status"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// CommissionView is the read-only projection handed to the UI layer.
type CommissionView struct {
	CommissionID    uint64          `json:"commissionId"`
	DealID          uint64          `json:"dealId"`
	AffiliateID     uint64          `json:"affiliateId"`
	CompanyID       uint64          `json:"companyId"`
	Amount          decimal.Decimal `json:"amount"`
	PlatformFee     decimal.Decimal `json:"platformFee"`
	PayoutAmount    decimal.Decimal `json:"payoutAmount"`
	Currency        string          `json:"currency"`
	StatusText      string          `json:"status"`
	CompanyPayText  string          `json:"companyPayStatus"`
	ApprovedAt      *time.Time      `json:"approvedAt"`
	CompanyPaidAt   *time.Time      `json:"companyPaidAt"`
	AffiliatePaidAt *time.Time      `json:"affiliatePaidAt"`
	CreateTime      time.Time       `json:"createTime"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Admin override actions.
const (
	OverrideMarkProcessed = "processed"
	OverrideMarkFailed    = "failed"
)

type PayoutOverrideReq struct {
	Action   string `json:"action" binding:"required,oneof=processed failed"`
	Reason   string `json:"reason"`
	Operator string `json:"operator" binding:"required"`
}

type ListPayoutsReq struct {
	AffiliateID uint64 `form:"affiliateId"`
	BatchID     uint64 `form:"batchId"`
	Status      *int8  `form:"status"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

type PayoutView struct {
	PayoutID      uint64          `json:"payoutId"`
	AffiliateID   uint64          `json:"affiliateId"`
	BatchID       uint64          `json:"batchId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CommissionIDs []uint64        `json:"commissionIds"`
	StatusText    string          `json:"status"`
	TransferRef   *string         `json:"transferRef"`
	FailureReason *string         `json:"failureReason"`
	ProcessedAt   *time.Time      `json:"processedAt"`
	CreateTime    time.Time       `json:"createTime"`
}

// TreasurySummary is the aggregate money view for reporting.
type TreasurySummary struct {
	TotalReceived   decimal.Decimal `json:"totalReceived"`
	TotalPaidOut    decimal.Decimal `json:"totalPaidOut"`
	PlatformRevenue decimal.Decimal `json:"platformRevenue"`
	Balance         decimal.Decimal `json:"balance"`
}

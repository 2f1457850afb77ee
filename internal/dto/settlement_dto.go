package dto

import "github.com/shopspring/decimal"

// SettlementResult is the computed split for one commission. Stored values are
// copied onto the commission row at insert; the struct itself is pure math
// output with no persistence.
type SettlementResult struct {
	DealValue        decimal.Decimal `json:"dealValue"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	PlatformFee      decimal.Decimal `json:"platformFee"`
	PayoutAmount     decimal.Decimal `json:"payoutAmount"`
	CompanyCharge    decimal.Decimal `json:"companyCharge"` // what a batch collects for this commission
	FeePayer         int8            `json:"feePayer"`
	Currency         string          `json:"currency"`
}

package ledgermodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Treasury transaction types.
const (
	TreasuryCommissionReceived int8 = 1 // money in: company batch charge
	TreasuryAffiliatePayout    int8 = 2 // money out: affiliate transfer
	TreasuryPlatformFee        int8 = 3 // platform revenue recognized from a batch
	TreasuryPayoutReversal     int8 = 4 // compensating line when an issued transfer later fails
)

// Reference types for treasury and audit rows.
const (
	RefBatch      = "batch"
	RefPayout     = "payout"
	RefCommission = "commission"
	RefPayment    = "payment"
)

// TreasuryEntry is an append-only money-in/money-out line. Never updated.
type TreasuryEntry struct {
	EntryID    uint64          `gorm:"column:entry_id;primaryKey;not null" json:"entryId"`
	TxType     int8            `gorm:"column:tx_type;not null" json:"txType"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(18,4);not null" json:"amount"` // signed: inflow positive, outflow negative
	Currency   string          `gorm:"column:currency;type:char(3);not null" json:"currency"`
	RefType    string          `gorm:"column:ref_type;type:varchar(16);not null" json:"refType"`
	RefID      uint64          `gorm:"column:ref_id;not null" json:"refId"`
	CreateTime time.Time       `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
}

func (TreasuryEntry) TableName() string { return "s_treasury_entry" }

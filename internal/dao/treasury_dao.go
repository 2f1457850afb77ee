package dao

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"affiliate-settlement-api/internal/dal"
	"affiliate-settlement-api/internal/dto"
	"affiliate-settlement-api/internal/idgen"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
)

// TreasuryDao is insert-and-sum only. Entries are never updated or deleted.
type TreasuryDao struct{}

func NewTreasuryDao() *TreasuryDao { return &TreasuryDao{} }

// Append writes one ledger line. Duplicate (tx_type, ref_type, ref_id) inserts
// are skipped so event replays cannot double-count money.
func (r *TreasuryDao) Append(txType int8, amount decimal.Decimal, currency, refType string, refID uint64) error {
	var existing ledgermodel.TreasuryEntry
	err := dal.LedgerDB.
		Where("tx_type = ? AND ref_type = ? AND ref_id = ?", txType, refType, refID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	entry := ledgermodel.TreasuryEntry{
		EntryID:    idgen.New(),
		TxType:     txType,
		Amount:     amount,
		Currency:   currency,
		RefType:    refType,
		RefID:      refID,
		CreateTime: time.Now(),
	}
	return dal.LedgerDB.Create(&entry).Error
}

func (r *TreasuryDao) sumByType(txType int8) (decimal.Decimal, error) {
	var s decimal.NullDecimal
	err := dal.LedgerDB.Model(&ledgermodel.TreasuryEntry{}).
		Select("SUM(amount)").
		Where("tx_type = ?", txType).
		Scan(&s).Error
	if err != nil || !s.Valid {
		return decimal.Zero, err
	}
	return s.Decimal, nil
}

// Summary computes the aggregate money view: balance = received - paid out.
func (r *TreasuryDao) Summary() (dto.TreasurySummary, error) {
	received, err := r.sumByType(ledgermodel.TreasuryCommissionReceived)
	if err != nil {
		return dto.TreasurySummary{}, err
	}
	paidOut, err := r.sumByType(ledgermodel.TreasuryAffiliatePayout)
	if err != nil {
		return dto.TreasurySummary{}, err
	}
	reversed, err := r.sumByType(ledgermodel.TreasuryPayoutReversal)
	if err != nil {
		return dto.TreasurySummary{}, err
	}
	revenue, err := r.sumByType(ledgermodel.TreasuryPlatformFee)
	if err != nil {
		return dto.TreasurySummary{}, err
	}
	// payout entries are stored negative and reversals positive, so the net
	// magnitude is what actually left the platform
	paidOutNet := paidOut.Abs().Sub(reversed)
	return dto.TreasurySummary{
		TotalReceived:   received,
		TotalPaidOut:    paidOutNet,
		PlatformRevenue: revenue,
		Balance:         received.Sub(paidOutNet),
	}, nil
}

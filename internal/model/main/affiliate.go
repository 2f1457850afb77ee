package mainmodel

import (
	"time"

	"affiliate-settlement-api/internal/state"
)

// Affiliate is a commission recipient. PayoutAccountID points at the
// processor-side destination account; transfers require AccountVerified.
type Affiliate struct {
	AffiliateID     uint64              `gorm:"column:affiliate_id;primaryKey;not null" json:"affiliateId"`
	Name            string              `gorm:"column:name;type:varchar(64);not null" json:"name"`
	Email           string              `gorm:"column:email;type:varchar(128);not null" json:"email"`
	Status          int8                `gorm:"column:status;not null" json:"status"` // 1 active
	PayoutAccountID *string             `gorm:"column:payout_account_id;type:varchar(64)" json:"payoutAccountId"`
	AccountStatus   state.AccountStatus `gorm:"column:account_status;not null" json:"accountStatus"`
	CreateTime      time.Time           `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
	UpdateTime      time.Time           `gorm:"column:update_time;autoUpdateTime;not null" json:"updateTime"`
}

func (Affiliate) TableName() string { return "s_affiliate" }

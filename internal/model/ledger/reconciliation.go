package ledgermodel

import "time"

// Reconciliation is the canonical cross-party settlement record: five
// independent milestones from customer payment through affiliate payout.
// Every other status field is a projection of some subset of these.
type Reconciliation struct {
	ReconID            uint64     `gorm:"column:recon_id;primaryKey;not null" json:"reconId"`
	CustomerPaymentID  uint64     `gorm:"column:customer_payment_id;not null" json:"customerPaymentId"`
	DealID             *uint64    `gorm:"column:deal_id" json:"dealId"`
	CommissionID       *uint64    `gorm:"column:commission_id" json:"commissionId"`
	CustomerPaid       bool       `gorm:"column:customer_paid;not null" json:"customerPaid"`
	DealCreated        bool       `gorm:"column:deal_created;not null" json:"dealCreated"`
	CommissionApproved bool       `gorm:"column:commission_approved;not null" json:"commissionApproved"`
	CompanyPaid        bool       `gorm:"column:company_paid_commission;not null" json:"companyPaidCommission"`
	AffiliatePaid      bool       `gorm:"column:affiliate_paid;not null" json:"affiliatePaid"`
	FullySettled       bool       `gorm:"column:fully_settled;not null" json:"fullySettled"` // true iff all five milestones are true
	SettledAt          *time.Time `gorm:"column:settled_at" json:"settledAt"`
	CreateTime         time.Time  `gorm:"column:create_time;autoCreateTime;not null" json:"createTime"`
	UpdateTime         time.Time  `gorm:"column:update_time;autoUpdateTime;not null" json:"updateTime"`
}

func (Reconciliation) TableName() string { return "s_reconciliation" }

// Recompute derives FullySettled from the five milestones. Callers must invoke
// it after any milestone write so the flag can never disagree with them.
func (r *Reconciliation) Recompute(now time.Time) {
	settled := r.CustomerPaid && r.DealCreated && r.CommissionApproved && r.CompanyPaid && r.AffiliatePaid
	if settled && !r.FullySettled {
		t := now
		r.SettledAt = &t
	}
	r.FullySettled = settled
}

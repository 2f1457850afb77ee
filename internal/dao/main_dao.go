package dao

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"affiliate-settlement-api/internal/dal"
	mainmodel "affiliate-settlement-api/internal/model/main"
	"affiliate-settlement-api/internal/state"
)

type MainDao struct{}

func NewMainDao() *MainDao { return &MainDao{} }

func (r *MainDao) GetCompany(id uint64) (*mainmodel.Company, error) {
	var c mainmodel.Company
	err := dal.MainDB.Where("company_id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *MainDao) GetAffiliate(id uint64) (*mainmodel.Affiliate, error) {
	var a mainmodel.Affiliate
	err := dal.MainDB.Where("affiliate_id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *MainDao) GetAffiliateByAccountRef(accountRef string) (*mainmodel.Affiliate, error) {
	var a mainmodel.Affiliate
	err := dal.MainDB.Where("payout_account_id = ?", accountRef).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *MainDao) UpdateAffiliateAccountStatus(id uint64, status state.AccountStatus) error {
	return dal.MainDB.Model(&mainmodel.Affiliate{}).
		Where("affiliate_id = ?", id).
		Updates(map[string]interface{}{
			"account_status": status,
			"update_time":    time.Now(),
		}).Error
}

func (r *MainDao) GetDeal(id uint64) (*mainmodel.Deal, error) {
	var d mainmodel.Deal
	err := dal.MainDB.Where("deal_id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &d, err
}

func (r *MainDao) CreateDeal(d *mainmodel.Deal) error {
	return dal.MainDB.Create(d).Error
}

// Ownership is the resolved deal -> partnership -> product -> company chain,
// checked once per operation instead of being re-joined inline per call.
type Ownership struct {
	DealID        uint64 `gorm:"column:deal_id"`
	PartnershipID uint64 `gorm:"column:partnership_id"`
	ProductID     uint64 `gorm:"column:product_id"`
	CompanyID     uint64 `gorm:"column:company_id"`
	AffiliateID   uint64 `gorm:"column:affiliate_id"`
}

func (r *MainDao) ResolveOwnership(dealID uint64) (*Ownership, error) {
	var o Ownership
	err := dal.MainDB.Table("s_deal AS d").
		Select("d.deal_id, p.partnership_id, pr.product_id, pr.company_id, p.affiliate_id").
		Joins("JOIN s_partnership AS p ON d.partnership_id = p.partnership_id").
		Joins("JOIN s_product AS pr ON p.product_id = pr.product_id").
		Where("d.deal_id = ?", dealID).
		Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MainDao) GetCustomerPaymentByChargeRef(ref string) (*mainmodel.CustomerPayment, error) {
	var p mainmodel.CustomerPayment
	err := dal.MainDB.Where("charge_ref = ?", ref).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *MainDao) UpdateCustomerPayment(id uint64, fields map[string]interface{}) error {
	fields["update_time"] = time.Now()
	return dal.MainDB.Model(&mainmodel.CustomerPayment{}).
		Where("payment_id = ?", id).
		Updates(fields).Error
}

package service

import (
	"time"

	"github.com/jinzhu/copier"

	"affiliate-settlement-api/internal/dao"
	"affiliate-settlement-api/internal/dto"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
)

// QueryService serves read-only projections to the UI/reporting layer.
// No state changes happen here.
type QueryService struct {
	ledgerDao   *dao.LedgerDao
	treasuryDao *dao.TreasuryDao
	auditDao    *dao.AuditDao
}

func NewQueryService() *QueryService {
	return &QueryService{
		ledgerDao:   dao.NewLedgerDao(),
		treasuryDao: dao.NewTreasuryDao(),
		auditDao:    dao.NewAuditDao(),
	}
}

func (s *QueryService) ListCommissions(req dto.ListCommissionsReq) ([]dto.CommissionView, int64, error) {
	rows, total, err := s.ledgerDao.ListCommissions(req.CompanyID, req.AffiliateID, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.CommissionView, 0, len(rows))
	for _, c := range rows {
		var v dto.CommissionView
		if err := copier.Copy(&v, &c); err != nil {
			return nil, 0, err
		}
		v.StatusText = c.Status.String()
		v.CompanyPayText = c.CompanyPayStat.String()
		out = append(out, v)
	}
	return out, total, nil
}

func (s *QueryService) GetBatch(id uint64) (*dto.BatchView, error) {
	b, err := s.ledgerDao.GetBatch(id)
	if err != nil || b == nil {
		return nil, err
	}
	return batchView(b), nil
}

func (s *QueryService) ListBatches(companyID uint64, limit, offset int) ([]dto.BatchView, int64, error) {
	rows, total, err := s.ledgerDao.ListBatches(companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.BatchView, 0, len(rows))
	for i := range rows {
		out = append(out, *batchView(&rows[i]))
	}
	return out, total, nil
}

func batchView(b *ledgermodel.CompanyPayment) *dto.BatchView {
	var v dto.BatchView
	_ = copier.Copy(&v, b)
	v.CommissionIDs = b.CommissionIDs
	v.StatusText = b.Status.String()
	return &v
}

func (s *QueryService) ListPayouts(req dto.ListPayoutsReq) ([]dto.PayoutView, int64, error) {
	rows, total, err := s.ledgerDao.ListPayouts(req.AffiliateID, req.BatchID, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.PayoutView, 0, len(rows))
	for _, p := range rows {
		var v dto.PayoutView
		if err := copier.Copy(&v, &p); err != nil {
			return nil, 0, err
		}
		if p.BatchID != nil {
			v.BatchID = *p.BatchID
		}
		v.CommissionIDs = p.CommissionIDs
		v.StatusText = p.Status.String()
		out = append(out, v)
	}
	return out, total, nil
}

func (s *QueryService) ListReconciliation(limit, offset int, onlyUnsettled bool) ([]ledgermodel.Reconciliation, int64, error) {
	return s.ledgerDao.ListRecon(limit, offset, onlyUnsettled)
}

func (s *QueryService) TreasurySummary() (dto.TreasurySummary, error) {
	return s.treasuryDao.Summary()
}

// AuditTrail lists one month of audit rows, optionally narrowed to one entity.
func (s *QueryService) AuditTrail(entityID uint64, month time.Time) ([]ledgermodel.AuditLog, error) {
	return s.auditDao.ListMonth(entityID, month)
}

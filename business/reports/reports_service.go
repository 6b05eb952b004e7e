package reports

import (
	"context"
	"myBetPartners/domain"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRepository contract interface
type LedgerRepository interface {
	FindEventsByAffiliate(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.ConversionEvent, error)
	FindEventsByHouse(ctx context.Context, houseID uint, from, to time.Time) ([]domain.ConversionEvent, error)
	FindCommissionsByAffiliate(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.CommissionRecord, error)
	FindCommissionsByHouse(ctx context.Context, houseID uint, from, to time.Time) ([]domain.CommissionRecord, error)
	CommissionTotal(ctx context.Context, affiliateID uint) (map[string]decimal.Decimal, error)
}

// AuditRepository contract interface
type AuditRepository interface {
	FindRecent(ctx context.Context, houseSlug, status string, limit int) ([]domain.PostbackAuditEntry, error)
}

type reportsService struct {
	ledgerRepo LedgerRepository
	auditRepo  AuditRepository
}

func NewReportsService(ledgerRepo LedgerRepository, auditRepo AuditRepository) *reportsService {
	return &reportsService{
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
	}
}

func (s *reportsService) AffiliateConversions(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.ConversionEvent, error) {
	return s.ledgerRepo.FindEventsByAffiliate(ctx, affiliateID, from, to)
}

func (s *reportsService) AffiliateCommissions(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.CommissionRecord, error) {
	return s.ledgerRepo.FindCommissionsByAffiliate(ctx, affiliateID, from, to)
}

func (s *reportsService) HouseConversions(ctx context.Context, houseID uint, from, to time.Time) ([]domain.ConversionEvent, error) {
	return s.ledgerRepo.FindEventsByHouse(ctx, houseID, from, to)
}

func (s *reportsService) HouseCommissions(ctx context.Context, houseID uint, from, to time.Time) ([]domain.CommissionRecord, error) {
	return s.ledgerRepo.FindCommissionsByHouse(ctx, houseID, from, to)
}

// Summary is the per-affiliate earned total per commission type.
type Summary struct {
	AffiliateID uint              `json:"affiliate_id"`
	Totals      map[string]string `json:"totals"`
}

func (s *reportsService) AffiliateSummary(ctx context.Context, affiliateID uint) (Summary, error) {
	totals, err := s.ledgerRepo.CommissionTotal(ctx, affiliateID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{AffiliateID: affiliateID, Totals: make(map[string]string, len(totals))}
	for commissionType, total := range totals {
		summary.Totals[commissionType] = total.StringFixed(2)
	}

	return summary, nil
}

func (s *reportsService) RecentPostbacks(ctx context.Context, houseSlug, status string, limit int) ([]domain.PostbackAuditEntry, error) {
	return s.auditRepo.FindRecent(ctx, houseSlug, status, limit)
}

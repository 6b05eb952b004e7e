package postgres

import (
	"context"
	"myBetPartners/domain"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerRepository struct {
	DB *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{
		DB: db,
	}
}

// RecordConversion persists one accepted postback atomically: the
// conversion event, its commission record when one was earned, and the
// SUCCESS audit row. A failed write rolls all three back.
func (r *LedgerRepository) RecordConversion(
	ctx context.Context,
	event *domain.ConversionEvent,
	commission *domain.CommissionRecord,
	audit *domain.PostbackAuditEntry,
) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		if commission != nil {
			commission.ConversionEventID = event.ID
			commission.AffiliateID = event.AffiliateID
			commission.HouseID = event.HouseID
			if err := tx.Create(commission).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(audit).Error; err != nil {
			return err
		}

		return nil
	})
}

// HasRecentDuplicate reports whether an identical conversion already
// exists inside the dedup window. Only called when a customer id was
// supplied; without one there is nothing safe to match on.
func (r *LedgerRepository) HasRecentDuplicate(
	ctx context.Context,
	houseID uint,
	eventKind string,
	customerID string,
	amount decimal.NullDecimal,
	window time.Duration,
) (bool, error) {
	query := r.DB.WithContext(ctx).Model(&domain.ConversionEvent{}).
		Where("house_id = ?", houseID).
		Where("event_kind = ?", eventKind).
		Where("customer_id = ?", customerID).
		Where("created_at > ?", time.Now().Add(-window))

	if amount.Valid {
		query = query.Where("amount = ?", amount.Decimal)
	} else {
		query = query.Where("amount IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *LedgerRepository) FindEventsByAffiliate(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.ConversionEvent, error) {
	var events []domain.ConversionEvent

	err := rangeQuery(r.DB.WithContext(ctx), "affiliate_id", affiliateID, from, to).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *LedgerRepository) FindEventsByHouse(ctx context.Context, houseID uint, from, to time.Time) ([]domain.ConversionEvent, error) {
	var events []domain.ConversionEvent

	err := rangeQuery(r.DB.WithContext(ctx), "house_id", houseID, from, to).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *LedgerRepository) FindCommissionsByAffiliate(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.CommissionRecord, error) {
	var records []domain.CommissionRecord

	err := rangeQuery(r.DB.WithContext(ctx), "affiliate_id", affiliateID, from, to).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *LedgerRepository) FindCommissionsByHouse(ctx context.Context, houseID uint, from, to time.Time) ([]domain.CommissionRecord, error) {
	var records []domain.CommissionRecord

	err := rangeQuery(r.DB.WithContext(ctx), "house_id", houseID, from, to).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// CommissionTotal sums earned commission for one affiliate grouped by type.
func (r *LedgerRepository) CommissionTotal(ctx context.Context, affiliateID uint) (map[string]decimal.Decimal, error) {
	type row struct {
		Type  string
		Total decimal.Decimal
	}

	var rows []row
	err := r.DB.WithContext(ctx).Model(&domain.CommissionRecord{}).
		Select("type, COALESCE(SUM(value), 0) AS total").
		Where("affiliate_id = ?", affiliateID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		totals[r.Type] = r.Total
	}

	return totals, nil
}

func rangeQuery(db *gorm.DB, column string, id uint, from, to time.Time) *gorm.DB {
	query := db.Where(column+" = ?", id).Order("created_at DESC")
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}

	return query
}

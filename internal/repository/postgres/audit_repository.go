package postgres

import (
	"context"
	"myBetPartners/domain"

	"gorm.io/gorm"
)

type AuditRepository struct {
	DB *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{
		DB: db,
	}
}

// Append writes one audit row. Rows are never updated afterwards.
func (r *AuditRepository) Append(ctx context.Context, entry *domain.PostbackAuditEntry) error {
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}

	return nil
}

// FindRecent returns the latest audit rows, optionally filtered by house
// slug and outcome status. Diagnosis surface for flaky partners.
func (r *AuditRepository) FindRecent(ctx context.Context, houseSlug, status string, limit int) ([]domain.PostbackAuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := r.DB.WithContext(ctx).Model(&domain.PostbackAuditEntry{}).
		Order("created_at DESC").Limit(limit)

	if houseSlug != "" {
		query = query.Where("house_slug = ?", houseSlug)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var entries []domain.PostbackAuditEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

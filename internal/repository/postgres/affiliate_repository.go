package postgres

import (
	"context"
	"errors"
	"myBetPartners/domain"

	"gorm.io/gorm"
)

type AffiliateRepository struct {
	DB *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) *AffiliateRepository {
	return &AffiliateRepository{
		DB: db,
	}
}

func (r *AffiliateRepository) Create(ctx context.Context, affiliate *domain.Affiliate) error {
	if err := r.DB.WithContext(ctx).Create(affiliate).Error; err != nil {
		return err
	}

	return nil
}

func (r *AffiliateRepository) FindByTrackingCode(ctx context.Context, code string) (domain.Affiliate, error) {
	var affiliate domain.Affiliate

	err := r.DB.WithContext(ctx).Where("tracking_code = ?", code).First(&affiliate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Affiliate{}, domain.ErrAffiliateNotFound
		}
		return domain.Affiliate{}, err
	}

	return affiliate, nil
}

func (r *AffiliateRepository) FindByID(ctx context.Context, id uint) (domain.Affiliate, error) {
	var affiliate domain.Affiliate

	err := r.DB.WithContext(ctx).First(&affiliate, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Affiliate{}, domain.ErrAffiliateNotFound
		}
		return domain.Affiliate{}, err
	}

	return affiliate, nil
}

func (r *AffiliateRepository) FindByEmail(ctx context.Context, email string) (domain.Affiliate, error) {
	var affiliate domain.Affiliate

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&affiliate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Affiliate{}, domain.ErrAffiliateNotFound
		}
		return domain.Affiliate{}, err
	}

	return affiliate, nil
}

// UpdatePostbackURL is the only mutable affiliate setting besides the
// password. Tracking codes are immutable.
func (r *AffiliateRepository) UpdatePostbackURL(ctx context.Context, id uint, url string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Affiliate{}).
		Where("id = ?", id).Update("postback_url", url)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrAffiliateNotFound
	}

	return nil
}

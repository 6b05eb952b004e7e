package postgres

import (
	"context"
	"errors"
	"myBetPartners/domain"

	"gorm.io/gorm"
)

type HouseRepository struct {
	DB *gorm.DB
}

func NewHouseRepository(db *gorm.DB) *HouseRepository {
	return &HouseRepository{
		DB: db,
	}
}

func (r *HouseRepository) Create(ctx context.Context, house *domain.PartnerHouse) error {
	if err := r.DB.WithContext(ctx).Create(house).Error; err != nil {
		return err
	}

	return nil
}

func (r *HouseRepository) FindBySlug(ctx context.Context, slug string) (domain.PartnerHouse, error) {
	var house domain.PartnerHouse

	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&house).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PartnerHouse{}, domain.ErrHouseNotFound
		}
		return domain.PartnerHouse{}, err
	}

	return house, nil
}

func (r *HouseRepository) FindByID(ctx context.Context, id uint) (domain.PartnerHouse, error) {
	var house domain.PartnerHouse

	err := r.DB.WithContext(ctx).First(&house, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PartnerHouse{}, domain.ErrHouseNotFound
		}
		return domain.PartnerHouse{}, err
	}

	return house, nil
}

func (r *HouseRepository) FindAll(ctx context.Context) ([]domain.PartnerHouse, error) {
	var houses []domain.PartnerHouse

	if err := r.DB.WithContext(ctx).Order("id").Find(&houses).Error; err != nil {
		return nil, err
	}

	return houses, nil
}

// Update writes the administrator-editable columns only. Slug and security
// token never change after creation.
func (r *HouseRepository) Update(ctx context.Context, house *domain.PartnerHouse) error {
	result := r.DB.WithContext(ctx).Model(&domain.PartnerHouse{}).
		Where("id = ?", house.ID).
		Select("name", "redirect_url", "commission_model", "cpa_value",
			"revshare_percent", "enabled_events", "param_mapping", "updated_at").
		Updates(house)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrHouseNotFound
	}

	return nil
}

// Deactivate soft-disables a house. Rows are never deleted because the
// ledger references them.
func (r *HouseRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Model(&domain.PartnerHouse{}).
		Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrHouseNotFound
	}

	return nil
}

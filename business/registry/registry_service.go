package registry

import (
	"context"
	"errors"
	"fmt"
	"myBetPartners/domain"
	"myBetPartners/pkg/logger"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// HouseRepository contract interface
type HouseRepository interface {
	Create(ctx context.Context, house *domain.PartnerHouse) error
	FindBySlug(ctx context.Context, slug string) (domain.PartnerHouse, error)
	FindByID(ctx context.Context, id uint) (domain.PartnerHouse, error)
	FindAll(ctx context.Context) ([]domain.PartnerHouse, error)
	Update(ctx context.Context, house *domain.PartnerHouse) error
	Deactivate(ctx context.Context, id uint) error
}

// HouseCache contract interface; lookups survive a dead cache.
type HouseCache interface {
	Get(ctx context.Context, slug string) (domain.PartnerHouse, error)
	Set(ctx context.Context, house domain.PartnerHouse) error
	Invalidate(ctx context.Context, slug string) error
}

type registryService struct {
	houseRepo HouseRepository
	cache     HouseCache
	validate  *validator.Validate
}

func NewRegistryService(houseRepo HouseRepository, cache HouseCache, validate *validator.Validate) *registryService {
	return &registryService{
		houseRepo: houseRepo,
		cache:     cache,
		validate:  validate,
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,62}$`)

var canonicalParams = map[string]bool{
	"subid":       true,
	"amount":      true,
	"customer_id": true,
}

// LookupBySlug serves the postback pipeline. A miss is an expected,
// frequent condition; only infrastructure failures are logged as errors.
func (s *registryService) LookupBySlug(ctx context.Context, slug string) (domain.PartnerHouse, error) {
	if s.cache != nil {
		house, err := s.cache.Get(ctx, slug)
		if err == nil {
			return house, nil
		}
	}

	house, err := s.houseRepo.FindBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, domain.ErrHouseNotFound) {
			logger.Error("Failed to look up partner house", err)
		}
		return domain.PartnerHouse{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, house); err != nil {
			logger.Warn("Failed to cache partner house", err)
		}
	}

	return house, nil
}

type HouseInput struct {
	Name            string   `validate:"required"`
	Slug            string   `validate:"required"`
	RedirectURL     string   `validate:"required,url"`
	CommissionModel string   `validate:"required"`
	CPAValue        string
	RevSharePercent string
	EnabledEvents   []string `validate:"required,min=1"`
	ParamMapping    map[string]string
}

// CreateHouse registers a partner house. The slug and the generated
// security token are immutable afterwards; commission parameters are
// validated here so the calculator can assume well-formed configuration.
func (s *registryService) CreateHouse(ctx context.Context, input HouseInput) (domain.PartnerHouse, error) {
	house, err := s.houseFromInput(input)
	if err != nil {
		return domain.PartnerHouse{}, err
	}

	if !slugPattern.MatchString(input.Slug) {
		return domain.PartnerHouse{}, errors.New("slug must be lowercase letters, digits, dashes or underscores")
	}
	house.Slug = input.Slug

	_, err = s.houseRepo.FindBySlug(ctx, input.Slug)
	if err == nil {
		return domain.PartnerHouse{}, errors.New("slug already registered")
	}
	if !errors.Is(err, domain.ErrHouseNotFound) {
		return domain.PartnerHouse{}, err
	}

	house.SecurityToken = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	house.Active = true

	if err := s.houseRepo.Create(ctx, &house); err != nil {
		logger.Error("Failed to create partner house", err)
		return domain.PartnerHouse{}, fmt.Errorf("failed to create partner house: %w", err)
	}

	logger.Info("Partner house created", "slug", house.Slug, "model", house.CommissionModel)

	return house, nil
}

// UpdateHouse edits the mutable columns of a house. Slug and token are
// ignored even if supplied.
func (s *registryService) UpdateHouse(ctx context.Context, id uint, input HouseInput) (domain.PartnerHouse, error) {
	existing, err := s.houseRepo.FindByID(ctx, id)
	if err != nil {
		return domain.PartnerHouse{}, err
	}

	house, err := s.houseFromInput(input)
	if err != nil {
		return domain.PartnerHouse{}, err
	}

	house.ID = existing.ID
	if err := s.houseRepo.Update(ctx, &house); err != nil {
		logger.Error("Failed to update partner house", err)
		return domain.PartnerHouse{}, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, existing.Slug); err != nil {
			logger.Warn("Failed to invalidate house cache", err)
		}
	}

	return s.houseRepo.FindByID(ctx, id)
}

func (s *registryService) DeactivateHouse(ctx context.Context, id uint) error {
	existing, err := s.houseRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.houseRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, existing.Slug); err != nil {
			logger.Warn("Failed to invalidate house cache", err)
		}
	}

	logger.Info("Partner house deactivated", "slug", existing.Slug)

	return nil
}

func (s *registryService) GetHouse(ctx context.Context, id uint) (domain.PartnerHouse, error) {
	return s.houseRepo.FindByID(ctx, id)
}

func (s *registryService) ListHouses(ctx context.Context) ([]domain.PartnerHouse, error) {
	return s.houseRepo.FindAll(ctx)
}

func (s *registryService) houseFromInput(input HouseInput) (domain.PartnerHouse, error) {
	if err := s.validate.Struct(&input); err != nil {
		return domain.PartnerHouse{}, err
	}

	model := strings.ToUpper(input.CommissionModel)
	switch model {
	case domain.ModelCPA, domain.ModelRevShare, domain.ModelHybrid:
	default:
		return domain.PartnerHouse{}, errors.New("unknown commission model")
	}

	cpaValue, err := parseConfigValue(input.CPAValue)
	if err != nil {
		return domain.PartnerHouse{}, fmt.Errorf("invalid cpa value: %w", err)
	}

	revshare, err := parseConfigValue(input.RevSharePercent)
	if err != nil {
		return domain.PartnerHouse{}, fmt.Errorf("invalid revshare percent: %w", err)
	}

	if (model == domain.ModelCPA || model == domain.ModelHybrid) && !cpaValue.IsPositive() {
		return domain.PartnerHouse{}, errors.New("cpa value is required for this model")
	}
	if (model == domain.ModelRevShare || model == domain.ModelHybrid) && !revshare.IsPositive() {
		return domain.PartnerHouse{}, errors.New("revshare percent is required for this model")
	}

	for _, kind := range input.EnabledEvents {
		if !domain.ValidEventKind(domain.EventKind(kind)) {
			return domain.PartnerHouse{}, fmt.Errorf("unknown event kind %q", kind)
		}
	}

	for name, canonical := range input.ParamMapping {
		if name == "" || !canonicalParams[canonical] {
			return domain.PartnerHouse{}, fmt.Errorf("parameter %q must map to subid, amount or customer_id", name)
		}
	}

	return domain.PartnerHouse{
		Name:            input.Name,
		RedirectURL:     input.RedirectURL,
		CommissionModel: model,
		CPAValue:        cpaValue,
		RevSharePercent: revshare,
		EnabledEvents:   datatypes.NewJSONSlice(input.EnabledEvents),
		ParamMapping:    datatypes.NewJSONType(input.ParamMapping),
	}, nil
}

// parseConfigValue rejects malformed or negative configured values at
// creation time so the calculator never sees them.
func parseConfigValue(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, errors.New("must not be negative")
	}

	return value, nil
}

package affiliate

import (
	"context"
	"errors"
	"fmt"
	"myBetPartners/domain"
	"myBetPartners/pkg/logger"
	"myBetPartners/pkg/utils"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// AffiliateRepository contract interface
type AffiliateRepository interface {
	Create(ctx context.Context, affiliate *domain.Affiliate) error
	FindByTrackingCode(ctx context.Context, code string) (domain.Affiliate, error)
	FindByID(ctx context.Context, id uint) (domain.Affiliate, error)
	FindByEmail(ctx context.Context, email string) (domain.Affiliate, error)
	UpdatePostbackURL(ctx context.Context, id uint, url string) error
}

type affiliateService struct {
	affiliateRepo AffiliateRepository
	validate      *validator.Validate
}

func NewAffiliateService(affiliateRepo AffiliateRepository, validate *validator.Validate) *affiliateService {
	return &affiliateService{
		affiliateRepo: affiliateRepo,
		validate:      validate,
	}
}

const (
	RoleAffiliate = "affiliate"
	RoleAdmin     = "admin"
)

var trackingCodePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_]{2,31}$`)

// ResolveByTrackingCode serves the postback pipeline. An unknown code is
// a normal failure mode; partners echo back stale or fabricated subids.
func (s *affiliateService) ResolveByTrackingCode(ctx context.Context, code string) (domain.Affiliate, error) {
	affiliate, err := s.affiliateRepo.FindByTrackingCode(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrAffiliateNotFound) {
			logger.Error("Failed to resolve tracking code", err)
		}
		return domain.Affiliate{}, err
	}

	return affiliate, nil
}

func (s *affiliateService) Register(ctx context.Context, affiliate *domain.Affiliate) (domain.Affiliate, error) {
	if err := s.validate.Var(affiliate.Email, "required,email"); err != nil {
		return domain.Affiliate{}, errors.New("invalid email format")
	}

	if err := s.validate.Var(affiliate.Password, "required,min=6"); err != nil {
		return domain.Affiliate{}, errors.New("password must be at least 6 characters")
	}

	if !trackingCodePattern.MatchString(affiliate.TrackingCode) {
		return domain.Affiliate{}, errors.New("tracking code must be 3-32 letters, digits or underscores")
	}

	// Tracking codes join postbacks to commission recipients and can
	// never be reassigned.
	existing, err := s.affiliateRepo.FindByTrackingCode(ctx, affiliate.TrackingCode)
	if err == nil && existing.ID > 0 {
		return domain.Affiliate{}, errors.New("tracking code already taken")
	}

	existing, err = s.affiliateRepo.FindByEmail(ctx, affiliate.Email)
	if err == nil && existing.ID > 0 {
		return domain.Affiliate{}, errors.New("email already registered")
	}

	passwordHash, err := utils.HashPassword(affiliate.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.Affiliate{}, errors.New("failed to hash password")
	}

	newAffiliate := domain.Affiliate{
		TrackingCode: affiliate.TrackingCode,
		Email:        affiliate.Email,
		Password:     passwordHash,
		Role:         RoleAffiliate,
	}

	if err := s.affiliateRepo.Create(ctx, &newAffiliate); err != nil {
		logger.Error("Failed to create affiliate", err)
		return domain.Affiliate{}, fmt.Errorf("failed to create affiliate: %w", err)
	}

	logger.Info("Affiliate registered", "tracking_code", newAffiliate.TrackingCode)

	return newAffiliate, nil
}

func (s *affiliateService) Login(ctx context.Context, email, password string) (string, domain.Affiliate, error) {
	affiliate, err := s.affiliateRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", domain.Affiliate{}, errors.New("invalid email or password")
	}

	if !utils.CheckPassword(affiliate.Password, password) {
		return "", domain.Affiliate{}, errors.New("invalid email or password")
	}

	token, err := utils.GenerateJWT(strconv.FormatUint(uint64(affiliate.ID), 10), affiliate.Role)
	if err != nil {
		logger.Error("Failed to generate JWT", err)
		return "", domain.Affiliate{}, errors.New("failed to generate token")
	}

	return token, affiliate, nil
}

func (s *affiliateService) GetProfile(ctx context.Context, id uint) (domain.Affiliate, error) {
	return s.affiliateRepo.FindByID(ctx, id)
}

// SetPostbackURL points outbound conversion forwarding at the affiliate's
// own endpoint. An empty URL turns forwarding off.
func (s *affiliateService) SetPostbackURL(ctx context.Context, id uint, url string) error {
	if url != "" {
		if err := s.validate.Var(url, "url"); err != nil {
			return errors.New("invalid postback url")
		}
	}

	return s.affiliateRepo.UpdatePostbackURL(ctx, id, url)
}

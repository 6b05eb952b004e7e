package rest

import (
	"context"
	"myBetPartners/domain"
	"myBetPartners/pkg/logger"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	AffiliatesHandler struct {
		validate         *validator.Validate
		affiliateService AffiliateService
	}

	AffiliateService interface {
		Register(ctx context.Context, affiliate *domain.Affiliate) (domain.Affiliate, error)
		Login(ctx context.Context, email, password string) (string, domain.Affiliate, error)
		GetProfile(ctx context.Context, id uint) (domain.Affiliate, error)
		SetPostbackURL(ctx context.Context, id uint, url string) error
	}

	RegisterInput struct {
		TrackingCode string `json:"tracking_code" validate:"required"`
		Email        string `json:"email" validate:"required,email"`
		Password     string `json:"password" validate:"required,min=6"`
	}

	LoginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token     string           `json:"token"`
		Affiliate domain.Affiliate `json:"affiliate"`
	}

	PostbackURLInput struct {
		PostbackURL string `json:"postback_url"`
	}
)

func NewAffiliatesHandler(affiliateService AffiliateService) *AffiliatesHandler {
	return &AffiliatesHandler{
		validate:         validator.New(),
		affiliateService: affiliateService,
	}
}

func (h *AffiliatesHandler) Register(c echo.Context) error {
	var request RegisterInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed affiliate registration validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	affiliate, err := h.affiliateService.Register(c.Request().Context(), &domain.Affiliate{
		TrackingCode: request.TrackingCode,
		Email:        request.Email,
		Password:     request.Password,
	})
	if err != nil {
		logger.Error("Failed to register affiliate", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(affiliate))
}

func (h *AffiliatesHandler) Login(c echo.Context) error {
	var request LoginInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	token, affiliate, err := h.affiliateService.Login(c.Request().Context(), request.Email, request.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(LoginResponse{
		Token:     token,
		Affiliate: affiliate,
	}))
}

func (h *AffiliatesHandler) GetProfile(c echo.Context) error {
	affiliateID := c.Get("user_id").(uint)

	affiliate, err := h.affiliateService.GetProfile(c.Request().Context(), affiliateID)
	if err != nil {
		logger.Error("Failed to get affiliate profile", err)
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(affiliate))
}

func (h *AffiliatesHandler) SetPostbackURL(c echo.Context) error {
	affiliateID := c.Get("user_id").(uint)

	var request PostbackURLInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.affiliateService.SetPostbackURL(c.Request().Context(), affiliateID, request.PostbackURL); err != nil {
		logger.Error("Failed to set postback url", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Postback URL updated successfully"))
}

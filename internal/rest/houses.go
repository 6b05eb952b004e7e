package rest

import (
	"context"
	"errors"
	"fmt"
	"myBetPartners/business/registry"
	"myBetPartners/domain"
	"myBetPartners/pkg/logger"
	"net/http"
	"strconv"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	HousesHandler struct {
		validate        *validator.Validate
		registryService RegistryService
	}

	RegistryService interface {
		CreateHouse(ctx context.Context, input registry.HouseInput) (domain.PartnerHouse, error)
		UpdateHouse(ctx context.Context, id uint, input registry.HouseInput) (domain.PartnerHouse, error)
		DeactivateHouse(ctx context.Context, id uint) error
		GetHouse(ctx context.Context, id uint) (domain.PartnerHouse, error)
		ListHouses(ctx context.Context) ([]domain.PartnerHouse, error)
	}

	HouseInput struct {
		Name            string            `json:"name" validate:"required"`
		Slug            string            `json:"slug" validate:"required"`
		RedirectURL     string            `json:"redirect_url" validate:"required"`
		CommissionModel string            `json:"commission_model" validate:"required"`
		CPAValue        string            `json:"cpa_value"`
		RevSharePercent string            `json:"revshare_percent"`
		EnabledEvents   []string          `json:"enabled_events" validate:"required"`
		ParamMapping    map[string]string `json:"param_mapping"`
	}

	// HouseCreatedResponse is the only place the security token is ever
	// shown; the administrator hands it to the partner house once.
	HouseCreatedResponse struct {
		domain.PartnerHouse
		SecurityToken   string `json:"security_token"`
		PostbackURLHint string `json:"postback_url_hint"`
	}
)

func NewHousesHandler(registryService RegistryService) *HousesHandler {
	return &HousesHandler{
		validate:        validator.New(),
		registryService: registryService,
	}
}

func (h *HousesHandler) CreateHouse(c echo.Context) error {
	var request HouseInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed house input validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	house, err := h.registryService.CreateHouse(c.Request().Context(), registry.HouseInput{
		Name:            request.Name,
		Slug:            request.Slug,
		RedirectURL:     request.RedirectURL,
		CommissionModel: request.CommissionModel,
		CPAValue:        request.CPAValue,
		RevSharePercent: request.RevSharePercent,
		EnabledEvents:   request.EnabledEvents,
		ParamMapping:    request.ParamMapping,
	})
	if err != nil {
		logger.Error("Failed to create partner house", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(HouseCreatedResponse{
		PartnerHouse:    house,
		SecurityToken:   house.SecurityToken,
		PostbackURLHint: fmt.Sprintf("/postback/%s/{event}/%s?subid={subid}", house.Slug, house.SecurityToken),
	}))
}

func (h *HousesHandler) GetHouseByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid house id"})
	}

	house, err := h.registryService.GetHouse(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrHouseNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get partner house", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(house))
}

func (h *HousesHandler) GetAllHouses(c echo.Context) error {
	houses, err := h.registryService.ListHouses(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list partner houses", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(houses))
}

func (h *HousesHandler) UpdateHouse(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid house id"})
	}

	var request HouseInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	house, err := h.registryService.UpdateHouse(c.Request().Context(), uint(id), registry.HouseInput{
		Name:            request.Name,
		Slug:            request.Slug,
		RedirectURL:     request.RedirectURL,
		CommissionModel: request.CommissionModel,
		CPAValue:        request.CPAValue,
		RevSharePercent: request.RevSharePercent,
		EnabledEvents:   request.EnabledEvents,
		ParamMapping:    request.ParamMapping,
	})
	if err != nil {
		if errors.Is(err, domain.ErrHouseNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to update partner house", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(house))
}

func (h *HousesHandler) DeactivateHouse(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid house id"})
	}

	if err := h.registryService.DeactivateHouse(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrHouseNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to deactivate partner house", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("House deactivated successfully"))
}

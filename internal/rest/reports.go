package rest

import (
	"context"
	"myBetPartners/business/reports"
	"myBetPartners/domain"
	"myBetPartners/pkg/logger"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	ReportsHandler struct {
		reportsService ReportsService
	}

	ReportsService interface {
		AffiliateConversions(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.ConversionEvent, error)
		AffiliateCommissions(ctx context.Context, affiliateID uint, from, to time.Time) ([]domain.CommissionRecord, error)
		AffiliateSummary(ctx context.Context, affiliateID uint) (reports.Summary, error)
		HouseConversions(ctx context.Context, houseID uint, from, to time.Time) ([]domain.ConversionEvent, error)
		HouseCommissions(ctx context.Context, houseID uint, from, to time.Time) ([]domain.CommissionRecord, error)
		RecentPostbacks(ctx context.Context, houseSlug, status string, limit int) ([]domain.PostbackAuditEntry, error)
	}
)

func NewReportsHandler(reportsService ReportsService) *ReportsHandler {
	return &ReportsHandler{
		reportsService: reportsService,
	}
}

// affiliateScope resolves which affiliate the caller may read. Affiliates
// only ever see themselves; admins can name anyone via ?affiliate_id.
func affiliateScope(c echo.Context) (uint, bool) {
	callerID := c.Get("user_id").(uint)
	role, _ := c.Get("role").(string)

	if strings.EqualFold(role, "admin") {
		if raw := c.QueryParam("affiliate_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return 0, false
			}
			return uint(id), true
		}
	}

	return callerID, true
}

func (h *ReportsHandler) GetAffiliateConversions(c echo.Context) error {
	affiliateID, ok := affiliateScope(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid affiliate id"})
	}

	from, to, err := parseTimeRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid time range"})
	}

	events, err := h.reportsService.AffiliateConversions(c.Request().Context(), affiliateID, from, to)
	if err != nil {
		logger.Error("Failed to query affiliate conversions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}

func (h *ReportsHandler) GetAffiliateCommissions(c echo.Context) error {
	affiliateID, ok := affiliateScope(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid affiliate id"})
	}

	from, to, err := parseTimeRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid time range"})
	}

	records, err := h.reportsService.AffiliateCommissions(c.Request().Context(), affiliateID, from, to)
	if err != nil {
		logger.Error("Failed to query affiliate commissions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(records))
}

func (h *ReportsHandler) GetAffiliateSummary(c echo.Context) error {
	affiliateID, ok := affiliateScope(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid affiliate id"})
	}

	summary, err := h.reportsService.AffiliateSummary(c.Request().Context(), affiliateID)
	if err != nil {
		logger.Error("Failed to build affiliate summary", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

func (h *ReportsHandler) GetHouseConversions(c echo.Context) error {
	houseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid house id"})
	}

	from, to, err := parseTimeRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid time range"})
	}

	events, err := h.reportsService.HouseConversions(c.Request().Context(), uint(houseID), from, to)
	if err != nil {
		logger.Error("Failed to query house conversions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}

func (h *ReportsHandler) GetHouseCommissions(c echo.Context) error {
	houseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid house id"})
	}

	from, to, err := parseTimeRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid time range"})
	}

	records, err := h.reportsService.HouseCommissions(c.Request().Context(), uint(houseID), from, to)
	if err != nil {
		logger.Error("Failed to query house commissions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(records))
}

func (h *ReportsHandler) GetRecentPostbacks(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.reportsService.RecentPostbacks(
		c.Request().Context(),
		c.QueryParam("house"),
		c.QueryParam("status"),
		limit,
	)
	if err != nil {
		logger.Error("Failed to query postback audit log", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(entries))
}

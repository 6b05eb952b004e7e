package rest

import (
	"context"
	"myBetPartners/business/postback"
	"myBetPartners/domain"
	"myBetPartners/pkg/metrics"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type (
	PostbackHandler struct {
		postbackService PostbackService
	}

	PostbackService interface {
		Ingest(ctx context.Context, req postback.Request) postback.Result
	}

	// PostbackSuccessResponse is the acceptance envelope. Partners only
	// need the status code, but the body aids their debugging.
	PostbackSuccessResponse struct {
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		Commission string `json:"commission"`
		Type       string `json:"type,omitempty"`
		Affiliate  string `json:"affiliate"`
		House      string `json:"house"`
	}

	// PostbackErrorResponse carries a stable machine-readable status so
	// partners can tell a mistyped slug from a bad token.
	PostbackErrorResponse struct {
		Error  string `json:"error"`
		Status string `json:"status,omitempty"`
	}
)

func NewPostbackHandler(postbackService PostbackService) *PostbackHandler {
	return &PostbackHandler{
		postbackService: postbackService,
	}
}

// HandlePostback is the inbound webhook: GET /postback/:house/:event/:token.
// The URL shape is a deployed contract with partner houses and must not
// change.
func (h *PostbackHandler) HandlePostback(c echo.Context) error {
	start := time.Now()

	req := postback.Request{
		HouseSlug: c.Param("house"),
		EventKind: c.Param("event"),
		Token:     c.Param("token"),
		Params:    c.QueryParams(),
		RawQuery:  c.QueryString(),
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}

	result := h.postbackService.Ingest(c.Request().Context(), req)

	metrics.PostbackDuration.Observe(time.Since(start).Seconds())
	metrics.PostbackTotal.WithLabelValues(result.Status).Inc()
	if result.Status == domain.PostbackSuccess && result.Commission.IsPositive() {
		metrics.CommissionCredited.WithLabelValues(result.CommissionType).
			Add(result.Commission.InexactFloat64())
	}

	if result.Accepted() {
		return c.JSON(result.HTTPStatus, PostbackSuccessResponse{
			Success:    true,
			Message:    result.Message,
			Commission: result.Commission.StringFixed(2),
			Type:       result.CommissionType,
			Affiliate:  result.Affiliate,
			House:      result.House,
		})
	}

	if result.HTTPStatus == http.StatusInternalServerError {
		return c.JSON(http.StatusInternalServerError, PostbackErrorResponse{
			Error: "internal error",
		})
	}

	return c.JSON(result.HTTPStatus, PostbackErrorResponse{
		Error:  result.Message,
		Status: result.Status,
	})
}

package middleware

import (
	"myBetPartners/pkg/logger"
	"net/http"

	jsonres "myBetPartners/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler keeps every unhandled error as a JSON envelope. Partner
// houses and API clients never see HTML error pages or stack traces.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal error"

	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", err, "path", c.Request().URL.Path)
	}

	if err := c.JSON(code, jsonres.Error(http.StatusText(code), message, nil)); err != nil {
		logger.Error("Failed to write error response", err)
	}
}

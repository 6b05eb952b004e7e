package router

import (
	"myBetPartners/internal/rest"

	"github.com/labstack/echo/v4"
)

// SetPostbackRoutes registers the inbound webhook outside the versioned
// API group; the path shape is a deployed contract with partner houses.
func SetPostbackRoutes(e *echo.Echo, handler *rest.PostbackHandler) {
	e.GET("/postback/:house/:event/:token", handler.HandlePostback)
}

func SetupAffiliateRoutes(api *echo.Group, handler *rest.AffiliatesHandler, authRequired echo.MiddlewareFunc) {
	affiliates := api.Group("/affiliates")

	affiliates.POST("/register", handler.Register)
	affiliates.POST("/login", handler.Login)

	affiliates.GET("/me", handler.GetProfile, authRequired)
	affiliates.PUT("/me/postback-url", handler.SetPostbackURL, authRequired)
}

func SetupHouseRoutes(api *echo.Group, handler *rest.HousesHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	houses := api.Group("/houses", authRequired, adminOnly)

	houses.POST("", handler.CreateHouse)
	houses.GET("", handler.GetAllHouses)
	houses.GET("/:id", handler.GetHouseByID)
	houses.PUT("/:id", handler.UpdateHouse)
	houses.DELETE("/:id", handler.DeactivateHouse)
}

func SetupReportRoutes(api *echo.Group, handler *rest.ReportsHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	reports := api.Group("/reports", authRequired)

	reports.GET("/conversions", handler.GetAffiliateConversions)
	reports.GET("/commissions", handler.GetAffiliateCommissions)
	reports.GET("/summary", handler.GetAffiliateSummary)

	reports.GET("/houses/:id/conversions", handler.GetHouseConversions, adminOnly)
	reports.GET("/houses/:id/commissions", handler.GetHouseCommissions, adminOnly)
	reports.GET("/postbacks", handler.GetRecentPostbacks, adminOnly)
}

package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const requestIDHeader = "X-Request-Id"

// RegisterRoutes wires all API endpoints.
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	api := e.Group("/api", RequestID)

	api.GET("/health", h.HealthStatus)
	api.GET("/tokens", h.ListTokens)
	api.GET("/tokens/:mint", h.GetToken)
	api.POST("/quote", h.Quote, SetNoCacheHeaders)
	api.POST("/trade", h.Trade, SetNoCacheHeaders)
}

// RequestID assigns a request id when the client did not send one.
func RequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Response().Header().Set(requestIDHeader, id)
		c.Set("request_id", id)
		return next(c)
	}
}

// SetNoCacheHeaders middleware prevents caching of quote/trade responses:
// both are valid only for the instant their reserves were read.
func SetNoCacheHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return next(c)
	}
}

// CORS returns middleware for the browser dashboard origin.
func CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderContentType, requestIDHeader},
	})
}

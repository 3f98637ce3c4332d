package settings

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		settingService: NewService(db),
	}

	e.GET("/settings", h.list)
	e.PUT("/settings/:key", h.update)
}

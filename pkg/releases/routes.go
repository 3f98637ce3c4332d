package releases

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		releaseService: NewService(db),
	}

	e.GET("/releases", h.list)
	e.GET("/releases/:id", h.retrieve)
	e.PATCH("/releases/:id", h.update)
	e.DELETE("/releases/:id", h.deleteRelease)
}

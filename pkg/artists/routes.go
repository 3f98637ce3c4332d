package artists

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		artistService: NewService(db),
	}

	e.GET("/artists", h.list)
	e.GET("/artists/:id", h.retrieve)
	e.PATCH("/artists/:id", h.update)
	e.DELETE("/artists/:id", h.deleteArtist)
}

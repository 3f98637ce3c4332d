package importer

import (
	"github.com/kanademusic/kanade/pkg/jobs"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		importService: NewService(db),
		jobService:    jobs.NewService(db),
	}

	e.POST("/import/scan", h.scan)
	e.GET("/import/unmatched", h.listUnmatched)
	e.POST("/import/unmatched/:id/match", h.match)
	e.POST("/import/unmatched/:id/ignore", h.ignore)
}

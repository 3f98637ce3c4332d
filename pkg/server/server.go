package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kanademusic/kanade/pkg/artists"
	"github.com/kanademusic/kanade/pkg/binder"
	"github.com/kanademusic/kanade/pkg/config"
	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/filesystem"
	"github.com/kanademusic/kanade/pkg/importer"
	"github.com/kanademusic/kanade/pkg/jobs"
	"github.com/kanademusic/kanade/pkg/releases"
	"github.com/kanademusic/kanade/pkg/settings"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	artists.RegisterRoutes(e, db)
	releases.RegisterRoutes(e, db)
	importer.RegisterRoutes(e, db)
	jobs.RegisterRoutes(e, db)
	settings.RegisterRoutes(e, db)
	filesystem.RegisterRoutes(e)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}

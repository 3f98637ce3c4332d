package importer

import (
	"net/http"
	"strconv"

	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/jobs"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	importService *Service
	jobService    *jobs.Service
}

// scan enqueues a scan job instead of walking the import folder inside the
// request; the worker picks it up within its polling interval.
func (h *handler) scan(c echo.Context) error {
	ctx := c.Request().Context()

	hasActive, err := h.jobService.HasActiveJobByType(ctx, models.JobTypeScan)
	if err != nil {
		return errors.WithStack(err)
	}
	if hasActive {
		return errcodes.Conflict("A scan job is already running or pending.")
	}

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}

func (h *handler) listUnmatched(c echo.Context) error {
	ctx := c.Request().Context()

	files, err := h.importService.ListUnmatchedFiles(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, files))
}

func (h *handler) match(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Unmatched file")
	}

	ok, err := h.importService.MatchUnmatchedFile(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Success bool `json:"success"`
	}{ok}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) ignore(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Unmatched file")
	}

	file, err := h.importService.IgnoreUnmatchedFile(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, file))
}

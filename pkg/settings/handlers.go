package settings

import (
	"net/http"

	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	settingService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.settingService.List(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, settings))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	key := c.Param("key")
	if !isKnownKey(key) {
		return errcodes.NotFound("Setting")
	}

	params := UpdateSettingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	setting, err := h.settingService.Upsert(ctx, key, params.Value)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, setting))
}

func isKnownKey(key string) bool {
	switch key {
	case models.SettingLibraryFolderPath,
		models.SettingImportFolderPath,
		models.SettingFileRenamePattern,
		models.SettingFolderStructurePattern:
		return true
	}
	return false
}

package releases

import (
	"net/http"
	"strconv"

	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	releaseService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListReleasesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	releases, total, err := h.releaseService.ListReleasesWithTotal(ctx, ListReleasesOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		ArtistID: params.ArtistID,
		Type:     params.Type,
		Search:   params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Releases []*models.Release `json:"releases"`
		Total    int               `json:"total"`
	}{releases, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Release")
	}

	release, err := h.releaseService.RetrieveRelease(ctx, RetrieveReleaseOptions{
		ID:            &id,
		IncludeTracks: true,
		IncludeArtist: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, release))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Release")
	}

	params := UpdateReleasePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	release, err := h.releaseService.RetrieveRelease(ctx, RetrieveReleaseOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateReleaseOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != release.Title {
		release.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Year != nil {
		release.Year = params.Year
		opts.Columns = append(opts.Columns, "year")
	}
	if params.Type != nil && *params.Type != release.Type {
		release.Type = *params.Type
		opts.Columns = append(opts.Columns, "type")
	}
	if params.CoverURL != nil {
		release.CoverURL = params.CoverURL
		opts.Columns = append(opts.Columns, "cover_url")
	}
	if params.MusicbrainzID != nil {
		release.MusicbrainzID = params.MusicbrainzID
		opts.Columns = append(opts.Columns, "musicbrainz_id")
	}
	if params.DeezerID != nil {
		release.DeezerID = params.DeezerID
		opts.Columns = append(opts.Columns, "deezer_id")
	}
	if params.DiscogsID != nil {
		release.DiscogsID = params.DiscogsID
		opts.Columns = append(opts.Columns, "discogs_id")
	}

	err = h.releaseService.UpdateRelease(ctx, release, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	release, err = h.releaseService.RetrieveRelease(ctx, RetrieveReleaseOptions{
		ID:            &id,
		IncludeTracks: true,
		IncludeArtist: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, release))
}

func (h *handler) deleteRelease(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Release")
	}

	release, err := h.releaseService.RetrieveRelease(ctx, RetrieveReleaseOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.releaseService.DeleteRelease(ctx, release)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

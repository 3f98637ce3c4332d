package artists

import (
	"net/http"
	"strconv"

	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	artistService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListArtistsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	artists, total, err := h.artistService.ListArtistsWithTotal(ctx, ListArtistsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Artists []*models.Artist `json:"artists"`
		Total   int              `json:"total"`
	}{artists, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Artist")
	}

	artist, err := h.artistService.RetrieveArtist(ctx, RetrieveArtistOptions{
		ID:              &id,
		IncludeReleases: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, artist))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Artist")
	}

	params := UpdateArtistPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	artist, err := h.artistService.RetrieveArtist(ctx, RetrieveArtistOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateArtistOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != artist.Name {
		artist.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.MusicbrainzID != nil {
		artist.MusicbrainzID = params.MusicbrainzID
		opts.Columns = append(opts.Columns, "musicbrainz_id")
	}
	if params.DeezerID != nil {
		artist.DeezerID = params.DeezerID
		opts.Columns = append(opts.Columns, "deezer_id")
	}
	if params.DiscogsID != nil {
		artist.DiscogsID = params.DiscogsID
		opts.Columns = append(opts.Columns, "discogs_id")
	}
	if params.ImageURL != nil {
		artist.ImageURL = params.ImageURL
		opts.Columns = append(opts.Columns, "image_url")
	}

	err = h.artistService.UpdateArtist(ctx, artist, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	artist, err = h.artistService.RetrieveArtist(ctx, RetrieveArtistOptions{
		ID:              &id,
		IncludeReleases: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, artist))
}

func (h *handler) deleteArtist(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Artist")
	}

	// Confirm existence first so a bogus ID gets a 404 instead of a no-op.
	_, err = h.artistService.RetrieveArtist(ctx, RetrieveArtistOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.artistService.DeleteArtist(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

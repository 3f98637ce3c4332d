package importer

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kanademusic/kanade/pkg/audiofile"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// collaborationSeparators are checked in priority order when deriving the
// lead credit from a contributing-artist string.
var collaborationSeparators = []string{" feat. ", " ft. ", " & ", " with "}

// PrimaryArtistName derives the lead-credit artist from a collaboration
// string, e.g. "A feat. B" becomes "A".
func PrimaryArtistName(name string) string {
	if name == "" {
		return audiofile.UnknownArtist
	}
	for _, sep := range collaborationSeparators {
		if idx := strings.Index(name, sep); idx != -1 {
			return strings.TrimSpace(name[:idx])
		}
	}
	return name
}

// primaryAlbumArtistName takes the first semicolon- or slash-separated token
// of an album-artist tag, which frequently lists every collaborator.
func primaryAlbumArtistName(name string) string {
	if idx := strings.Index(name, ";"); idx != -1 {
		name = name[:idx]
	}
	if idx := strings.Index(name, "/"); idx != -1 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

// resolveArtist finds or creates the Artist for a file. Lookups are exact
// name matches; fuzzy matching is deliberately avoided since we're
// reconciling the user's own tags, and inconsistent tagging should surface
// for review instead of being silently merged.
func resolveArtist(ctx context.Context, tx bun.IDB, md *audiofile.Metadata) (*models.Artist, error) {
	log := logger.FromContext(ctx)

	// The album artist, when present, is the better folder-level grouping
	// (compilations, features). Only trust it if it names a known artist.
	if md.AlbumArtist != "" {
		primary := primaryAlbumArtistName(md.AlbumArtist)
		artist, err := findArtistByName(ctx, tx, primary)
		if err != nil {
			return nil, err
		}
		if artist != nil {
			return artist, nil
		}
	}

	if md.Artist != "" && md.Artist != audiofile.UnknownArtist {
		primary := PrimaryArtistName(md.Artist)
		artist, err := findArtistByName(ctx, tx, primary)
		if err != nil {
			return nil, err
		}
		if artist != nil {
			return artist, nil
		}
	}

	// No existing row matched: get-or-create under the full contributing
	// string, which keeps "A feat. B" as its own artist until the user
	// catalogs "A" properly.
	artist, err := findArtistByName(ctx, tx, md.Artist)
	if err != nil {
		return nil, err
	}
	if artist != nil {
		return artist, nil
	}

	now := time.Now()
	artist = &models.Artist{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      md.Artist,
	}
	_, err = tx.NewInsert().Model(artist).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	log.Info("created artist", logger.Data{"artist_id": artist.ID, "name": artist.Name})

	return artist, nil
}

func findArtistByName(ctx context.Context, tx bun.IDB, name string) (*models.Artist, error) {
	artist := &models.Artist{}
	err := tx.NewSelect().Model(artist).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return artist, nil
}

// resolveRelease finds or creates the Release for a file by exact
// (artist, title) match, creating it with the year and type when absent.
func resolveRelease(ctx context.Context, tx bun.IDB, artist *models.Artist, md *audiofile.Metadata, releaseType string) (*models.Release, error) {
	log := logger.FromContext(ctx)

	release := &models.Release{}
	err := tx.NewSelect().
		Model(release).
		Where("artist_id = ?", artist.ID).
		Where("title = ?", md.Album).
		Scan(ctx)
	if err == nil {
		return release, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	release = &models.Release{
		CreatedAt: now,
		UpdatedAt: now,
		ArtistID:  artist.ID,
		Title:     md.Album,
		Year:      md.Year,
		Type:      releaseType,
	}
	_, err = tx.NewInsert().Model(release).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	_, err = tx.NewUpdate().
		Model((*models.Artist)(nil)).
		Set("album_count = (SELECT count(*) FROM releases WHERE artist_id = ?)", artist.ID).
		Where("id = ?", artist.ID).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	log.Info("created release", logger.Data{"release_id": release.ID, "title": release.Title, "type": release.Type})

	return release, nil
}

// resolveTrack finds or creates the Track by exact (release, title) match,
// recomputing the release's cached track count on create.
func resolveTrack(ctx context.Context, tx bun.IDB, release *models.Release, md *audiofile.Metadata) (*models.Track, error) {
	log := logger.FromContext(ctx)

	track := &models.Track{}
	err := tx.NewSelect().
		Model(track).
		Where("release_id = ?", release.ID).
		Where("title = ?", md.Title).
		Scan(ctx)
	if err == nil {
		return track, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	track = &models.Track{
		CreatedAt:   now,
		UpdatedAt:   now,
		ReleaseID:   release.ID,
		Title:       md.Title,
		TrackNumber: md.TrackNumber,
		DiscNumber:  md.DiscNumber,
		Duration:    md.Duration,
	}
	_, err = tx.NewInsert().Model(track).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = recomputeTrackFileCount(ctx, tx, release.ID)
	if err != nil {
		return nil, err
	}

	log.Info("created track", logger.Data{"track_id": track.ID, "title": track.Title})

	return track, nil
}

func recomputeTrackFileCount(ctx context.Context, tx bun.IDB, releaseID int) error {
	_, err := tx.NewUpdate().
		Model((*models.Release)(nil)).
		Set("track_file_count = (SELECT count(*) FROM tracks WHERE release_id = ?)", releaseID).
		Where("id = ?", releaseID).
		Exec(ctx)
	return errors.WithStack(err)
}

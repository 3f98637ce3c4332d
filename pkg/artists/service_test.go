package artists

import (
	"context"
	"database/sql"
	"testing"

	"github.com/kanademusic/kanade/pkg/migrations"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedArtist(t *testing.T, db *bun.DB, name string) *models.Artist {
	t.Helper()

	artist := &models.Artist{Name: name}
	_, err := db.NewInsert().Model(artist).Exec(context.Background())
	require.NoError(t, err)
	return artist
}

func TestListArtistsSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seedArtist(t, db, "Daft Punk")
	seedArtist(t, db, "Justice")
	seedArtist(t, db, "The Chemical Brothers")

	artists, total, err := svc.ListArtistsWithTotal(ctx, ListArtistsOptions{
		Search: pointerutil.String("Punk"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, artists, 1)
	assert.Equal(t, "Daft Punk", artists[0].Name)

	// Unfiltered list comes back sorted by name.
	artists, err = svc.ListArtists(ctx, ListArtistsOptions{})
	require.NoError(t, err)
	require.Len(t, artists, 3)
	assert.Equal(t, "Daft Punk", artists[0].Name)
	assert.Equal(t, "Justice", artists[1].Name)
}

func TestRetrieveArtistIncludesReleases(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	artist := seedArtist(t, db, "Daft Punk")
	release := &models.Release{ArtistID: artist.ID, Title: "Discovery", Type: models.ReleaseTypeAlbum}
	_, err := db.NewInsert().Model(release).Exec(ctx)
	require.NoError(t, err)

	retrieved, err := svc.RetrieveArtist(ctx, RetrieveArtistOptions{
		ID:              &artist.ID,
		IncludeReleases: true,
	})
	require.NoError(t, err)
	require.Len(t, retrieved.Releases, 1)
	assert.Equal(t, "Discovery", retrieved.Releases[0].Title)
}

func TestRetrieveArtistNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.RetrieveArtist(context.Background(), RetrieveArtistOptions{
		ID: pointerutil.Int(999),
	})
	assert.Error(t, err)
}

func TestDeleteArtistCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	artist := seedArtist(t, db, "Daft Punk")
	release := &models.Release{ArtistID: artist.ID, Title: "Discovery", Type: models.ReleaseTypeAlbum}
	_, err := db.NewInsert().Model(release).Exec(ctx)
	require.NoError(t, err)
	track := &models.Track{ReleaseID: release.ID, Title: "Aerodynamic"}
	_, err = db.NewInsert().Model(track).Exec(ctx)
	require.NoError(t, err)
	imported := &models.ImportedFile{
		Filepath:  "/library/Daft Punk/Discovery/02 - Aerodynamic.mp3",
		Filename:  "02 - Aerodynamic.mp3",
		Filesize:  192,
		Status:    models.ImportedFileStatusConfirmed,
		TrackID:   track.ID,
		ReleaseID: release.ID,
		ArtistID:  artist.ID,
	}
	_, err = db.NewInsert().Model(imported).Exec(ctx)
	require.NoError(t, err)

	// An unrelated artist must survive the cascade.
	other := seedArtist(t, db, "Justice")

	err = svc.DeleteArtist(ctx, artist.ID)
	require.NoError(t, err)

	for _, model := range []interface{}{
		(*models.Release)(nil),
		(*models.Track)(nil),
		(*models.ImportedFile)(nil),
	} {
		count, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	}

	count, err := db.NewSelect().Model((*models.Artist)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = svc.RetrieveArtist(ctx, RetrieveArtistOptions{ID: &other.ID})
	assert.NoError(t, err)
}

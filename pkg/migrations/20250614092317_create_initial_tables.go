package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE jobs (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				data TEXT NOT NULL,
				progress INTEGER NOT NULL,
				process_id TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE settings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				key TEXT NOT NULL,
				value TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_settings_key ON settings (key)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE artists (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				musicbrainz_id TEXT,
				deezer_id TEXT,
				discogs_id TEXT,
				image_url TEXT,
				album_count INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_artists_name ON artists (name)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_artists_musicbrainz_id ON artists (musicbrainz_id) WHERE musicbrainz_id IS NOT NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_artists_deezer_id ON artists (deezer_id) WHERE deezer_id IS NOT NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_artists_discogs_id ON artists (discogs_id) WHERE discogs_id IS NOT NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE releases (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				artist_id INTEGER REFERENCES artists (id) NOT NULL,
				title TEXT NOT NULL,
				year INTEGER,
				type TEXT NOT NULL DEFAULT 'Unknown',
				musicbrainz_id TEXT,
				deezer_id TEXT,
				discogs_id TEXT,
				cover_url TEXT,
				track_file_count INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_releases_artist_id ON releases (artist_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		// Repeated scans must not create duplicate releases. Year is folded
		// into the key so that remasters with a different year stay distinct.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_releases_artist_title_year ON releases (artist_id, lower(title), coalesce(year, 0))`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE tracks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				release_id INTEGER REFERENCES releases (id) NOT NULL,
				title TEXT NOT NULL,
				track_number INTEGER,
				disc_number INTEGER,
				duration INTEGER
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_tracks_release_id ON tracks (release_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_tracks_release_disc_number ON tracks (release_id, disc_number, track_number) WHERE disc_number IS NOT NULL AND track_number IS NOT NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE unmatched_files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				filepath TEXT NOT NULL,
				filename TEXT NOT NULL,
				filesize INTEGER NOT NULL DEFAULT 0,
				detected_artist TEXT,
				detected_album TEXT,
				detected_title TEXT,
				detected_track_number INTEGER,
				scanned_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				is_matched BOOLEAN NOT NULL DEFAULT FALSE,
				ignored BOOLEAN NOT NULL DEFAULT FALSE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_unmatched_files_filepath ON unmatched_files (filepath)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE imported_files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				filepath TEXT NOT NULL,
				filename TEXT NOT NULL,
				filesize INTEGER NOT NULL DEFAULT 0,
				imported_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				status TEXT NOT NULL DEFAULT 'confirmed',
				track_id INTEGER REFERENCES tracks (id) NOT NULL,
				release_id INTEGER REFERENCES releases (id) NOT NULL,
				artist_id INTEGER REFERENCES artists (id) NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_imported_files_filepath ON imported_files (filepath)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_imported_files_track_id ON imported_files (track_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_imported_files_release_id ON imported_files (release_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_imported_files_artist_id ON imported_files (artist_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS imported_files")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS unmatched_files")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS tracks")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS releases")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS artists")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS settings")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS jobs")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}

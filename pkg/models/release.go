package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ReleaseTypeAlbum   = "Album"
	ReleaseTypeSingle  = "Single"
	ReleaseTypeUnknown = "Unknown"
)

type Release struct {
	bun.BaseModel `bun:"table:releases,alias:r"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ArtistID      int       `bun:",nullzero" json:"artist_id"`
	Artist        *Artist   `bun:"rel:belongs-to" json:"artist,omitempty"`
	Title         string    `bun:",nullzero" json:"title"`
	Year          *int      `json:"year,omitempty"`
	Type          string    `bun:",nullzero" json:"type"`
	MusicbrainzID *string   `json:"musicbrainz_id,omitempty"`
	DeezerID      *string   `json:"deezer_id,omitempty"`
	DiscogsID     *string   `json:"discogs_id,omitempty"`
	CoverURL      *string   `json:"cover_url,omitempty"`
	// TrackFileCount caches the number of tracks linked to this release. It's
	// recomputed whenever tracks are added or removed.
	TrackFileCount int      `json:"track_file_count"`
	Tracks         []*Track `bun:"rel:has-many" json:"tracks,omitempty"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:a"`

	ID            int        `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Name          string     `bun:",nullzero" json:"name"`
	MusicbrainzID *string    `json:"musicbrainz_id,omitempty"`
	DeezerID      *string    `json:"deezer_id,omitempty"`
	DiscogsID     *string    `json:"discogs_id,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	AlbumCount    int        `json:"album_count"`
	Releases      []*Release `bun:"rel:has-many" json:"releases,omitempty"`
}

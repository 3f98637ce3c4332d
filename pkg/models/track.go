package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Track struct {
	bun.BaseModel `bun:"table:tracks,alias:t"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ReleaseID int       `bun:",nullzero" json:"release_id"`
	Release   *Release  `bun:"rel:belongs-to" json:"release,omitempty"`
	Title     string    `bun:",nullzero" json:"title"`
	// TrackNumber and DiscNumber come from tags and may be absent. A missing
	// disc number is treated as disc 1 throughout.
	TrackNumber *int `json:"track_number,omitempty"`
	DiscNumber  *int `json:"disc_number,omitempty"`
	// Duration is in seconds.
	Duration *int `json:"duration,omitempty"`
}

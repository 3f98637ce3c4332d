package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	// ImportedFileStatusPendingMove rows are committed before the physical
	// move so that a concurrent scan can't double-import the file. The
	// importer flips them to confirmed once the move succeeds, and a
	// reconcile sweep cleans up any that were orphaned by a crash.
	ImportedFileStatusPendingMove = "pending_move"
	ImportedFileStatusConfirmed   = "confirmed"
)

type ImportedFile struct {
	bun.BaseModel `bun:"table:imported_files,alias:if"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	Filepath   string    `bun:",nullzero" json:"filepath"`
	Filename   string    `bun:",nullzero" json:"filename"`
	Filesize   int64     `json:"filesize"`
	ImportedAt time.Time `json:"imported_at"`
	Status     string    `bun:",nullzero" json:"status"`
	TrackID    int       `bun:",nullzero" json:"track_id"`
	Track      *Track    `bun:"rel:belongs-to" json:"track,omitempty"`
	ReleaseID  int       `bun:",nullzero" json:"release_id"`
	Release    *Release  `bun:"rel:belongs-to" json:"release,omitempty"`
	ArtistID   int       `bun:",nullzero" json:"artist_id"`
	Artist     *Artist   `bun:"rel:belongs-to" json:"artist,omitempty"`
}

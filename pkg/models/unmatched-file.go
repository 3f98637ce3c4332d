package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UnmatchedFile is an audio file found in the import folder that couldn't be
// confidently resolved to a track. Its filepath is the natural key; a
// physical file is either unmatched or imported, never both.
type UnmatchedFile struct {
	bun.BaseModel `bun:"table:unmatched_files,alias:uf"`

	ID                  int       `bun:",pk,nullzero" json:"id"`
	Filepath            string    `bun:",nullzero" json:"filepath"`
	Filename            string    `bun:",nullzero" json:"filename"`
	Filesize            int64     `json:"filesize"`
	DetectedArtist      *string   `json:"detected_artist,omitempty"`
	DetectedAlbum       *string   `json:"detected_album,omitempty"`
	DetectedTitle       *string   `json:"detected_title,omitempty"`
	DetectedTrackNumber *int      `json:"detected_track_number,omitempty"`
	ScannedAt           time.Time `json:"scanned_at"`
	// IsMatched is legacy. State is represented by which table a filepath
	// lives in, but the column is kept for API compatibility.
	IsMatched bool `json:"is_matched"`
	// Ignored files are skipped by future scans and never re-surfaced.
	Ignored bool `json:"ignored"`
}

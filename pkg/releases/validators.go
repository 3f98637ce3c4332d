package releases

type ListReleasesQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	ArtistID *int    `query:"artist_id" json:"artist_id,omitempty" validate:"omitempty,min=1"`
	Type     *string `query:"type" json:"type,omitempty" validate:"omitempty,oneof=Album Single Unknown"`
	Search   *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type UpdateReleasePayload struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Year          *int    `json:"year,omitempty" validate:"omitempty,min=1000,max=9999"`
	Type          *string `json:"type,omitempty" validate:"omitempty,oneof=Album Single Unknown"`
	CoverURL      *string `json:"cover_url,omitempty" validate:"omitempty,url,max=2048"`
	MusicbrainzID *string `json:"musicbrainz_id,omitempty" validate:"omitempty,max=64"`
	DeezerID      *string `json:"deezer_id,omitempty" validate:"omitempty,max=64"`
	DiscogsID     *string `json:"discogs_id,omitempty" validate:"omitempty,max=64"`
}

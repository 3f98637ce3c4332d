package artists

type ListArtistsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type UpdateArtistPayload struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=300"`
	MusicbrainzID *string `json:"musicbrainz_id,omitempty" validate:"omitempty,max=64"`
	DeezerID      *string `json:"deezer_id,omitempty" validate:"omitempty,max=64"`
	DiscogsID     *string `json:"discogs_id,omitempty" validate:"omitempty,max=64"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
}

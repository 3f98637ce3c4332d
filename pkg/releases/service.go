package releases

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveReleaseOptions struct {
	ID            *int
	IncludeTracks bool
	IncludeArtist bool
}

type ListReleasesOptions struct {
	Limit    *int
	Offset   *int
	ArtistID *int
	Type     *string
	Search   *string

	includeTotal bool
}

type UpdateReleaseOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveRelease(ctx context.Context, opts RetrieveReleaseOptions) (*models.Release, error) {
	release := &models.Release{}

	q := svc.db.
		NewSelect().
		Model(release)

	if opts.ID != nil {
		q = q.Where("r.id = ?", *opts.ID)
	}
	if opts.IncludeTracks {
		// Disc numbers may be absent; missing means disc 1, which sorts first
		// either way under NULLS FIRST.
		q = q.Relation("Tracks", func(tq *bun.SelectQuery) *bun.SelectQuery {
			return tq.Order("disc_number ASC", "track_number ASC")
		})
	}
	if opts.IncludeArtist {
		q = q.Relation("Artist")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Release")
		}
		return nil, errors.WithStack(err)
	}

	return release, nil
}

func (svc *Service) ListReleases(ctx context.Context, opts ListReleasesOptions) ([]*models.Release, error) {
	r, _, err := svc.listReleasesWithTotal(ctx, opts)
	return r, errors.WithStack(err)
}

func (svc *Service) ListReleasesWithTotal(ctx context.Context, opts ListReleasesOptions) ([]*models.Release, int, error) {
	opts.includeTotal = true
	return svc.listReleasesWithTotal(ctx, opts)
}

func (svc *Service) listReleasesWithTotal(ctx context.Context, opts ListReleasesOptions) ([]*models.Release, int, error) {
	releases := []*models.Release{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&releases).
		Order("r.title ASC")

	if opts.ArtistID != nil {
		q = q.Where("r.artist_id = ?", *opts.ArtistID)
	}
	if opts.Type != nil {
		q = q.Where("r.type = ?", *opts.Type)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("r.title LIKE ?", "%"+*opts.Search+"%")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return releases, total, nil
}

func (svc *Service) UpdateRelease(ctx context.Context, release *models.Release, opts UpdateReleaseOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	release.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(release).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Release")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteRelease removes a release, its tracks, and its import history, then
// recomputes the owning artist's cached album count.
func (svc *Service) DeleteRelease(ctx context.Context, release *models.Release) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.ImportedFile)(nil)).
			Where("release_id = ?", release.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Track)(nil)).
			Where("release_id = ?", release.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Release)(nil)).
			Where("id = ?", release.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewUpdate().
			Model((*models.Artist)(nil)).
			Set("album_count = (SELECT count(*) FROM releases WHERE artist_id = ?)", release.ArtistID).
			Where("id = ?", release.ArtistID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

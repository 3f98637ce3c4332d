package artists

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveArtistOptions struct {
	ID              *int
	Name            *string
	IncludeReleases bool
}

type ListArtistsOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateArtistOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveArtist(ctx context.Context, opts RetrieveArtistOptions) (*models.Artist, error) {
	artist := &models.Artist{}

	q := svc.db.
		NewSelect().
		Model(artist)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("LOWER(a.name) = LOWER(?)", *opts.Name)
	}
	if opts.IncludeReleases {
		q = q.Relation("Releases", func(rq *bun.SelectQuery) *bun.SelectQuery {
			return rq.Order("year ASC", "title ASC")
		})
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Artist")
		}
		return nil, errors.WithStack(err)
	}

	return artist, nil
}

func (svc *Service) ListArtists(ctx context.Context, opts ListArtistsOptions) ([]*models.Artist, error) {
	a, _, err := svc.listArtistsWithTotal(ctx, opts)
	return a, errors.WithStack(err)
}

func (svc *Service) ListArtistsWithTotal(ctx context.Context, opts ListArtistsOptions) ([]*models.Artist, int, error) {
	opts.includeTotal = true
	return svc.listArtistsWithTotal(ctx, opts)
}

func (svc *Service) listArtistsWithTotal(ctx context.Context, opts ListArtistsOptions) ([]*models.Artist, int, error) {
	artists := []*models.Artist{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&artists).
		Order("a.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("a.name LIKE ?", "%"+*opts.Search+"%")
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

	return artists, total, nil
}

func (svc *Service) UpdateArtist(ctx context.Context, artist *models.Artist, opts UpdateArtistOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	artist.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(artist).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Artist")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteArtist removes an artist and everything under them. Import history
// rows go first since they reference tracks, then tracks, releases, and the
// artist itself, all in one transaction.
func (svc *Service) DeleteArtist(ctx context.Context, artistID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.ImportedFile)(nil)).
			Where("artist_id = ?", artistID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Track)(nil)).
			Where("release_id IN (SELECT id FROM releases WHERE artist_id = ?)", artistID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Release)(nil)).
			Where("artist_id = ?", artistID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Artist)(nil)).
			Where("id = ?", artistID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

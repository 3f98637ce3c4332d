package importer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kanademusic/kanade/pkg/audiofile"
	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/fileutils"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/kanademusic/kanade/pkg/settings"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type Service struct {
	db             *bun.DB
	settingService *settings.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:             db,
		settingService: settings.NewService(db),
	}
}

// ImportRequest identifies a source file to move into the library.
// UnmatchedFileID is set when the request originates from an existing
// unmatched row, which is then consumed by the import.
type ImportRequest struct {
	FilePath        string
	FileName        string
	FileSize        int64
	UnmatchedFileID *int
}

// ImportFile is the only code path that moves a file from the import folder
// into the library and the only writer of imported_files rows. It returns
// whether the file ended up imported; failures are logged, not returned,
// since a batch scan treats each file independently.
func (svc *Service) ImportFile(ctx context.Context, req ImportRequest) bool {
	log := logger.FromContext(ctx).Data(logger.Data{"path": req.FilePath})

	is, err := svc.settingService.LoadImportSettings(ctx)
	if err != nil {
		log.Err(err).Error("failed to load import settings")
		return false
	}
	if !isDirectory(is.LibraryFolderPath) {
		log.Error("library folder path not configured or does not exist", logger.Data{"library_folder_path": is.LibraryFolderPath})
		// Ignore the unmatched row so a broken configuration doesn't cause
		// an infinite rescan loop.
		if req.UnmatchedFileID != nil {
			if ignoreErr := svc.setIgnored(ctx, *req.UnmatchedFileID); ignoreErr != nil {
				log.Err(ignoreErr).Error("failed to ignore unmatched file")
			}
		}
		return false
	}

	md := audiofile.Extract(ctx, req.FilePath)

	isSingle := md.IsSingle
	if isSingle && svc.hasSiblingWithSameAlbum(ctx, req.FilePath, md.Album) {
		// A lone file can't prove it's an album, but a sibling sharing the
		// album name disproves "single".
		isSingle = false
	}
	releaseType := models.ReleaseTypeAlbum
	if isSingle {
		releaseType = models.ReleaseTypeSingle
	}

	if md.HasOnlyGenericDefaults(req.FilePath) {
		log.Warn("skipping import: metadata degraded to generic defaults")
		return false
	}

	var artist *models.Artist
	var release *models.Release
	var track *models.Track
	importedFile := &models.ImportedFile{}

	err = svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		artist, err = resolveArtist(ctx, tx, md)
		if err != nil {
			return err
		}
		release, err = resolveRelease(ctx, tx, artist, md, releaseType)
		if err != nil {
			return err
		}
		track, err = resolveTrack(ctx, tx, release, md)
		if err != nil {
			return err
		}

		// The row is committed before the physical move, keyed by the source
		// path, so a concurrent scan can't double-import this file. It stays
		// pending_move until the move succeeds.
		*importedFile = models.ImportedFile{
			Filepath:   req.FilePath,
			Filename:   req.FileName,
			Filesize:   req.FileSize,
			ImportedAt: time.Now(),
			Status:     models.ImportedFileStatusPendingMove,
			TrackID:    track.ID,
			ReleaseID:  release.ID,
			ArtistID:   artist.ID,
		}
		_, err = tx.NewInsert().Model(importedFile).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if req.UnmatchedFileID != nil {
			_, err = tx.NewDelete().
				Model((*models.UnmatchedFile)(nil)).
				Where("id = ?", *req.UnmatchedFileID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Another scan got here first, or the file was already imported.
			// The conflicting row proves the file is known, so the unmatched
			// row is redundant.
			log.Warn("unique constraint hit during import; file already known", logger.Data{"err": err.Error()})
			if req.UnmatchedFileID != nil {
				if delErr := svc.deleteUnmatched(ctx, *req.UnmatchedFileID); delErr != nil {
					log.Err(delErr).Error("failed to delete redundant unmatched file")
				}
			}
			return false
		}
		log.Err(err).Error("import transaction failed")
		return false
	}

	log.Info("cataloged file", logger.Data{
		"artist_id":  artist.ID,
		"release_id": release.ID,
		"track_id":   track.ID,
	})

	destDir, destPath := svc.destinationFor(ctx, is, md, artist, release, track, isSingle, req.FilePath)

	err = os.MkdirAll(destDir, 0755)
	if err != nil {
		log.Err(err).Error("failed to create destination directory", logger.Data{"dest_dir": destDir})
		return false
	}

	if _, err := os.Stat(destPath); err == nil {
		// The destination already has this file; overwriting is unsafe and
		// the catalog state is already correct, so confirm and move on.
		log.Warn("destination file already exists; skipping move", logger.Data{"dest": destPath})
		if err := svc.confirmImportedFile(ctx, importedFile, importedFile.Filepath); err != nil {
			log.Err(err).Error("failed to confirm imported file")
			return false
		}
		return true
	}

	err = fileutils.MoveFile(req.FilePath, destPath)
	if err != nil {
		// The row stays pending_move; the reconcile sweep will clean it up
		// and a later scan can retry.
		log.Err(err).Error("failed to move file into library", logger.Data{"dest": destPath})
		return false
	}
	log.Info("moved file into library", logger.Data{"dest": destPath})

	err = svc.confirmImportedFile(ctx, importedFile, destPath)
	if err != nil {
		log.Err(err).Error("failed to confirm imported file")
		return false
	}

	if md.CoverPath != "" {
		if coverErr := fileutils.MoveCoverAlongside(md.CoverPath, destDir); coverErr != nil {
			log.Err(coverErr).Warn("failed to move cover art", logger.Data{"cover": md.CoverPath})
		}
	}

	return true
}

// destinationFor renders the configured naming patterns, falling back to the
// default layout when a pattern is empty or references unknown placeholders.
func (svc *Service) destinationFor(ctx context.Context, is *settings.ImportSettings, md *audiofile.Metadata, artist *models.Artist, release *models.Release, track *models.Track, isSingle bool, srcPath string) (destDir, destPath string) {
	log := logger.FromContext(ctx)

	vals := fileutils.NameValues{
		Artist:      artist.Name,
		Album:       release.Title,
		Title:       track.Title,
		Year:        release.Year,
		ReleaseType: release.Type,
		IsSingle:    isSingle,
		TrackNumber: track.TrackNumber,
		DiscNumber:  track.DiscNumber,
	}

	relDir := fileutils.DefaultFolder(vals)
	if is.FolderStructurePattern != "" {
		rendered, err := fileutils.FormatFolder(is.FolderStructurePattern, vals)
		if err != nil {
			log.Warn("invalid folder structure pattern; using default layout", logger.Data{"pattern": is.FolderStructurePattern, "err": err.Error()})
		} else {
			relDir = rendered
		}
	}

	base := fileutils.DefaultFilename(vals)
	if is.FileRenamePattern != "" {
		rendered, err := fileutils.FormatFilename(is.FileRenamePattern, vals)
		if err != nil {
			log.Warn("invalid file rename pattern; using default filename", logger.Data{"pattern": is.FileRenamePattern, "err": err.Error()})
		} else {
			base = rendered
		}
	}

	destDir = filepath.Join(is.LibraryFolderPath, relDir)
	destPath = filepath.Join(destDir, base+strings.ToLower(filepath.Ext(srcPath)))
	return destDir, destPath
}

// confirmImportedFile flips a pending_move row to confirmed, pointing it at
// the file's final location.
func (svc *Service) confirmImportedFile(ctx context.Context, importedFile *models.ImportedFile, finalPath string) error {
	importedFile.Filepath = finalPath
	importedFile.Filename = filepath.Base(finalPath)
	importedFile.Status = models.ImportedFileStatusConfirmed

	_, err := svc.db.NewUpdate().
		Model(importedFile).
		Column("filepath", "filename", "status").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// ReconcilePending deletes pending_move rows older than the threshold. These
// are imports whose physical move never completed (crash or I/O error); with
// the row gone, a later scan sees the source file as new and retries
// cleanly. Catalog entities created by the failed import are left in place
// since the retry resolves to the same rows.
func (svc *Service) ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error) {
	log := logger.FromContext(ctx)
	cutoff := time.Now().Add(-olderThan)

	stale := []*models.ImportedFile{}
	err := svc.db.NewSelect().
		Model(&stale).
		Where("status = ?", models.ImportedFileStatusPendingMove).
		Where("imported_at < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]int, 0, len(stale))
	for _, f := range stale {
		log.Warn("reconciling stale pending import", logger.Data{"imported_file_id": f.ID, "path": f.Filepath})
		ids = append(ids, f.ID)
	}

	_, err = svc.db.NewDelete().
		Model((*models.ImportedFile)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return len(ids), nil
}

// ListUnmatchedFiles returns the pending (non-ignored) unmatched files.
func (svc *Service) ListUnmatchedFiles(ctx context.Context) ([]*models.UnmatchedFile, error) {
	files := []*models.UnmatchedFile{}
	err := svc.db.NewSelect().
		Model(&files).
		Where("ignored = ?", false).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return files, nil
}

// MatchUnmatchedFile retries the import for an unmatched file.
func (svc *Service) MatchUnmatchedFile(ctx context.Context, id int) (bool, error) {
	file, err := svc.retrieveUnmatched(ctx, id)
	if err != nil {
		return false, err
	}

	ok := svc.ImportFile(ctx, ImportRequest{
		FilePath:        file.Filepath,
		FileName:        file.Filename,
		FileSize:        file.Filesize,
		UnmatchedFileID: &file.ID,
	})
	return ok, nil
}

// IgnoreUnmatchedFile marks an unmatched file so scans never re-surface it.
func (svc *Service) IgnoreUnmatchedFile(ctx context.Context, id int) (*models.UnmatchedFile, error) {
	file, err := svc.retrieveUnmatched(ctx, id)
	if err != nil {
		return nil, err
	}

	file.Ignored = true
	_, err = svc.db.NewUpdate().
		Model(file).
		Column("ignored").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return file, nil
}

func (svc *Service) retrieveUnmatched(ctx context.Context, id int) (*models.UnmatchedFile, error) {
	file := &models.UnmatchedFile{}
	err := svc.db.NewSelect().
		Model(file).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Unmatched file")
		}
		return nil, errors.WithStack(err)
	}
	return file, nil
}

func (svc *Service) setIgnored(ctx context.Context, id int) error {
	_, err := svc.db.NewUpdate().
		Model((*models.UnmatchedFile)(nil)).
		Set("ignored = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) deleteUnmatched(ctx context.Context, id int) error {
	_, err := svc.db.NewDelete().
		Model((*models.UnmatchedFile)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

// hasSiblingWithSameAlbum walks the file's containing directory looking for
// another audio file tagged with the same album.
func (svc *Service) hasSiblingWithSameAlbum(ctx context.Context, path, album string) bool {
	album = strings.ToLower(strings.TrimSpace(album))
	if album == "" || album == strings.ToLower(audiofile.UnknownAlbum) {
		return false
	}

	dir := filepath.Dir(path)
	found := false
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipAll
		}
		if d.IsDir() || p == path || !audiofile.IsAudioFile(p) {
			return nil
		}
		sibling := audiofile.Extract(ctx, p)
		if strings.ToLower(strings.TrimSpace(sibling.Album)) == album {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func isDirectory(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isUniqueViolation matches SQLite unique constraint errors from either
// driver backend.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed") && strings.Contains(msg, "2067")
}

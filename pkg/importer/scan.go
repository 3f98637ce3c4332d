package importer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kanademusic/kanade/pkg/audiofile"
	"github.com/kanademusic/kanade/pkg/errcodes"
	"github.com/kanademusic/kanade/pkg/fileutils"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Scan walks the import folder, auto-importing every new audio file it can
// and recording the rest as unmatched. It returns the current pending
// unmatched files and the number of files imported by this run. Scanning is
// idempotent: paths already tracked in either table are skipped, and
// uniqueness races with a concurrent scan are absorbed.
func (svc *Service) Scan(ctx context.Context) ([]*models.UnmatchedFile, int, error) {
	log := logger.FromContext(ctx)

	is, err := svc.settingService.LoadImportSettings(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !isDirectory(is.ImportFolderPath) {
		return nil, 0, errcodes.ConfigurationError("Import folder path is not configured or does not exist.")
	}

	known, err := svc.knownPaths(ctx)
	if err != nil {
		return nil, 0, err
	}

	type candidate struct {
		path string
		name string
	}
	candidates := []candidate{}

	err = filepath.WalkDir(is.ImportFolderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// One unreadable entry shouldn't abort the whole scan.
			log.Err(err).Warn("skipping unreadable path during scan", logger.Data{"path": path})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !audiofile.IsAudioFile(path) {
			return nil
		}
		if known[path] {
			return nil
		}

		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			log.Warn("can't detect the mime type of a file with a valid extension", logger.Data{"path": path, "err": err.Error()})
			return nil
		}
		if !strings.HasPrefix(mtype.String(), "audio/") && !strings.HasPrefix(mtype.String(), "video/mp4") {
			log.Warn("mime type is not expected for extension", logger.Data{"path": path, "mimetype": mtype.String()})
			return nil
		}

		candidates = append(candidates, candidate{path: path, name: d.Name()})
		return nil
	})
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	imported := 0
	for _, c := range candidates {
		info, err := os.Stat(c.path)
		if err != nil {
			// The file vanished between the walk and now.
			log.Warn("file disappeared during scan", logger.Data{"path": c.path})
			continue
		}

		ok := svc.ImportFile(ctx, ImportRequest{
			FilePath: c.path,
			FileName: c.name,
			FileSize: info.Size(),
		})
		if ok {
			imported++
			known[c.path] = true
			continue
		}

		err = svc.recordUnmatched(ctx, c.path, c.name, info.Size())
		if err != nil {
			if isUniqueViolation(err) {
				log.Warn("unmatched file already recorded by a concurrent scan", logger.Data{"path": c.path})
				continue
			}
			log.Err(err).Error("failed to record unmatched file", logger.Data{"path": c.path})
			continue
		}
		log.Info("recorded unmatched file", logger.Data{"path": c.path})
	}

	err = fileutils.RemoveEmptyDirs(is.ImportFolderPath)
	if err != nil {
		log.Err(err).Warn("failed to clean up empty import directories")
	}

	pending, err := svc.ListUnmatchedFiles(ctx)
	if err != nil {
		return nil, 0, err
	}
	return pending, imported, nil
}

// knownPaths loads every tracked filepath from both tables up front so the
// walk is O(files) instead of a lookup per file. Ignored unmatched rows are
// included; ignored means never reprocess.
func (svc *Service) knownPaths(ctx context.Context) (map[string]bool, error) {
	known := map[string]bool{}

	var unmatched []string
	err := svc.db.NewSelect().
		Model((*models.UnmatchedFile)(nil)).
		Column("filepath").
		Scan(ctx, &unmatched)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var importedPaths []string
	err = svc.db.NewSelect().
		Model((*models.ImportedFile)(nil)).
		Column("filepath").
		Scan(ctx, &importedPaths)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, path := range unmatched {
		known[path] = true
	}
	for _, path := range importedPaths {
		known[path] = true
	}
	return known, nil
}

// recordUnmatched inserts an unmatched row with best-effort detected
// metadata so the review UI has something to show.
func (svc *Service) recordUnmatched(ctx context.Context, path, name string, size int64) error {
	md := audiofile.Extract(ctx, path)

	file := &models.UnmatchedFile{
		Filepath:  path,
		Filename:  name,
		Filesize:  size,
		ScannedAt: time.Now(),
	}
	if md.Artist != audiofile.UnknownArtist {
		file.DetectedArtist = &md.Artist
	}
	if md.Album != audiofile.UnknownAlbum {
		file.DetectedAlbum = &md.Album
	}
	if md.Title != "" {
		file.DetectedTitle = &md.Title
	}
	file.DetectedTrackNumber = md.TrackNumber

	_, err := svc.db.NewInsert().Model(file).Exec(ctx)
	return errors.WithStack(err)
}

package importer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/kanademusic/kanade/pkg/migrations"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/kanademusic/kanade/pkg/settings"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// testContext holds the dependencies needed for testing the importer.
type testContext struct {
	t              *testing.T
	ctx            context.Context
	db             *bun.DB
	svc            *Service
	settingService *settings.Service
}

func newTestContext(t *testing.T) *testContext {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tc := &testContext{
		t:              t,
		ctx:            logger.New().WithContext(context.Background()),
		db:             db,
		svc:            NewService(db),
		settingService: settings.NewService(db),
	}

	t.Cleanup(func() {
		db.Close()
	})

	return tc
}

// setupFolders creates a library and import folder pair and stores both as
// settings. Returns (libraryDir, importDir).
func (tc *testContext) setupFolders() (string, string) {
	tc.t.Helper()

	libraryDir := tc.t.TempDir()
	importDir := tc.t.TempDir()

	tc.setSetting(models.SettingLibraryFolderPath, libraryDir)
	tc.setSetting(models.SettingImportFolderPath, importDir)

	return libraryDir, importDir
}

func (tc *testContext) setSetting(key, value string) {
	tc.t.Helper()

	if _, err := tc.settingService.Upsert(tc.ctx, key, value); err != nil {
		tc.t.Fatalf("failed to set %s: %v", key, err)
	}
}

// writeTaggedMP3 writes a fake MP3 carrying an ID3v1.1 trailer. The leading
// frame sync makes the file sniff as audio/mpeg.
func (tc *testContext) writeTaggedMP3(path, title, artist, album, year string, track byte) {
	tc.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tc.t.Fatalf("failed to create fixture directory: %v", err)
	}

	data := make([]byte, 64, 64+128)
	for i := range data {
		data[i] = 0xff
	}
	data[1] = 0xfb

	trailer := make([]byte, 128)
	copy(trailer[0:3], "TAG")
	copy(trailer[3:33], title)
	copy(trailer[33:63], artist)
	copy(trailer[63:93], album)
	copy(trailer[93:97], year)
	trailer[125] = 0
	trailer[126] = track
	trailer[127] = 0xff
	data = append(data, trailer...)

	if err := os.WriteFile(path, data, 0644); err != nil {
		tc.t.Fatalf("failed to write fixture file: %v", err)
	}
}

// importFixture writes a tagged file and runs it through ImportFile.
func (tc *testContext) importFixture(path, title, artist, album, year string, track byte) bool {
	tc.t.Helper()

	tc.writeTaggedMP3(path, title, artist, album, year, track)
	info, err := os.Stat(path)
	if err != nil {
		tc.t.Fatalf("failed to stat fixture file: %v", err)
	}

	return tc.svc.ImportFile(tc.ctx, ImportRequest{
		FilePath: path,
		FileName: filepath.Base(path),
		FileSize: info.Size(),
	})
}

func (tc *testContext) listImportedFiles() []*models.ImportedFile {
	tc.t.Helper()

	files := []*models.ImportedFile{}
	err := tc.db.NewSelect().Model(&files).Order("id ASC").Scan(tc.ctx)
	if err != nil {
		tc.t.Fatalf("failed to list imported files: %v", err)
	}
	return files
}

func (tc *testContext) retrieveArtist(id int) *models.Artist {
	tc.t.Helper()

	artist := &models.Artist{}
	err := tc.db.NewSelect().Model(artist).Where("id = ?", id).Scan(tc.ctx)
	if err != nil {
		tc.t.Fatalf("failed to retrieve artist: %v", err)
	}
	return artist
}

func (tc *testContext) retrieveRelease(id int) *models.Release {
	tc.t.Helper()

	release := &models.Release{}
	err := tc.db.NewSelect().Model(release).Where("id = ?", id).Scan(tc.ctx)
	if err != nil {
		tc.t.Fatalf("failed to retrieve release: %v", err)
	}
	return release
}

package worker

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/kanademusic/kanade/pkg/config"
	"github.com/kanademusic/kanade/pkg/importer"
	"github.com/kanademusic/kanade/pkg/jobs"
	"github.com/kanademusic/kanade/pkg/migrations"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/kanademusic/kanade/pkg/settings"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// testContext holds all the dependencies needed for testing the worker.
type testContext struct {
	t              *testing.T
	ctx            context.Context
	db             *bun.DB
	worker         *Worker
	importService  *importer.Service
	jobService     *jobs.Service
	settingService *settings.Service
}

// newTestContext creates a new test context with an in-memory SQLite database
// and all necessary services initialized.
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

	importService := importer.NewService(db)
	jobService := jobs.NewService(db)
	settingService := settings.NewService(db)

	cfg := &config.Config{
		ScanIntervalMinutes: 60,
		WorkerProcesses:     1,
	}
	w := &Worker{
		config:        cfg,
		log:           logger.New(),
		importService: importService,
		jobService:    jobService,
	}
	w.processFuncs = map[string]func(ctx context.Context, job *models.Job) error{
		models.JobTypeScan:      w.ProcessScanJob,
		models.JobTypeReconcile: w.ProcessReconcileJob,
	}

	ctx := logger.New().WithContext(context.Background())

	tc := &testContext{
		t:              t,
		ctx:            ctx,
		db:             db,
		worker:         w,
		importService:  importService,
		jobService:     jobService,
		settingService: settingService,
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

	if _, err := tc.settingService.Upsert(tc.ctx, models.SettingLibraryFolderPath, libraryDir); err != nil {
		tc.t.Fatalf("failed to set library folder path: %v", err)
	}
	if _, err := tc.settingService.Upsert(tc.ctx, models.SettingImportFolderPath, importDir); err != nil {
		tc.t.Fatalf("failed to set import folder path: %v", err)
	}

	return libraryDir, importDir
}

// writeTaggedMP3 writes a fake MP3 carrying an ID3v1.1 trailer.
func (tc *testContext) writeTaggedMP3(path, title, artist, album, year string, track byte) {
	tc.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tc.t.Fatalf("failed to create fixture directory: %v", err)
	}

	// Frame sync for MPEG-1 layer III so the file sniffs as audio/mpeg.
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

// listImportedFiles returns all imported files in the database.
func (tc *testContext) listImportedFiles() []*models.ImportedFile {
	tc.t.Helper()

	files := []*models.ImportedFile{}
	err := tc.db.NewSelect().Model(&files).Order("id ASC").Scan(tc.ctx)
	if err != nil {
		tc.t.Fatalf("failed to list imported files: %v", err)
	}
	return files
}

// listUnmatchedFiles returns all unmatched files, ignored ones included.
func (tc *testContext) listUnmatchedFiles() []*models.UnmatchedFile {
	tc.t.Helper()

	files := []*models.UnmatchedFile{}
	err := tc.db.NewSelect().Model(&files).Order("id ASC").Scan(tc.ctx)
	if err != nil {
		tc.t.Fatalf("failed to list unmatched files: %v", err)
	}
	return files
}

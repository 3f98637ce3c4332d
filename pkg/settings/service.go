package settings

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanademusic/kanade/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// ImportSettings is a snapshot of the runtime settings the importer needs.
// It's loaded once at the start of an operation so that a mid-scan settings
// change can't leave half the files organized under a different layout.
type ImportSettings struct {
	LibraryFolderPath      string
	ImportFolderPath       string
	FileRenamePattern      string
	FolderStructurePattern string
}

func (svc *Service) List(ctx context.Context) ([]*models.Setting, error) {
	settings := []*models.Setting{}
	err := svc.db.NewSelect().
		Model(&settings).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return settings, nil
}

// Get returns the value for a key, or "" if the key isn't set.
func (svc *Service) Get(ctx context.Context, key string) (string, error) {
	setting := &models.Setting{}
	err := svc.db.NewSelect().
		Model(setting).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.WithStack(err)
	}
	return setting.Value, nil
}

// Upsert sets the value for a key, creating the row if it doesn't exist.
func (svc *Service) Upsert(ctx context.Context, key, value string) (*models.Setting, error) {
	now := time.Now()

	setting := &models.Setting{
		CreatedAt: now,
		UpdatedAt: now,
		Key:       key,
		Value:     value,
	}

	_, err := svc.db.NewInsert().
		Model(setting).
		On("CONFLICT (key) DO UPDATE").
		Set("updated_at = EXCLUDED.updated_at").
		Set("value = EXCLUDED.value").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return setting, nil
}

// LoadImportSettings loads the importer's settings in one query. Unset keys
// come back as "" and the caller decides whether that's fatal (folder paths)
// or means "use the default" (naming patterns).
func (svc *Service) LoadImportSettings(ctx context.Context) (*ImportSettings, error) {
	settings := []*models.Setting{}
	err := svc.db.NewSelect().
		Model(&settings).
		Where("key IN (?)", bun.In([]string{
			models.SettingLibraryFolderPath,
			models.SettingImportFolderPath,
			models.SettingFileRenamePattern,
			models.SettingFolderStructurePattern,
		})).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	is := &ImportSettings{}
	for _, setting := range settings {
		switch setting.Key {
		case models.SettingLibraryFolderPath:
			is.LibraryFolderPath = setting.Value
		case models.SettingImportFolderPath:
			is.ImportFolderPath = setting.Value
		case models.SettingFileRenamePattern:
			is.FileRenamePattern = setting.Value
		case models.SettingFolderStructurePattern:
			is.FolderStructurePattern = setting.Value
		}
	}
	return is, nil
}

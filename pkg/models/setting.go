package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Setting keys used by the importer. Folder paths and naming patterns are
// runtime settings so they can be changed through the API without a restart.
const (
	SettingLibraryFolderPath      = "library_folder_path"
	SettingImportFolderPath       = "import_folder_path"
	SettingFileRenamePattern      = "file_rename_pattern"
	SettingFolderStructurePattern = "folder_structure_pattern"
)

type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Key       string    `bun:",nullzero" json:"key"`
	Value     string    `json:"value"`
}

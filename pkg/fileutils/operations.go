package fileutils

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// coverExtensions are the image extensions recognized for cover art files.
var coverExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// MoveFile moves a file from src to dst. A plain rename is tried first; if
// src and dst are on different filesystems it falls back to copy + delete.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	err = copyFile(src, dst)
	if err != nil {
		return errors.WithStack(err)
	}

	// Remove the source only after a successful copy.
	err = os.Remove(src)
	if err != nil {
		os.Remove(dst)
		return errors.WithStack(err)
	}

	return nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return errors.WithStack(err)
	}

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return errors.WithStack(err)
	}

	err = destFile.Chmod(sourceInfo.Mode())
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// MoveCoverAlongside moves a cover art file into destDir, keeping its
// original filename. It's a no-op if the cover has vanished or destDir
// already has a file with that name; a user-provided cover is never
// overwritten.
func MoveCoverAlongside(coverPath, destDir string) error {
	if _, err := os.Stat(coverPath); err != nil {
		return nil
	}

	target := filepath.Join(destDir, filepath.Base(coverPath))
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	return MoveFile(coverPath, target)
}

// FindCover scans a directory (non-recursively) for a file named "cover.*"
// with a recognized image extension and returns its path, or "" if none.
func FindCover(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasPrefix(name, "cover.") {
			continue
		}
		for _, ext := range coverExtensions {
			if strings.HasSuffix(name, ext) {
				return filepath.Join(dir, entry.Name())
			}
		}
	}
	return ""
}

// RemoveEmptyDirs removes directories under root that are empty, bottom-up,
// leaving root itself in place. Directories that still hold user data are
// untouched.
func RemoveEmptyDirs(root string) error {
	dirs := []string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Deepest first, so a directory whose only contents were empty
	// subdirectories is itself removed in the same pass.
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		if len(entries) == 0 {
			os.Remove(dir)
		}
	}

	return nil
}

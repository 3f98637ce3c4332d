package fileutils

import (
	"regexp"
	"strings"
)

var invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizePathComponent makes a single path segment safe on common
// filesystems. Colons become " - " and slashes become "_" so that titles like
// "AM/PM" or "Reload: Remixed" stay readable instead of silently losing
// characters; everything else that's illegal is stripped, whitespace runs are
// collapsed, and surrounding spaces and dots are trimmed. A name that
// sanitizes away entirely degrades to "Unknown" rather than an empty segment.
func SanitizePathComponent(name string) string {
	name = strings.ReplaceAll(name, ":", " - ")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = invalidPathChars.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, " .")
	if name == "" {
		return "Unknown"
	}
	return name
}

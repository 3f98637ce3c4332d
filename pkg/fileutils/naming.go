package fileutils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownPlaceholder is returned when a naming pattern references a
// placeholder that doesn't exist. Callers fall back to the default layout.
var ErrUnknownPlaceholder = errors.New("unknown placeholder")

var placeholderPattern = regexp.MustCompile(`\{([a-z]+)\}`)

// NameValues carries the resolved metadata that naming patterns can
// reference. All string fields are raw; sanitization happens here.
type NameValues struct {
	Artist      string
	Album       string
	Title       string
	Year        *int
	ReleaseType string
	IsSingle    bool
	TrackNumber *int
	DiscNumber  *int
}

func (v NameValues) yearComponent() string {
	if v.Year == nil {
		return "Unknown Year"
	}
	return strconv.Itoa(*v.Year)
}

// trackNumberComponent is zero-padded to two digits, with a trailing space so
// that patterns like "{tracknumber}{title}" read naturally when it's absent.
func (v NameValues) trackNumberComponent() string {
	if v.TrackNumber == nil {
		return ""
	}
	return fmt.Sprintf("%02d ", *v.TrackNumber)
}

// discNumberComponent only renders for multi-disc releases so single-disc
// albums don't get a pointless "1 " prefix.
func (v NameValues) discNumberComponent() string {
	if v.DiscNumber == nil || *v.DiscNumber <= 1 {
		return ""
	}
	return fmt.Sprintf("%d ", *v.DiscNumber)
}

// FormatFolder renders a folder-structure pattern into a relative directory
// path under the library root. Each rendered path segment is sanitized
// individually so a pattern can still use "/" to nest folders.
func FormatFolder(pattern string, vals NameValues) (string, error) {
	values := map[string]string{
		"artist": SanitizePathComponent(vals.Artist),
		"album":  SanitizePathComponent(vals.Album),
		"year":   SanitizePathComponent(vals.yearComponent()),
		"type":   SanitizePathComponent(vals.ReleaseType),
	}

	rendered, err := renderPattern(pattern, values)
	if err != nil {
		return "", err
	}

	parts := []string{}
	for _, part := range strings.Split(rendered, "/") {
		// Blank segments from doubled separators are dropped rather than
		// degraded to "Unknown".
		if strings.TrimSpace(part) == "" {
			continue
		}
		parts = append(parts, SanitizePathComponent(part))
	}
	return filepath.Join(parts...), nil
}

// DefaultFolder is the layout used when no pattern is configured or the
// configured one is invalid: singles are grouped under a "Singles" folder so
// they don't clutter the artist's album list.
func DefaultFolder(vals NameValues) string {
	artist := SanitizePathComponent(vals.Artist)
	album := SanitizePathComponent(vals.Album)
	if vals.IsSingle {
		return filepath.Join(artist, "Singles", album)
	}
	return filepath.Join(artist, album)
}

// FormatFilename renders a file-rename pattern into a filename base (no
// extension). Whitespace runs and dangling separators left behind by empty
// placeholders are collapsed.
func FormatFilename(pattern string, vals NameValues) (string, error) {
	values := map[string]string{
		"artist":      SanitizePathComponent(vals.Artist),
		"album":       SanitizePathComponent(vals.Album),
		"title":       SanitizePathComponent(vals.Title),
		"tracknumber": vals.trackNumberComponent(),
		"disknumber":  vals.discNumberComponent(),
	}

	rendered, err := renderPattern(pattern, values)
	if err != nil {
		return "", err
	}

	rendered = regexp.MustCompile(`\s+`).ReplaceAllString(rendered, " ")
	rendered = regexp.MustCompile(`\s*-\s*`).ReplaceAllString(rendered, " - ")
	rendered = strings.Trim(rendered, " -")
	return SanitizePathComponent(rendered), nil
}

// DefaultFilename is the filename base used when no pattern is configured.
// Singles become "Artist - Title", with the album appended in parens when it
// adds information; album tracks get a "NN - " track-number prefix.
func DefaultFilename(vals NameValues) string {
	artist := SanitizePathComponent(vals.Artist)
	album := SanitizePathComponent(vals.Album)
	title := SanitizePathComponent(vals.Title)

	if vals.IsSingle {
		base := fmt.Sprintf("%s - %s", artist, title)
		if vals.Album != "" && album != "Unknown Album" && !strings.Contains(strings.ToLower(title), strings.ToLower(album)) {
			base = fmt.Sprintf("%s - %s (%s)", artist, title, album)
		}
		return base
	}

	if vals.TrackNumber != nil {
		return fmt.Sprintf("%02d - %s", *vals.TrackNumber, title)
	}
	return title
}

func renderPattern(pattern string, values map[string]string) (string, error) {
	for _, match := range placeholderPattern.FindAllStringSubmatch(pattern, -1) {
		if _, ok := values[match[1]]; !ok {
			return "", errors.Wrapf(ErrUnknownPlaceholder, "%q", match[1])
		}
	}

	rendered := pattern
	for key, value := range values {
		rendered = strings.ReplaceAll(rendered, "{"+key+"}", value)
	}
	return rendered, nil
}

package audiofile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhowden/tag"
	"github.com/kanademusic/kanade/pkg/fileutils"
	"github.com/kanademusic/kanade/pkg/models"
	"github.com/robinjoseph08/golib/logger"
)

// audioExtensions are the file extensions the importer will process.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".aac":  true,
	".ogg":  true,
	".m4a":  true,
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Metadata is the best-effort result of reading a file's tags plus filename
// and directory heuristics. Artist, Album, Title, and ReleaseType are always
// set, falling back to generic defaults; everything else may be nil.
type Metadata struct {
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	TrackNumber *int
	TrackTotal  *int
	DiscNumber  *int
	Year        *int
	// Duration in seconds. Tag headers don't carry it for most formats, so
	// it's usually nil.
	Duration  *int
	IsSingle  bool
	Type      string
	CoverPath string
}

const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// HasOnlyGenericDefaults reports whether every identifying field degraded to
// its fallback. Such a file carries no usable signal and shouldn't be filed
// under "Unknown Artist/Unknown Album" automatically.
func (m *Metadata) HasOnlyGenericDefaults(path string) bool {
	filenameTitle := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m.Artist == UnknownArtist && m.Album == UnknownAlbum && m.Title == filenameTitle
}

// Extract reads tags from an audio file and fills the gaps with filename and
// directory heuristics. It never fails: a missing or malformed tag header is
// logged and absorbed, and the fallback chain always produces a usable
// result. It reads the filesystem but never the database.
func Extract(ctx context.Context, path string) *Metadata {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})

	filename := filepath.Base(path)
	filenameTitle := strings.TrimSuffix(filename, filepath.Ext(filename))
	dir := filepath.Dir(path)

	md := &Metadata{
		Title:     filenameTitle,
		Type:      models.ReleaseTypeUnknown,
		CoverPath: fileutils.FindCover(dir),
	}

	readTags(md, path, log)

	applyDirectoryFallbacks(md, dir)

	if md.Title == "" {
		md.Title = filenameTitle
	}
	md.Title = stripTrackPrefix(md.Title, md.TrackNumber)

	classifyRelease(md)

	return md
}

func readTags(md *Metadata, path string, log logger.Logger) {
	file, err := os.Open(path)
	if err != nil {
		log.Warn("failed to open audio file for tag reading", logger.Data{"err": err.Error()})
		return
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		// Common for untagged files. The fallback chain takes over.
		log.Warn("failed to read tags", logger.Data{"err": err.Error()})
		return
	}

	md.Artist = cleanTag(tags.Artist())
	md.AlbumArtist = cleanTag(tags.AlbumArtist())
	md.Album = cleanTag(tags.Album())
	if title := cleanTag(tags.Title()); title != "" {
		md.Title = title
	}

	if num, total := tags.Track(); num != 0 {
		md.TrackNumber = &num
		if total != 0 {
			md.TrackTotal = &total
		}
	}
	if disc, _ := tags.Disc(); disc != 0 {
		md.DiscNumber = &disc
	}
	if year := tags.Year(); year != 0 {
		md.Year = &year
	}
}

// A dirFallback derives a missing field from the file's directory layout.
// Fallbacks run in order and the first non-empty result wins, so the
// precedence is visible in the slice rather than buried in conditionals.
type dirFallback func(parent, grandparent string) string

// artistFallbacks: "Artist - Album" parent folder, then the grandparent for
// the common Artist/Album/track.mp3 layout, then the generic default.
var artistFallbacks = []dirFallback{
	func(parent, _ string) string {
		artist, _, _ := splitArtistAlbumDir(parent)
		return artist
	},
	func(parent, grandparent string) string {
		if grandparent != parent {
			return grandparent
		}
		return ""
	},
	func(_, _ string) string { return UnknownArtist },
}

// albumFallbacks: the album half of an "Artist - Album" parent folder, then
// the parent folder name verbatim, then the generic default.
var albumFallbacks = []dirFallback{
	func(parent, _ string) string {
		_, album, _ := splitArtistAlbumDir(parent)
		return album
	},
	func(parent, _ string) string {
		return parent
	},
	func(_, _ string) string { return UnknownAlbum },
}

func applyDirectoryFallbacks(md *Metadata, dir string) {
	parent := dirComponent(filepath.Base(dir))
	grandparent := dirComponent(filepath.Base(filepath.Dir(dir)))

	if md.Artist == "" {
		md.Artist = firstNonEmpty(artistFallbacks, parent, grandparent)
	}
	if md.Album == "" {
		md.Album = firstNonEmpty(albumFallbacks, parent, grandparent)
	}
}

// dirComponent normalizes a directory name for the fallback chains. A file
// sitting at the filesystem root or addressed by a bare relative path has no
// real parent directories; the "." and separator values filepath.Base yields
// for those carry no signal, so they count as no directory context.
func dirComponent(name string) string {
	name = strings.TrimSpace(name)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func firstNonEmpty(chain []dirFallback, parent, grandparent string) string {
	for _, fn := range chain {
		if v := fn(parent, grandparent); v != "" {
			return v
		}
	}
	return ""
}

func splitArtistAlbumDir(name string) (artist, album string, ok bool) {
	if !strings.Contains(name, " - ") {
		return "", "", false
	}
	parts := strings.SplitN(name, " - ", 2)
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// stripTrackPrefix removes a leading "01 - " or "01 " style prefix matching
// the known track number, so "01 - Song Name" isn't stored as the title.
func stripTrackPrefix(title string, trackNumber *int) string {
	if trackNumber == nil {
		return title
	}

	patterns := []string{
		fmt.Sprintf(`^%02d\s*-\s*(.*)$`, *trackNumber),
		fmt.Sprintf(`^%d\s*-\s*(.*)$`, *trackNumber),
		fmt.Sprintf(`^%02d\s+(.*)$`, *trackNumber),
		fmt.Sprintf(`^%d\s+(.*)$`, *trackNumber),
	}
	for _, pattern := range patterns {
		re := regexp.MustCompile(pattern)
		if matches := re.FindStringSubmatch(title); len(matches) == 2 {
			stripped := strings.TrimSpace(matches[1])
			if stripped != "" {
				return stripped
			}
		}
	}
	return title
}

// classifyRelease decides between Single and Album. A track total of one is
// conclusive; otherwise an album whose name matches the track title (modulo
// the literal word "single") is assumed to be a single. The importer can
// later override this when sibling files share the album.
func classifyRelease(md *Metadata) {
	if md.TrackTotal != nil && *md.TrackTotal <= 1 {
		md.IsSingle = true
		md.Type = models.ReleaseTypeSingle
		return
	}

	album := strings.ToLower(md.Album)
	title := strings.ToLower(md.Title)
	if album != "" && title != "" &&
		(album == title || stripSingleWord(album) == stripSingleWord(title)) {
		md.IsSingle = true
		md.Type = models.ReleaseTypeSingle
		return
	}

	md.Type = models.ReleaseTypeAlbum
}

func stripSingleWord(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "single", ""))
}

func cleanTag(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

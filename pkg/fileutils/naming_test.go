package fileutils

import (
	"path/filepath"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePathComponent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Abbey Road", "Abbey Road"},
		{"colon becomes dash", "Reload: Remixed", "Reload - Remixed"},
		{"slash becomes underscore", "AM/PM", "AM_PM"},
		{"backslash becomes underscore", `AM\PM`, "AM_PM"},
		{"illegal chars stripped", `What?! "Quotes" <here>`, "What! Quotes here"},
		{"control chars stripped", "abc\x00\x1fdef", "abcdef"},
		{"whitespace trimmed and collapsed", "  Hot   Fuss  ", "Hot Fuss"},
		{"trailing dots trimmed", "Best Of...", "Best Of"},
		{"interior dots kept", "Dr. Dre", "Dr. Dre"},
		{"all illegal degrades", "???", "Unknown"},
		{"empty degrades", "", "Unknown"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, SanitizePathComponent(test.input))
		})
	}
}

func TestFormatFolder(t *testing.T) {
	vals := NameValues{
		Artist:      "Daft Punk",
		Album:       "Discovery",
		Year:        pointerutil.Int(2001),
		ReleaseType: "Album",
	}

	dir, err := FormatFolder("{artist}/{year} - {album}", vals)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Daft Punk", "2001 - Discovery"), dir)
}

func TestFormatFolderUnknownPlaceholder(t *testing.T) {
	_, err := FormatFolder("{artist}/{genre}/{album}", NameValues{Artist: "A", Album: "B"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlaceholder)
}

func TestFormatFolderMissingYear(t *testing.T) {
	dir, err := FormatFolder("{artist}/{year}/{album}", NameValues{Artist: "A", Album: "B"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("A", "Unknown Year", "B"), dir)
}

func TestFormatFolderSanitizesSegments(t *testing.T) {
	dir, err := FormatFolder("{artist}/{album}", NameValues{Artist: "AC/DC", Album: "Back in Black"})
	require.NoError(t, err)
	// The slash inside the artist name must not create an extra directory.
	assert.Equal(t, filepath.Join("AC_DC", "Back in Black"), dir)
}

func TestDefaultFolder(t *testing.T) {
	album := DefaultFolder(NameValues{Artist: "Daft Punk", Album: "Discovery"})
	assert.Equal(t, filepath.Join("Daft Punk", "Discovery"), album)

	single := DefaultFolder(NameValues{Artist: "Daft Punk", Album: "One More Time", IsSingle: true})
	assert.Equal(t, filepath.Join("Daft Punk", "Singles", "One More Time"), single)
}

func TestFormatFilename(t *testing.T) {
	vals := NameValues{
		Artist:      "Daft Punk",
		Album:       "Discovery",
		Title:       "Aerodynamic",
		TrackNumber: pointerutil.Int(2),
	}

	base, err := FormatFilename("{tracknumber}- {title}", vals)
	require.NoError(t, err)
	assert.Equal(t, "02 - Aerodynamic", base)
}

func TestFormatFilenameDiscNumber(t *testing.T) {
	vals := NameValues{
		Title:       "So Much Trouble in the World",
		TrackNumber: pointerutil.Int(1),
		DiscNumber:  pointerutil.Int(2),
	}

	base, err := FormatFilename("{disknumber}{tracknumber}- {title}", vals)
	require.NoError(t, err)
	assert.Equal(t, "2 01 - So Much Trouble in the World", base)

	// Disc 1 gets no prefix.
	vals.DiscNumber = pointerutil.Int(1)
	base, err = FormatFilename("{disknumber}{tracknumber}- {title}", vals)
	require.NoError(t, err)
	assert.Equal(t, "01 - So Much Trouble in the World", base)
}

func TestFormatFilenameCollapsesEmptyPlaceholders(t *testing.T) {
	// No track number: the dangling separator should be trimmed away.
	base, err := FormatFilename("{tracknumber}- {title}", NameValues{Title: "Intro"})
	require.NoError(t, err)
	assert.Equal(t, "Intro", base)
}

func TestFormatFilenameUnknownPlaceholder(t *testing.T) {
	_, err := FormatFilename("{bitrate} {title}", NameValues{Title: "Intro"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlaceholder)
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		name     string
		vals     NameValues
		expected string
	}{
		{
			name: "album track with number",
			vals: NameValues{
				Artist:      "Daft Punk",
				Album:       "Discovery",
				Title:       "Aerodynamic",
				TrackNumber: pointerutil.Int(2),
			},
			expected: "02 - Aerodynamic",
		},
		{
			name: "album track without number",
			vals: NameValues{
				Artist: "Daft Punk",
				Album:  "Discovery",
				Title:  "Aerodynamic",
			},
			expected: "Aerodynamic",
		},
		{
			name: "single with distinct album",
			vals: NameValues{
				Artist:   "Daft Punk",
				Album:    "Alive 1997",
				Title:    "Da Funk",
				IsSingle: true,
			},
			expected: "Daft Punk - Da Funk (Alive 1997)",
		},
		{
			name: "single where album matches title",
			vals: NameValues{
				Artist:   "Daft Punk",
				Album:    "Da Funk",
				Title:    "Da Funk",
				IsSingle: true,
			},
			expected: "Daft Punk - Da Funk",
		},
		{
			name: "single with unknown album",
			vals: NameValues{
				Artist:   "Daft Punk",
				Album:    "Unknown Album",
				Title:    "Da Funk",
				IsSingle: true,
			},
			expected: "Daft Punk - Da Funk",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, DefaultFilename(test.vals))
		})
	}
}

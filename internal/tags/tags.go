// Package tags reads and writes the ID3v2 tag container embedded in MP3
// files. It is the only tag format maestro handles.
package tags

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Extension of the audio files maestro manages.
const Extension = ".mp3"

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// Tag contains the tag metadata maestro reads and writes for one file.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Year        int
	Comment     string
	Lyrics      string

	TrackNumber int
	TotalTracks int
	DiscNumber  int
	TotalDiscs  int

	// Embedded front cover.
	CoverArt  []byte
	CoverMIME string
}

// Equal reports whether two tags would produce the same frames on disk.
// Path is ignored; cover art is compared byte for byte.
func (t *Tag) Equal(other *Tag) bool {
	if other == nil {
		return false
	}
	return t.Title == other.Title &&
		t.Artist == other.Artist &&
		t.AlbumArtist == other.AlbumArtist &&
		t.Album == other.Album &&
		t.Genre == other.Genre &&
		t.Year == other.Year &&
		t.Comment == other.Comment &&
		t.Lyrics == other.Lyrics &&
		t.TrackNumber == other.TrackNumber &&
		t.TotalTracks == other.TotalTracks &&
		t.DiscNumber == other.DiscNumber &&
		t.TotalDiscs == other.TotalDiscs &&
		bytes.Equal(t.CoverArt, other.CoverArt)
}

// IsMusicFile returns true if the path has the managed audio extension.
func IsMusicFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// ReadError wraps a failure to read a file's tag container.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read tags from %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError wraps a failure to write a file's tag container.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write tags to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// parseNumberPair parses a track/disc number that may be "N" or "N/M".
func parseNumberPair(s string) (num, total int) {
	if s == "" {
		return 0, 0
	}
	if idx := strings.Index(s, "/"); idx > 0 {
		num, _ = strconv.Atoi(s[:idx])
		total, _ = strconv.Atoi(s[idx+1:])
		return num, total
	}
	num, _ = strconv.Atoi(s)
	return num, 0
}

// formatNumberPair renders a track/disc number as "N" or "N/M".
func formatNumberPair(num, total int) string {
	if total > 0 {
		return strconv.Itoa(num) + "/" + strconv.Itoa(total)
	}
	return strconv.Itoa(num)
}

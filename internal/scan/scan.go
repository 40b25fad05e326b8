// Package scan lists the audio files of an album folder and snapshots
// their current tags. Entries are ephemeral: they are built per run and
// handed to exactly one operation.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/tags"
)

// FileEntry is one audio file found in the album folder.
type FileEntry struct {
	// Path is the absolute path of the file.
	Path string
	// Rel is the path relative to the album folder, using slashes.
	Rel string
	// Tag is the file's current tag snapshot, or nil if the tags could
	// not be read.
	Tag *tags.Tag
}

// Name returns the entry's base filename.
func (e FileEntry) Name() string {
	return filepath.Base(e.Path)
}

// Folder scans an album folder for MP3 files, reading each file's tags.
// Unreadable tags are tolerated (the entry's Tag is nil); an unreadable
// folder is an error. Files under extras/ and hidden directories are
// skipped. The result is sorted by relative path, so it is deterministic
// for a given directory state.
func Folder(folder string, log zerolog.Logger) ([]FileEntry, error) {
	if _, err := os.Stat(folder); err != nil {
		return nil, fmt.Errorf("scan album folder: %w", err)
	}

	var entries []FileEntry
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == folder {
				return nil
			}
			name := d.Name()
			if name == "extras" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !tags.IsMusicFile(path) {
			return nil
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}

		entry := FileEntry{Path: path, Rel: filepath.ToSlash(rel)}
		t, err := tags.Read(path)
		if err != nil {
			log.Debug().Str("file", rel).Err(err).Msg("unreadable tags, matching by filename")
		} else {
			entry.Tag = t
		}

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan album folder: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rel < entries[j].Rel
	})
	return entries, nil
}

// DiscDir returns the folder-relative directory for a disc: the album
// folder itself for single-disc albums, "Disc N" (zero-padded to the
// album's disc-count width) otherwise.
func DiscDir(a *album.Album, discNumber int) string {
	if a.NumDiscs() <= 1 {
		return ""
	}
	width := album.NumDigits(a.NumDiscs())
	return fmt.Sprintf("Disc %0*d", width, discNumber)
}

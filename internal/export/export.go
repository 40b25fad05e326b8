// Package export copies an album out of its library folder into an
// export tree. The full format keeps tags and disc subfolders; the vw
// format flattens the album and rewrites tags for car head units.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/cover"
	"github.com/kstrohbeck/maestro/internal/match"
	"github.com/kstrohbeck/maestro/internal/report"
	"github.com/kstrohbeck/maestro/internal/retag"
	"github.com/kstrohbeck/maestro/internal/scan"
	"github.com/kstrohbeck/maestro/internal/tags"
)

// Format selects the export layout.
type Format string

const (
	// Full keeps ID3 tags and disc subfolders.
	Full Format = "full"
	// VW flattens the album and writes ASCII-only tags.
	VW Format = "vw"
)

// ParseFormat parses a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Full, VW:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid export format %q", s)
	}
}

// DestRoot returns the album's directory under an export root:
// <root>/<artist>/<title>, both components file-safe.
func DestRoot(root string, a *album.Album) string {
	return filepath.Join(root, a.Artist().FileSafe(), a.Title.FileSafe())
}

// Album exports every matched track into dest, which is created if
// missing. Unmatched tracks are skipped; failures are recorded per file
// and do not stop the remaining tracks.
func Album(folder, dest string, a *album.Album, res match.Result, format Format, sum *report.Summary, log zerolog.Logger, dryRun bool) error {
	var img *cover.Image
	if format == VW {
		var err error
		img, err = cover.ForAlbumVW(folder, a)
		if err != nil {
			return err
		}
	}

	for _, p := range res.Pairs {
		dst := destPath(dest, a, p.Track, format)

		if dryRun {
			sum.AddOK(p.File.Rel, fmt.Sprintf("would export to %s", dst))
			continue
		}

		var err error
		switch format {
		case Full:
			err = copyFile(p.File.Path, dst)
		case VW:
			err = exportVW(p.File.Path, dst, p.Track, img)
		}
		if err != nil {
			log.Error().Err(err).Str("file", p.File.Rel).Msg("export failed")
			sum.AddFailed(p.File.Rel, err)
			continue
		}
		log.Debug().Str("file", p.File.Rel).Str("dest", dst).Msg("exported")
		sum.AddOK(p.File.Rel, fmt.Sprintf("exported to %s", dst))
	}
	return nil
}

func destPath(dest string, a *album.Album, info album.TrackInfo, format Format) string {
	name := info.CanonicalFilename()
	if format == Full {
		if d := scan.DiscDir(a, info.DiscNumber); d != "" {
			return filepath.Join(dest, d, name)
		}
	}
	return filepath.Join(dest, name)
}

// exportVW copies the file and then replaces its tags with the ASCII
// vw variant, small cover included.
func exportVW(src, dst string, info album.TrackInfo, img *cover.Image) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	vw := retag.DesiredVW(info, img)
	return tags.Write(dst, &vw)
}

// copyFile copies src to dst, creating parent directories. A partial
// destination is removed on failure.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	return dstFile.Close()
}

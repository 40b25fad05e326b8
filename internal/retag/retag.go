// Package retag reconciles the ID3v2 tags of matched files against the
// manifest. It builds the desired tag for every track, rewrites files
// whose tags differ, and can report the differences without touching
// anything.
package retag

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/cover"
	"github.com/kstrohbeck/maestro/internal/match"
	"github.com/kstrohbeck/maestro/internal/report"
	"github.com/kstrohbeck/maestro/internal/scan"
	"github.com/kstrohbeck/maestro/internal/tags"
)

// Desired builds the tag a matched file should carry. The disc frames
// are only written for multi-disc albums and the album-artist frame only
// when the track overrides the album's artists.
func Desired(info album.TrackInfo, img *cover.Image) tags.Tag {
	t := tags.Tag{
		Title:       info.Track.Title.Value(),
		Artist:      info.Artist().Value(),
		Album:       info.Album.Title.Value(),
		Genre:       info.Genre().Value(),
		Year:        info.Year(),
		Comment:     info.Track.Comment.Value(),
		Lyrics:      info.Track.Lyrics.Value(),
		TrackNumber: info.TrackNumber,
		TotalTracks: info.TracksOnDisc(),
	}
	if aa, ok := info.AlbumArtist(); ok {
		t.AlbumArtist = aa.Value()
	}
	if !info.IsOnlyDisc() {
		t.DiscNumber = info.DiscNumber
		t.TotalDiscs = info.Album.NumDiscs()
	}
	if img != nil {
		t.CoverArt = img.Data
		t.CoverMIME = img.MIME
	}
	return t
}

// DesiredVW is the stripped-down tag written by the vw export: text
// fields reduced to ASCII, bare track and disc numbers, and none of the
// frames that car head units ignore anyway.
func DesiredVW(info album.TrackInfo, img *cover.Image) tags.Tag {
	t := tags.Tag{
		Title:       info.Track.Title.ASCII(),
		Artist:      JoinASCII(info.Artists()),
		Album:       info.Album.Title.ASCII(),
		TrackNumber: info.TrackNumber,
	}
	if aa, ok := info.AlbumArtist(); ok {
		t.AlbumArtist = aa.ASCII()
	}
	if !info.IsOnlyDisc() {
		t.DiscNumber = info.DiscNumber
	}
	if img != nil {
		t.CoverArt = img.Data
		t.CoverMIME = img.MIME
	}
	return t
}

// JoinASCII joins the texts' ASCII renderings with ", ".
func JoinASCII(texts []album.Text) string {
	return album.JoinTexts(texts).ASCII()
}

// Update rewrites the tags of every matched file whose tags differ from
// the desired state. Files already carrying the desired tags are
// skipped, so running it twice is a no-op.
func Update(res match.Result, img *cover.Image, sum *report.Summary, log zerolog.Logger, dryRun bool) {
	for _, p := range res.Pairs {
		desired := Desired(p.Track, img)
		desired.Path = p.File.Path

		if p.File.Tag != nil && desired.Equal(p.File.Tag) {
			sum.AddSkipped(p.File.Rel)
			continue
		}
		if dryRun {
			sum.AddOK(p.File.Rel, "would update tags")
			continue
		}
		if err := tags.Write(p.File.Path, &desired); err != nil {
			log.Error().Err(err).Str("file", p.File.Rel).Msg("failed to update tags")
			sum.AddFailed(p.File.Rel, err)
			continue
		}
		log.Debug().Str("file", p.File.Rel).Msg("tags updated")
		sum.AddOK(p.File.Rel, "tags updated")
	}
}

// An Issue is one tag discrepancy found by Validate.
type Issue struct {
	File  string
	Field string
	Want  string
	Got   string
}

func (i Issue) String() string {
	switch {
	case i.Want == "":
		return fmt.Sprintf("%s: unexpected %s %q", i.File, i.Field, i.Got)
	case i.Got == "":
		return fmt.Sprintf("%s: missing %s, want %q", i.File, i.Field, i.Want)
	default:
		return fmt.Sprintf("%s: %s is %q, want %q", i.File, i.Field, i.Got, i.Want)
	}
}

// Validate compares every matched file's tags against the desired state
// and returns the discrepancies, without modifying any file. Files whose
// tags could not be read produce a single "tags" issue.
func Validate(res match.Result, img *cover.Image) []Issue {
	var issues []Issue
	for _, p := range res.Pairs {
		if p.File.Tag == nil {
			issues = append(issues, Issue{File: p.File.Rel, Field: "tags", Want: "readable tag container"})
			continue
		}
		desired := Desired(p.Track, img)
		issues = append(issues, diffTags(p.File.Rel, &desired, p.File.Tag)...)
	}
	return issues
}

func diffTags(file string, want, got *tags.Tag) []Issue {
	var issues []Issue
	add := func(field, w, g string) {
		if w != g {
			issues = append(issues, Issue{File: file, Field: field, Want: w, Got: g})
		}
	}

	add("title", want.Title, got.Title)
	add("artist", want.Artist, got.Artist)
	add("album artist", want.AlbumArtist, got.AlbumArtist)
	add("album", want.Album, got.Album)
	add("genre", want.Genre, got.Genre)
	add("year", numString(want.Year), numString(got.Year))
	add("comment", want.Comment, got.Comment)
	add("lyrics", want.Lyrics, got.Lyrics)
	add("track number", pairString(want.TrackNumber, want.TotalTracks), pairString(got.TrackNumber, got.TotalTracks))
	add("disc number", pairString(want.DiscNumber, want.TotalDiscs), pairString(got.DiscNumber, got.TotalDiscs))

	switch {
	case len(want.CoverArt) > 0 && len(got.CoverArt) == 0:
		issues = append(issues, Issue{File: file, Field: "cover art", Want: "embedded cover"})
	case len(want.CoverArt) == 0 && len(got.CoverArt) > 0:
		issues = append(issues, Issue{File: file, Field: "cover art", Got: "embedded cover"})
	case len(want.CoverArt) > 0 && !coverEqual(want, got):
		issues = append(issues, Issue{File: file, Field: "cover art", Want: "current cover", Got: "stale cover"})
	}
	return issues
}

func coverEqual(want, got *tags.Tag) bool {
	if len(want.CoverArt) != len(got.CoverArt) {
		return false
	}
	for i := range want.CoverArt {
		if want.CoverArt[i] != got.CoverArt[i] {
			return false
		}
	}
	return true
}

func numString(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func pairString(num, total int) string {
	switch {
	case num == 0:
		return ""
	case total == 0:
		return fmt.Sprintf("%d", num)
	default:
		return fmt.Sprintf("%d/%d", num, total)
	}
}

// Clear strips the tag container from every given file.
func Clear(entries []scan.FileEntry, sum *report.Summary, log zerolog.Logger, dryRun bool) {
	for _, e := range entries {
		if dryRun {
			sum.AddOK(e.Rel, "would clear tags")
			continue
		}
		if err := tags.Clear(e.Path); err != nil {
			log.Error().Err(err).Str("file", e.Rel).Msg("failed to clear tags")
			sum.AddFailed(e.Rel, err)
			continue
		}
		log.Debug().Str("file", e.Rel).Msg("tags cleared")
		sum.AddOK(e.Rel, "tags cleared")
	}
}

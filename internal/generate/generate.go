// Package generate builds an album manifest from the tags already
// present in a folder of MP3 files. It is the bootstrap step: the
// produced manifest is meant to be hand-edited afterwards.
package generate

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/scan"
	"github.com/kstrohbeck/maestro/internal/tags"
)

// Album derives a manifest from the given file entries. Album-level
// fields are decided by majority vote over the files' tags; ties go to
// the value seen first in filename order. Files whose tags could not be
// read still become tracks, titled after their filename.
func Album(entries []scan.FileEntry) *album.Album {
	sorted := make([]scan.FileEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rel < sorted[j].Rel
	})

	tagged := lo.FilterMap(sorted, func(e scan.FileEntry, _ int) (*tags.Tag, bool) {
		return e.Tag, e.Tag != nil
	})

	title, _ := mostCommon(collect(tagged, func(t *tags.Tag) string { return t.Album }))
	artist, ok := mostCommon(collect(tagged, func(t *tags.Tag) string { return t.AlbumArtist }))
	if !ok {
		artist, _ = mostCommon(collect(tagged, func(t *tags.Tag) string { return t.Artist }))
	}
	year, _ := mostCommon(lo.FilterMap(tagged, func(t *tags.Tag, _ int) (int, bool) {
		return t.Year, t.Year != 0
	}))
	genre, _ := mostCommon(collect(tagged, func(t *tags.Tag) string { return t.Genre }))

	a := &album.Album{
		Title: album.NewText(title),
		Year:  year,
	}
	if artist != "" {
		a.Artists = []album.Text{album.NewText(artist)}
	}
	if genre != "" {
		a.Genre = album.NewText(genre)
	}

	// Group files into discs by their disc tag; untagged files land on
	// disc 1 alongside files that name it explicitly.
	byDisc := lo.GroupBy(sorted, func(e scan.FileEntry) int {
		if e.Tag == nil || e.Tag.DiscNumber == 0 {
			return 1
		}
		return e.Tag.DiscNumber
	})

	discNums := lo.Keys(byDisc)
	sort.Ints(discNums)

	for _, dn := range discNums {
		files := byDisc[dn]
		sortDiscFiles(files)

		disc := album.Disc{Tracks: make([]album.Track, 0, len(files))}
		for _, e := range files {
			disc.Tracks = append(disc.Tracks, trackFor(e, a))
		}
		a.Discs = append(a.Discs, disc)
	}
	return a
}

// trackFor builds a manifest track for one file, keeping only the
// fields that differ from the album-level values.
func trackFor(e scan.FileEntry, a *album.Album) album.Track {
	tr := album.Track{}

	title := ""
	if e.Tag != nil {
		title = e.Tag.Title
	}
	if title == "" {
		title = stem(e.Rel)
	}
	tr.Title = album.NewText(title)

	if e.Tag == nil {
		return tr
	}
	if e.Tag.Artist != "" && e.Tag.Artist != a.Artist().Value() {
		tr.Artists = []album.Text{album.NewText(e.Tag.Artist)}
	}
	if e.Tag.Year != 0 && e.Tag.Year != a.Year {
		tr.Year = e.Tag.Year
	}
	if e.Tag.Genre != "" && e.Tag.Genre != a.Genre.Value() {
		tr.Genre = album.NewText(e.Tag.Genre)
	}
	if e.Tag.Comment != "" {
		tr.Comment = album.NewText(e.Tag.Comment)
	}
	if e.Tag.Lyrics != "" {
		tr.Lyrics = album.NewText(e.Tag.Lyrics)
	}
	return tr
}

// sortDiscFiles orders a disc's files by track number where tagged,
// with untagged files after, both tie-broken by filename.
func sortDiscFiles(files []scan.FileEntry) {
	num := func(e scan.FileEntry) int {
		if e.Tag == nil || e.Tag.TrackNumber == 0 {
			return int(^uint(0) >> 1)
		}
		return e.Tag.TrackNumber
	}
	sort.SliceStable(files, func(i, j int) bool {
		ni, nj := num(files[i]), num(files[j])
		if ni != nj {
			return ni < nj
		}
		return files[i].Rel < files[j].Rel
	})
}

// mostCommon returns the most frequent value; ties are broken by first
// occurrence so the result is deterministic for a given input order.
func mostCommon[T comparable](values []T) (T, bool) {
	counts := make(map[T]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	var best T
	bestCount := 0
	for _, v := range values {
		if c := counts[v]; c > bestCount {
			best = v
			bestCount = c
		}
	}
	return best, bestCount > 0
}

func collect(tagged []*tags.Tag, get func(*tags.Tag) string) []string {
	return lo.FilterMap(tagged, func(t *tags.Tag, _ int) (string, bool) {
		s := get(t)
		return s, s != ""
	})
}

func stem(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

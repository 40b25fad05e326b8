// Package match pairs manifest tracks with on-disk files. It is shared
// by the rename, update, validate and clear operations so they all agree
// on which file a track refers to.
package match

import (
	"sort"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/scan"
)

// Pair is a matched (track, file) couple.
type Pair struct {
	Track album.TrackInfo
	File  scan.FileEntry
}

// Result is the outcome of matching an album against a folder. Unmatched
// tracks are warnings for the caller; unmatched files are left alone.
type Result struct {
	Pairs           []Pair
	UnmatchedTracks []album.TrackInfo
	UnmatchedFiles  []scan.FileEntry
}

// Album pairs the album's tracks with the given file entries.
//
// Matching runs in two passes. First, files whose tags carry an exact
// (disc, track) key are paired with the manifest track at that position;
// when several files claim the same key the one earliest in
// filename-sorted order wins and the rest go unmatched. Second, tracks
// and files that are still unpaired are lined up positionally, tracks in
// manifest order against files in filename order. Both passes are
// deterministic for a given (album, entries) input.
func Album(a *album.Album, entries []scan.FileEntry) Result {
	tracks := a.Tracks()

	// The tie-break below depends on filename order, so sort here
	// rather than trusting the caller.
	sorted := make([]scan.FileEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rel < sorted[j].Rel
	})

	type key struct{ disc, track int }

	trackByKey := make(map[key]int, len(tracks))
	for i, t := range tracks {
		trackByKey[key{t.DiscNumber, t.TrackNumber}] = i
	}

	fileForTrack := make([]*scan.FileEntry, len(tracks))
	var positional []scan.FileEntry // no usable tag key; eligible for pass 2
	var unmatched []scan.FileEntry  // duplicate or unknown key; left untouched

	// Pass 1: exact (disc, track) tag keys. The first file in filename
	// order wins a key; later files with the same key stay unmatched.
	for i := range sorted {
		e := sorted[i]
		if e.Tag == nil || e.Tag.TrackNumber == 0 {
			positional = append(positional, e)
			continue
		}
		disc := e.Tag.DiscNumber
		if disc == 0 {
			disc = 1
		}
		ti, ok := trackByKey[key{disc, e.Tag.TrackNumber}]
		if !ok || fileForTrack[ti] != nil {
			unmatched = append(unmatched, e)
			continue
		}
		fileForTrack[ti] = &sorted[i]
	}

	// Pass 2: positional. Tracks still open pair with untagged files in
	// filename order.
	var openTracks []int
	for i := range tracks {
		if fileForTrack[i] == nil {
			openTracks = append(openTracks, i)
		}
	}

	n := len(openTracks)
	if n > len(positional) {
		n = len(positional)
	}
	for i := 0; i < n; i++ {
		fileForTrack[openTracks[i]] = &positional[i]
	}

	res := Result{}
	for i, t := range tracks {
		if fileForTrack[i] == nil {
			res.UnmatchedTracks = append(res.UnmatchedTracks, t)
			continue
		}
		res.Pairs = append(res.Pairs, Pair{Track: t, File: *fileForTrack[i]})
	}
	res.UnmatchedFiles = append(res.UnmatchedFiles, positional[n:]...)
	res.UnmatchedFiles = append(res.UnmatchedFiles, unmatched...)
	sort.Slice(res.UnmatchedFiles, func(i, j int) bool {
		return res.UnmatchedFiles[i].Rel < res.UnmatchedFiles[j].Rel
	})

	return res
}

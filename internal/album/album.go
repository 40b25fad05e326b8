// Package album holds the album manifest model: the desired-state
// description of an album that the tag and rename operations reconcile
// against a folder of MP3 files. The manifest lives in
// <folder>/extras/album.yaml.
package album

// Album is the parsed manifest for one album.
type Album struct {
	Title   Text
	Artists []Text
	Year    int    // 0 means unset
	Genre   Text   // zero means unset
	Cover   string // optional path to a cover image, relative to the album folder
	Discs   []Disc
}

// Disc is an ordered list of tracks. In the manifest a disc is just a
// YAML sequence; single-disc albums use a top-level "tracks" key.
type Disc struct {
	Tracks []Track
}

// Track is one manifest track. Optional fields default to the album's
// values when read through TrackInfo.
type Track struct {
	Title   Text
	Artists []Text // nil means the album's artists
	Year    int
	Genre   Text
	Comment Text
	Lyrics  Text
}

// NumDiscs returns the number of discs in the album.
func (a *Album) NumDiscs() int {
	return len(a.Discs)
}

// NumTracks returns the total number of tracks across all discs.
func (a *Album) NumTracks() int {
	n := 0
	for _, d := range a.Discs {
		n += len(d.Tracks)
	}
	return n
}

// Artist returns the album's artists joined with ", ".
func (a *Album) Artist() Text {
	return JoinTexts(a.Artists)
}

// Tracks flattens the album into TrackInfos with 1-based disc and track
// numbers, in manifest order.
func (a *Album) Tracks() []TrackInfo {
	infos := make([]TrackInfo, 0, a.NumTracks())
	for di := range a.Discs {
		for ti := range a.Discs[di].Tracks {
			infos = append(infos, TrackInfo{
				Album:       a,
				Track:       &a.Discs[di].Tracks[ti],
				DiscNumber:  di + 1,
				TrackNumber: ti + 1,
			})
		}
	}
	return infos
}

// TrackInfo is a track together with its position in the album. All the
// tag-level derivations (artist inheritance, year/genre fallback, the
// canonical filename) live here.
type TrackInfo struct {
	Album       *Album
	Track       *Track
	DiscNumber  int
	TrackNumber int
}

// Artists returns the track's artists, falling back to the album's.
func (t TrackInfo) Artists() []Text {
	if t.Track.Artists != nil {
		return t.Track.Artists
	}
	return t.Album.Artists
}

// Artist returns the track's artists joined with ", ".
func (t TrackInfo) Artist() Text {
	return JoinTexts(t.Artists())
}

// AlbumArtist returns the album's joined artists when the track
// overrides them, and false otherwise. The album-artist tag frame is
// only written for overriding tracks.
func (t TrackInfo) AlbumArtist() (Text, bool) {
	if t.Track.Artists == nil || textsEqual(t.Track.Artists, t.Album.Artists) {
		return Text{}, false
	}
	return t.Album.Artist(), true
}

// Year returns the track's year, falling back to the album's.
func (t TrackInfo) Year() int {
	if t.Track.Year != 0 {
		return t.Track.Year
	}
	return t.Album.Year
}

// Genre returns the track's genre, falling back to the album's.
func (t TrackInfo) Genre() Text {
	if !t.Track.Genre.IsZero() {
		return t.Track.Genre
	}
	return t.Album.Genre
}

// IsOnlyDisc reports whether the track's disc is the album's only one.
func (t TrackInfo) IsOnlyDisc() bool {
	return t.Album.NumDiscs() == 1
}

// TracksOnDisc returns the number of tracks on the track's disc.
func (t TrackInfo) TracksOnDisc() int {
	return len(t.Album.Discs[t.DiscNumber-1].Tracks)
}

func textsEqual(a, b []Text) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

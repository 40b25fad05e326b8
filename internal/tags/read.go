package tags

import (
	"os"
	"strconv"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
)

// Read reads the ID3v2 tags of an MP3 file. A file with no parseable
// tag container returns a *ReadError.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag has issues with some UTF-16 encoded ID3 tags
		return readWithID3v2Fallback(path)
	}

	track, totalTracks := m.Track()
	disc, totalDiscs := m.Disc()

	t := &Tag{
		Path:        path,
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Genre:       m.Genre(),
		Year:        m.Year(),
		Comment:     m.Comment(),
		Lyrics:      m.Lyrics(),
		TrackNumber: track,
		TotalTracks: totalTracks,
		DiscNumber:  disc,
		TotalDiscs:  totalDiscs,
	}

	if pic := m.Picture(); pic != nil {
		t.CoverArt = pic.Data
		t.CoverMIME = pic.MIMEType
	}

	return t, nil
}

// readWithID3v2Fallback reads tags using only the id3v2 library.
func readWithID3v2Fallback(path string) (*Tag, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer id3tag.Close()

	track, totalTracks := parseNumberPair(getTextFrame(id3tag, "TRCK"))
	disc, totalDiscs := parseNumberPair(getTextFrame(id3tag, "TPOS"))

	year := 0
	if yearStr := id3tag.Year(); len(yearStr) >= 4 {
		year, _ = strconv.Atoi(yearStr[:4])
	}
	if year == 0 {
		if tdrc := getTextFrame(id3tag, "TDRC"); len(tdrc) >= 4 {
			year, _ = strconv.Atoi(tdrc[:4])
		}
	}

	t := &Tag{
		Path:        path,
		Title:       id3tag.Title(),
		Artist:      id3tag.Artist(),
		AlbumArtist: getTextFrame(id3tag, "TPE2"),
		Album:       id3tag.Album(),
		Genre:       id3tag.Genre(),
		Year:        year,
		Comment:     getCommentFrame(id3tag),
		Lyrics:      getLyricsFrame(id3tag),
		TrackNumber: track,
		TotalTracks: totalTracks,
		DiscNumber:  disc,
		TotalDiscs:  totalDiscs,
	}

	if frames := id3tag.GetFrames(id3tag.CommonID("Attached picture")); len(frames) > 0 {
		if pic, ok := frames[0].(id3v2.PictureFrame); ok {
			t.CoverArt = pic.Picture
			t.CoverMIME = pic.MimeType
		}
	}

	return t, nil
}

// getTextFrame reads a text frame value from an ID3v2 tag.
func getTextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

// getCommentFrame reads the first COMM frame's text.
func getCommentFrame(id3tag *id3v2.Tag) string {
	for _, frame := range id3tag.GetFrames(id3tag.CommonID("Comments")) {
		if cf, ok := frame.(id3v2.CommentFrame); ok {
			return cf.Text
		}
	}
	return ""
}

// getLyricsFrame reads the first USLT frame's text.
func getLyricsFrame(id3tag *id3v2.Tag) string {
	for _, frame := range id3tag.GetFrames(id3tag.CommonID("Unsynchronised lyrics/text transcription")) {
		if lf, ok := frame.(id3v2.UnsynchronisedLyricsFrame); ok {
			return lf.Lyrics
		}
	}
	return ""
}

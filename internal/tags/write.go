package tags

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/bogem/id3v2/v2"
)

// Write replaces the file's ID3v2 tags with the given tag. The write is
// all-or-nothing for the file: frames are built in memory and the save
// either fully succeeds or leaves the container untouched.
func Write(path string, t *Tag) error {
	if _, err := os.Stat(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - strip them and retry
		if stripErr := stripID3v2Tag(path); stripErr != nil {
			return &WriteError{Path: path, Err: fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)}
		}
		id3tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer id3tag.Close()

	// ID3v2.4 with UTF-8 for full Unicode support
	id3tag.SetVersion(4)
	id3tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Clear existing frames to avoid duplicates
	id3tag.DeleteAllFrames()

	id3tag.SetTitle(t.Title)
	if t.Artist != "" {
		id3tag.SetArtist(t.Artist)
	}
	id3tag.SetAlbum(t.Album)
	if t.Genre != "" {
		id3tag.SetGenre(t.Genre)
	}

	id3tag.AddTextFrame(
		id3tag.CommonID("Track number/Position in set"),
		id3v2.EncodingUTF8,
		formatNumberPair(t.TrackNumber, t.TotalTracks),
	)
	if t.DiscNumber > 0 {
		id3tag.AddTextFrame(
			id3tag.CommonID("Part of a set"),
			id3v2.EncodingUTF8,
			formatNumberPair(t.DiscNumber, t.TotalDiscs),
		)
	}

	if t.AlbumArtist != "" {
		id3tag.AddTextFrame(id3tag.CommonID("Band/Orchestra/Accompaniment"), id3v2.EncodingUTF8, t.AlbumArtist)
	}

	// Recording date (TDRC in ID3v2.4)
	if t.Year != 0 {
		id3tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, fmt.Sprintf("%d", t.Year))
	}

	if t.Comment != "" {
		id3tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     t.Comment,
		})
	}

	if t.Lyrics != "" {
		id3tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Lyrics:   t.Lyrics,
		})
	}

	if len(t.CoverArt) > 0 {
		mime := t.CoverMIME
		if mime == "" {
			mime = detectMimeType(t.CoverArt)
		}
		id3tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    mime,
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     t.CoverArt,
		})
	}

	if err := id3tag.Save(); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("save tags: %w", err)}
	}

	return nil
}

// Clear removes the ID3v2 tag container from the file entirely.
func Clear(path string) error {
	if err := stripID3v2Tag(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

// detectMimeType detects the MIME type of image data.
func detectMimeType(data []byte) string {
	if len(data) == 0 {
		return mimeJPEG
	}
	switch http.DetectContentType(data) {
	case mimePNG:
		return mimePNG
	default:
		return mimeJPEG
	}
}

// stripID3v2Tag removes the ID3v2 tag from an MP3 file by rewriting the
// file without its tag prefix. Used both by Clear and to get rid of
// ID3v2.2 tags which the id3v2 library doesn't support.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	// Check for ID3v2 header (must have at least 10 bytes for header)
	if len(data) < 10 || string(data[:3]) != id3Magic {
		return nil // No ID3v2 tag to strip
	}

	// Parse tag size from bytes 6-9 (synchsafe integer: each byte uses only 7 bits)
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	tagSize := size + 10 // Add 10-byte header

	// Check for footer flag (bit 4 of flags byte) - ID3v2.4 only
	if data[5]&0x10 != 0 {
		tagSize += 10
	}

	if tagSize >= len(data) {
		return fmt.Errorf("ID3v2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	// Preserve original file permissions
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	// Write audio data without the ID3v2 tag
	if err := os.WriteFile(path, data[tagSize:], info.Mode()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

package album

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Extension used by every canonical filename.
const Extension = ".mp3"

// maxStemLen bounds the canonical filename (without extension) so the
// full name stays well under common filesystem limits.
const maxStemLen = 180

// CanonicalFilename derives the track's canonical filename. It is a pure
// function of the track's position and title:
//
//	"{disc}-{number} - {title}.mp3"  on multi-disc albums
//	"{number} - {title}.mp3"         on single-disc albums
//
// The track number is zero-padded to max(2, digits of the disc's track
// count). The title is made file-safe; if nothing survives sanitization
// the placeholder "track" is used. The stem is truncated so the name
// stays within filesystem limits. The same inputs always produce the
// same name, which is what makes re-running rename a no-op.
func (t TrackInfo) CanonicalFilename() string {
	width := NumDigits(t.TracksOnDisc())
	if width < 2 {
		width = 2
	}

	title := t.Track.Title.FileSafe()
	title = strings.TrimSpace(title)
	if title == "" {
		title = "track"
	}

	var stem string
	if t.IsOnlyDisc() {
		stem = fmt.Sprintf("%0*d - %s", width, t.TrackNumber, title)
	} else {
		stem = fmt.Sprintf("%d-%0*d - %s", t.DiscNumber, width, t.TrackNumber, title)
	}

	if len(stem) > maxStemLen {
		cut := maxStemLen
		for cut > 0 && !utf8.RuneStart(stem[cut]) {
			cut--
		}
		stem = strings.TrimSpace(stem[:cut])
	}
	return stem + Extension
}

// NumDigits returns the number of base-10 digits in n. Zero and negative
// numbers count as one digit.
func NumDigits(n int) int {
	if n <= 0 {
		return 1
	}
	count := 0
	for n != 0 {
		n /= 10
		count++
	}
	return count
}

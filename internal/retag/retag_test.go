package retag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/cover"
	"github.com/kstrohbeck/maestro/internal/match"
	"github.com/kstrohbeck/maestro/internal/report"
	"github.com/kstrohbeck/maestro/internal/scan"
	"github.com/kstrohbeck/maestro/internal/tags"
)

// minimalMP3 is a single MPEG frame, enough for the tag libraries to
// treat the file as audio.
func minimalMP3() []byte {
	frame := make([]byte, 417)
	frame[0] = 0xff
	frame[1] = 0xfb
	frame[2] = 0x90
	return frame
}

func writeMP3(t *testing.T, dir, name string) scan.FileEntry {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, minimalMP3(), 0o644))
	return scan.FileEntry{Path: path, Rel: name}
}

func testAlbum() *album.Album {
	return &album.Album{
		Title:   album.NewText("Night Drive"),
		Artists: []album.Text{album.NewText("The Lanterns")},
		Year:    2019,
		Genre:   album.NewText("Electronic"),
		Discs: []album.Disc{{Tracks: []album.Track{
			{Title: album.NewText("Opening")},
			{Title: album.NewText("Midnight"), Artists: []album.Text{album.NewText("Guest Star")}},
		}}},
	}
}

func TestDesired(t *testing.T) {
	a := testAlbum()
	infos := a.Tracks()

	got := Desired(infos[0], nil)
	assert.Equal(t, "Opening", got.Title)
	assert.Equal(t, "The Lanterns", got.Artist)
	assert.Empty(t, got.AlbumArtist)
	assert.Equal(t, "Night Drive", got.Album)
	assert.Equal(t, "Electronic", got.Genre)
	assert.Equal(t, 2019, got.Year)
	assert.Equal(t, 1, got.TrackNumber)
	assert.Equal(t, 2, got.TotalTracks)
	assert.Zero(t, got.DiscNumber)
	assert.Zero(t, got.TotalDiscs)

	got = Desired(infos[1], nil)
	assert.Equal(t, "Guest Star", got.Artist)
	assert.Equal(t, "The Lanterns", got.AlbumArtist)
}

func TestDesiredMultiDisc(t *testing.T) {
	a := testAlbum()
	a.Discs = append(a.Discs, album.Disc{Tracks: []album.Track{{Title: album.NewText("Encore")}}})

	infos := a.Tracks()
	got := Desired(infos[2], nil)
	assert.Equal(t, 2, got.DiscNumber)
	assert.Equal(t, 2, got.TotalDiscs)
	assert.Equal(t, 1, got.TotalTracks)
}

func TestDesiredCover(t *testing.T) {
	a := testAlbum()
	img := &cover.Image{Data: []byte{1, 2, 3}, MIME: "image/png"}

	got := Desired(a.Tracks()[0], img)
	assert.Equal(t, []byte{1, 2, 3}, got.CoverArt)
	assert.Equal(t, "image/png", got.CoverMIME)
}

func TestDesiredVW(t *testing.T) {
	a := testAlbum()
	a.Title = album.NewText("Nuit Étoilée")
	a.Discs[0].Tracks[0].Title = album.TextWithASCII("Ouverture™", "Ouverture (TM)")

	got := DesiredVW(a.Tracks()[0], nil)
	assert.Equal(t, "Ouverture (TM)", got.Title)
	assert.Equal(t, "Nuit ?toil?e", got.Album)
	assert.Equal(t, 1, got.TrackNumber)
	assert.Zero(t, got.TotalTracks)
	assert.Empty(t, got.Genre)
	assert.Zero(t, got.Year)
}

func TestUpdateWritesAndSkips(t *testing.T) {
	dir := t.TempDir()
	a := testAlbum()
	e1 := writeMP3(t, dir, "01 - Opening.mp3")
	e2 := writeMP3(t, dir, "02 - Midnight.mp3")

	res := match.Album(a, []scan.FileEntry{e1, e2})
	require.Len(t, res.Pairs, 2)

	sum := report.New("update")
	Update(res, nil, sum, zerolog.Nop(), false)
	require.False(t, sum.HasFailures())
	assert.Len(t, sum.Changed(), 2)

	tag, err := tags.Read(e1.Path)
	require.NoError(t, err)
	assert.Equal(t, "Opening", tag.Title)
	assert.Equal(t, "The Lanterns", tag.Artist)
	assert.Equal(t, 1, tag.TrackNumber)

	// Second run sees the tags it just wrote and skips every file.
	entries, err := scan.Folder(dir, zerolog.Nop())
	require.NoError(t, err)
	res = match.Album(a, entries)
	sum = report.New("update")
	Update(res, nil, sum, zerolog.Nop(), false)
	assert.Empty(t, sum.Changed())
	assert.False(t, sum.HasFailures())
}

func TestUpdateContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	a := testAlbum()
	a.Discs[0].Tracks = append(a.Discs[0].Tracks, album.Track{Title: album.NewText("Closing")})
	e1 := writeMP3(t, dir, "01 - Opening.mp3")
	e2 := writeMP3(t, dir, "02 - Midnight.mp3")
	e3 := writeMP3(t, dir, "03 - Closing.mp3")

	res := match.Album(a, []scan.FileEntry{e1, e2, e3})
	require.Len(t, res.Pairs, 3)

	// One file vanishes between matching and the write pass. Its
	// update fails; the rest of the batch must still go through.
	require.NoError(t, os.Remove(e2.Path))

	sum := report.New("update")
	Update(res, nil, sum, zerolog.Nop(), false)

	assert.True(t, sum.HasFailures())
	assert.Equal(t, 1, sum.ExitCode())
	assert.Len(t, sum.Changed(), 2)

	for _, path := range []string{e1.Path, e3.Path} {
		tag, err := tags.Read(path)
		require.NoError(t, err)
		assert.NotEmpty(t, tag.Title)
	}

	var failed []string
	for _, r := range sum.Results {
		if r.Status == report.StatusFailed {
			failed = append(failed, r.File)
		}
	}
	assert.Equal(t, []string{"02 - Midnight.mp3"}, failed)
}

func TestUpdateDryRun(t *testing.T) {
	dir := t.TempDir()
	a := testAlbum()
	e1 := writeMP3(t, dir, "01 - Opening.mp3")
	e2 := writeMP3(t, dir, "02 - Midnight.mp3")

	res := match.Album(a, []scan.FileEntry{e1, e2})
	sum := report.New("update")
	Update(res, nil, sum, zerolog.Nop(), true)
	assert.Len(t, sum.Changed(), 2)

	tag, err := tags.Read(e1.Path)
	require.NoError(t, err)
	assert.Empty(t, tag.Title)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	a := testAlbum()
	e1 := writeMP3(t, dir, "01 - Opening.mp3")
	e2 := writeMP3(t, dir, "02 - Midnight.mp3")

	res := match.Album(a, []scan.FileEntry{e1, e2})
	sum := report.New("update")
	Update(res, nil, sum, zerolog.Nop(), false)
	require.False(t, sum.HasFailures())

	entries, err := scan.Folder(dir, zerolog.Nop())
	require.NoError(t, err)
	res = match.Album(a, entries)
	assert.Empty(t, Validate(res, nil))

	// Change the manifest so every file is now wrong about the album.
	a.Title = album.NewText("Day Drive")
	res = match.Album(a, entries)
	issues := Validate(res, nil)
	require.Len(t, issues, 2)
	assert.Equal(t, "album", issues[0].Field)
	assert.Equal(t, "Day Drive", issues[0].Want)
	assert.Equal(t, "Night Drive", issues[0].Got)
}

func TestValidateUnreadableTags(t *testing.T) {
	a := testAlbum()
	res := match.Result{Pairs: []match.Pair{{
		Track: a.Tracks()[0],
		File:  scan.FileEntry{Rel: "01.mp3", Tag: nil},
	}}}

	issues := Validate(res, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "tags", issues[0].Field)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	a := testAlbum()
	e1 := writeMP3(t, dir, "01 - Opening.mp3")
	e2 := writeMP3(t, dir, "02 - Midnight.mp3")

	res := match.Album(a, []scan.FileEntry{e1, e2})
	sum := report.New("update")
	Update(res, nil, sum, zerolog.Nop(), false)
	require.False(t, sum.HasFailures())

	entries, err := scan.Folder(dir, zerolog.Nop())
	require.NoError(t, err)
	sum = report.New("clear")
	Clear(entries, sum, zerolog.Nop(), false)
	require.False(t, sum.HasFailures())

	tag, err := tags.Read(e1.Path)
	require.NoError(t, err)
	assert.Empty(t, tag.Title)
	assert.Zero(t, tag.TrackNumber)
}

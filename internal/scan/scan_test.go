package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/tags"
)

func minimalMP3() []byte {
	frame := make([]byte, 417)
	frame[0] = 0xff
	frame[1] = 0xfb
	frame[2] = 0x90
	return frame
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "02 - Second.mp3"), minimalMP3())
	writeFile(t, filepath.Join(dir, "01 - First.mp3"), minimalMP3())
	writeFile(t, filepath.Join(dir, "Disc 2", "01 - Third.mp3"), minimalMP3())
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not music"))
	writeFile(t, filepath.Join(dir, "extras", "album.yaml"), []byte("title: x"))
	writeFile(t, filepath.Join(dir, "extras", "bonus.mp3"), minimalMP3())
	writeFile(t, filepath.Join(dir, ".cache", "stale.mp3"), minimalMP3())

	entries, err := Folder(dir, zerolog.Nop())
	require.NoError(t, err)

	rels := make([]string, len(entries))
	for i, e := range entries {
		rels[i] = e.Rel
	}
	assert.Equal(t, []string{
		"01 - First.mp3",
		"02 - Second.mp3",
		"Disc 2/01 - Third.mp3",
	}, rels)
}

func TestFolderReadsTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01 - First.mp3")
	writeFile(t, path, minimalMP3())
	require.NoError(t, tags.Write(path, &tags.Tag{Title: "First", TrackNumber: 1}))

	entries, err := Folder(dir, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Tag)
	assert.Equal(t, "First", entries[0].Tag.Title)
	assert.Equal(t, 1, entries[0].Tag.TrackNumber)
}

func TestFolderToleratesUnreadableTags(t *testing.T) {
	dir := t.TempDir()
	// A truncated ID3 header fails in both tag readers.
	writeFile(t, filepath.Join(dir, "junk.mp3"), []byte("ID3"))

	entries, err := Folder(dir, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Tag)
}

func TestFolderMissing(t *testing.T) {
	_, err := Folder(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	assert.Error(t, err)
}

func TestDiscDir(t *testing.T) {
	single := &album.Album{Discs: make([]album.Disc, 1)}
	assert.Empty(t, DiscDir(single, 1))

	multi := &album.Album{Discs: make([]album.Disc, 3)}
	assert.Equal(t, "Disc 2", DiscDir(multi, 2))

	many := &album.Album{Discs: make([]album.Disc, 10)}
	assert.Equal(t, "Disc 02", DiscDir(many, 2))
}

package rename

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/match"
	"github.com/kstrohbeck/maestro/internal/report"
	"github.com/kstrohbeck/maestro/internal/scan"
)

func writeFile(t *testing.T, folder, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(folder, name), []byte(content), 0o644))
}

func readFile(t *testing.T, folder, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(folder, name))
	require.NoError(t, err)
	return string(data)
}

func listNames(t *testing.T, folder string) []string {
	t.Helper()
	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func pairFor(a *album.Album, idx int, rel string) match.Pair {
	return match.Pair{
		Track: a.Tracks()[idx],
		File:  scan.FileEntry{Path: rel, Rel: rel},
	}
}

func demoAlbum(titles ...string) *album.Album {
	tracks := make([]album.Track, len(titles))
	for i, title := range titles {
		tracks[i] = album.Track{Title: album.NewText(title)}
	}
	return &album.Album{
		Title:   album.NewText("Demo"),
		Artists: []album.Text{album.NewText("Artist")},
		Discs:   []album.Disc{{Tracks: tracks}},
	}
}

func TestPlanSkipsCanonicalNames(t *testing.T) {
	a := demoAlbum("Intro", "Outro")
	res := match.Result{Pairs: []match.Pair{
		pairFor(a, 0, "01 - Intro.mp3"),
		pairFor(a, 1, "track2.mp3"),
	}}

	sum := report.New("rename")
	ops := Plan(res, sum)

	require.Len(t, ops, 1)
	assert.Equal(t, "track2.mp3", ops[0].From)
	assert.Equal(t, "02 - Outro.mp3", ops[0].To)
	require.Len(t, sum.Results, 1)
	assert.Equal(t, report.StatusSkipped, sum.Results[0].Status)
}

func TestApplySimpleRename(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "track1.mp3", "one")

	a := demoAlbum("Intro", "Outro")
	sum := report.New("rename")
	ops := Plan(match.Result{Pairs: []match.Pair{pairFor(a, 0, "track1.mp3")}}, sum)
	Apply(folder, ops, sum, zerolog.Nop())

	assert.Equal(t, "one", readFile(t, folder, "01 - Intro.mp3"))
	assert.False(t, sum.HasFailures())
	require.Len(t, sum.Changed(), 1)
	assert.Equal(t, "renamed to 01 - Intro.mp3", sum.Changed()[0].Detail)
}

func TestApplySwapUsesTwoPhaseRename(t *testing.T) {
	folder := t.TempDir()
	// track 1's target name is track 2's current name and vice versa.
	writeFile(t, folder, "01 - Intro.mp3", "actually outro")
	writeFile(t, folder, "02 - Outro.mp3", "actually intro")

	sum := report.New("rename")
	ops := []Op{
		{From: "02 - Outro.mp3", To: "01 - Intro.mp3", orig: "02 - Outro.mp3"},
		{From: "01 - Intro.mp3", To: "02 - Outro.mp3", orig: "01 - Intro.mp3"},
	}
	Apply(folder, ops, sum, zerolog.Nop())

	assert.False(t, sum.HasFailures())
	assert.Equal(t, "actually intro", readFile(t, folder, "01 - Intro.mp3"))
	assert.Equal(t, "actually outro", readFile(t, folder, "02 - Outro.mp3"))
	assert.ElementsMatch(t, []string{"01 - Intro.mp3", "02 - Outro.mp3"}, listNames(t, folder))
}

func TestApplyChainRenamesInOrder(t *testing.T) {
	folder := t.TempDir()
	// b -> c and a -> b: a's rename must wait for b to move.
	writeFile(t, folder, "a.mp3", "first")
	writeFile(t, folder, "b.mp3", "second")

	sum := report.New("rename")
	ops := []Op{
		{From: "a.mp3", To: "b.mp3", orig: "a.mp3"},
		{From: "b.mp3", To: "c.mp3", orig: "b.mp3"},
	}
	Apply(folder, ops, sum, zerolog.Nop())

	assert.False(t, sum.HasFailures())
	assert.Equal(t, "first", readFile(t, folder, "b.mp3"))
	assert.Equal(t, "second", readFile(t, folder, "c.mp3"))
}

func TestApplyCollisionWithUnplannedFileFails(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "track1.mp3", "one")
	writeFile(t, folder, "01 - Intro.mp3", "squatter")

	a := demoAlbum("Intro", "Outro")
	sum := report.New("rename")
	ops := Plan(match.Result{Pairs: []match.Pair{pairFor(a, 0, "track1.mp3")}}, sum)
	Apply(folder, ops, sum, zerolog.Nop())

	assert.True(t, sum.HasFailures())
	// Nothing was lost.
	assert.Equal(t, "one", readFile(t, folder, "track1.mp3"))
	assert.Equal(t, "squatter", readFile(t, folder, "01 - Intro.mp3"))
}

func TestApplyIsIdempotent(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "track1.mp3", "one")

	a := demoAlbum("Intro")
	res := match.Result{Pairs: []match.Pair{pairFor(a, 0, "track1.mp3")}}

	sum := report.New("rename")
	Apply(folder, Plan(res, sum), sum, zerolog.Nop())
	require.Len(t, sum.Changed(), 1)

	// Second run: the file is already canonical, nothing to do.
	res2 := match.Result{Pairs: []match.Pair{pairFor(a, 0, "01 - Intro.mp3")}}
	sum2 := report.New("rename")
	ops := Plan(res2, sum2)
	Apply(folder, ops, sum2, zerolog.Nop())

	assert.Empty(t, ops)
	assert.Empty(t, sum2.Changed())
	assert.False(t, sum2.HasFailures())
}

func TestApplyContinuesAfterFailure(t *testing.T) {
	folder := t.TempDir()
	writeFile(t, folder, "b.mp3", "two")

	sum := report.New("rename")
	ops := []Op{
		{From: "missing.mp3", To: "01 - One.mp3", orig: "missing.mp3"},
		{From: "b.mp3", To: "02 - Two.mp3", orig: "b.mp3"},
	}
	Apply(folder, ops, sum, zerolog.Nop())

	assert.True(t, sum.HasFailures())
	require.Len(t, sum.Changed(), 1)
	assert.Equal(t, "two", readFile(t, folder, "02 - Two.mp3"))
}

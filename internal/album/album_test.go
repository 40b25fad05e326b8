package album

import "testing"

func twoDiscAlbum() *Album {
	return &Album{
		Title:   NewText("foo"),
		Artists: []Text{NewText("a"), NewText("b")},
		Discs: []Disc{
			{Tracks: []Track{{Title: NewText("one")}, {Title: NewText("two")}}},
			{Tracks: []Track{{Title: NewText("three")}}},
		},
	}
}

func TestTracksAreNumberedPerDisc(t *testing.T) {
	infos := twoDiscAlbum().Tracks()
	if len(infos) != 3 {
		t.Fatalf("len(Tracks()) = %d, want 3", len(infos))
	}

	want := []struct{ disc, track int }{{1, 1}, {1, 2}, {2, 1}}
	for i, w := range want {
		if infos[i].DiscNumber != w.disc || infos[i].TrackNumber != w.track {
			t.Errorf("track %d at (%d,%d), want (%d,%d)",
				i, infos[i].DiscNumber, infos[i].TrackNumber, w.disc, w.track)
		}
	}
}

func TestArtistsAreInheritedFromAlbum(t *testing.T) {
	a := &Album{
		Title:   NewText("foo"),
		Artists: []Text{NewText("a"), NewText("b")},
		Discs:   []Disc{{Tracks: []Track{{Title: NewText("song")}}}},
	}
	track := a.Tracks()[0]

	artists := track.Artists()
	if len(artists) != 2 || artists[0] != NewText("a") || artists[1] != NewText("b") {
		t.Errorf("Artists() = %v, want album artists", artists)
	}
	if _, ok := track.AlbumArtist(); ok {
		t.Error("AlbumArtist() set without a track override")
	}
}

func TestArtistsAreOverriddenByTrack(t *testing.T) {
	a := &Album{
		Title:   NewText("foo"),
		Artists: []Text{NewText("a")},
		Discs: []Disc{{Tracks: []Track{
			{Title: NewText("song"), Artists: []Text{NewText("d")}},
		}}},
	}
	track := a.Tracks()[0]

	if got := track.Artist(); got != NewText("d") {
		t.Errorf("Artist() = %v, want d", got)
	}
	albumArtist, ok := track.AlbumArtist()
	if !ok {
		t.Fatal("AlbumArtist() not set for overriding track")
	}
	if albumArtist != NewText("a") {
		t.Errorf("AlbumArtist() = %v, want a", albumArtist)
	}
}

func TestIdenticalTrackArtistsAreNotAnOverride(t *testing.T) {
	a := &Album{
		Title:   NewText("foo"),
		Artists: []Text{NewText("a")},
		Discs: []Disc{{Tracks: []Track{
			{Title: NewText("song"), Artists: []Text{NewText("a")}},
		}}},
	}
	if _, ok := a.Tracks()[0].AlbumArtist(); ok {
		t.Error("AlbumArtist() set even though track artists equal album artists")
	}
}

func TestYearAndGenreFallBackToAlbum(t *testing.T) {
	a := &Album{
		Title:   NewText("foo"),
		Artists: []Text{NewText("a")},
		Year:    1990,
		Genre:   NewText("Rock"),
		Discs: []Disc{{Tracks: []Track{
			{Title: NewText("song")},
			{Title: NewText("other"), Year: 1991, Genre: NewText("Jazz")},
		}}},
	}
	tracks := a.Tracks()

	if got := tracks[0].Year(); got != 1990 {
		t.Errorf("Year() = %d, want 1990", got)
	}
	if got := tracks[0].Genre(); got != NewText("Rock") {
		t.Errorf("Genre() = %v, want Rock", got)
	}
	if got := tracks[1].Year(); got != 1991 {
		t.Errorf("Year() = %d, want 1991", got)
	}
	if got := tracks[1].Genre(); got != NewText("Jazz") {
		t.Errorf("Genre() = %v, want Jazz", got)
	}
}

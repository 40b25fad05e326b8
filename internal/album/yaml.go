package album

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FormatError is returned when the album manifest can't be parsed or is
// missing required keys.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid album manifest: %v", e.Err)
	}
	return fmt.Sprintf("invalid album manifest %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Load reads and parses the manifest from <folder>/extras/album.yaml.
// A missing or unreadable file surfaces as the underlying I/O error;
// malformed YAML surfaces as a *FormatError.
func Load(folder string) (*Album, error) {
	path := ManifestPath(folder)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load album manifest: %w", err)
	}
	defer f.Close()

	a, err := Parse(f)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	return a, nil
}

// Parse decodes a manifest from r.
func Parse(r io.Reader) (*Album, error) {
	var a Album
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FormatError{Err: err}
	}
	return &a, nil
}

// Save writes the manifest to <folder>/extras/album.yaml, creating the
// extras directory if needed.
func Save(folder string, a *Album) error {
	if err := os.MkdirAll(ExtrasPath(folder), 0o755); err != nil {
		return fmt.Errorf("create extras directory: %w", err)
	}

	f, err := os.Create(ManifestPath(folder))
	if err != nil {
		return fmt.Errorf("create album manifest: %w", err)
	}
	defer f.Close()

	if err := Write(f, a); err != nil {
		return err
	}
	return f.Close()
}

// Write encodes a manifest to w.
func Write(w io.Writer, a *Album) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode album manifest: %w", err)
	}
	return enc.Close()
}

// UnmarshalYAML parses the album mapping. "artist" and "artists" are
// both accepted, as are "tracks" (one disc) and "discs". Unknown keys
// are ignored so manifests can carry notes.
func (a *Album) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return &FormatError{Err: fmt.Errorf("line %d: album must be a mapping", node.Line)}
	}

	var aux struct {
		Title   Text    `yaml:"title"`
		Artist  *Text   `yaml:"artist"`
		Artists []Text  `yaml:"artists"`
		Year    int     `yaml:"year"`
		Genre   Text    `yaml:"genre"`
		Cover   string  `yaml:"cover"`
		Tracks  []Track `yaml:"tracks"`
		Discs   []Disc  `yaml:"discs"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}

	if aux.Title.IsZero() {
		return &FormatError{Err: fmt.Errorf("line %d: missing \"title\" key", node.Line)}
	}
	if aux.Artist != nil && aux.Artists != nil {
		return &FormatError{Err: fmt.Errorf("line %d: \"artist\" and \"artists\" are mutually exclusive", node.Line)}
	}
	if aux.Tracks != nil && aux.Discs != nil {
		return &FormatError{Err: fmt.Errorf("line %d: \"tracks\" and \"discs\" are mutually exclusive", node.Line)}
	}

	artists := aux.Artists
	if aux.Artist != nil {
		artists = []Text{*aux.Artist}
	}
	discs := aux.Discs
	if aux.Tracks != nil {
		discs = []Disc{{Tracks: aux.Tracks}}
	}

	*a = Album{
		Title:   aux.Title,
		Artists: artists,
		Year:    aux.Year,
		Genre:   aux.Genre,
		Cover:   aux.Cover,
		Discs:   discs,
	}
	return nil
}

// MarshalYAML writes the album back in its human-edited shape: a single
// artist collapses to "artist", a single disc collapses to "tracks".
func (a Album) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value interface{}) error {
		var k, v yaml.Node
		if err := k.Encode(key); err != nil {
			return err
		}
		if err := v.Encode(value); err != nil {
			return err
		}
		root.Content = append(root.Content, &k, &v)
		return nil
	}

	if err := add("title", a.Title); err != nil {
		return nil, err
	}
	if len(a.Artists) == 1 {
		if err := add("artist", a.Artists[0]); err != nil {
			return nil, err
		}
	} else if err := add("artists", a.Artists); err != nil {
		return nil, err
	}
	if a.Year != 0 {
		if err := add("year", a.Year); err != nil {
			return nil, err
		}
	}
	if !a.Genre.IsZero() {
		if err := add("genre", a.Genre); err != nil {
			return nil, err
		}
	}
	if a.Cover != "" {
		if err := add("cover", a.Cover); err != nil {
			return nil, err
		}
	}
	if len(a.Discs) == 1 {
		if err := add("tracks", a.Discs[0]); err != nil {
			return nil, err
		}
	} else if err := add("discs", a.Discs); err != nil {
		return nil, err
	}
	return root, nil
}

// UnmarshalYAML parses a disc, which is just a sequence of tracks.
func (d *Disc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return &FormatError{Err: fmt.Errorf("line %d: disc must be a sequence of tracks", node.Line)}
	}
	var tracks []Track
	if err := node.Decode(&tracks); err != nil {
		return err
	}
	d.Tracks = tracks
	return nil
}

// MarshalYAML writes a disc as a bare sequence.
func (d Disc) MarshalYAML() (interface{}, error) {
	return d.Tracks, nil
}

// UnmarshalYAML parses a track: either a bare title string or a mapping.
func (t *Track) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var title Text
		if err := title.UnmarshalYAML(node); err != nil {
			return err
		}
		*t = Track{Title: title}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &FormatError{Err: fmt.Errorf("line %d: track must be a string or a mapping", node.Line)}
	}

	var aux struct {
		Title   Text   `yaml:"title"`
		Artist  *Text  `yaml:"artist"`
		Artists []Text `yaml:"artists"`
		Year    int    `yaml:"year"`
		Genre   Text   `yaml:"genre"`
		Comment Text   `yaml:"comment"`
		Lyrics  Text   `yaml:"lyrics"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}

	if aux.Title.IsZero() {
		return &FormatError{Err: fmt.Errorf("line %d: track is missing a \"title\" key", node.Line)}
	}
	if aux.Artist != nil && aux.Artists != nil {
		return &FormatError{Err: fmt.Errorf("line %d: \"artist\" and \"artists\" are mutually exclusive", node.Line)}
	}

	artists := aux.Artists
	if aux.Artist != nil {
		artists = []Text{*aux.Artist}
	}

	*t = Track{
		Title:   aux.Title,
		Artists: artists,
		Year:    aux.Year,
		Genre:   aux.Genre,
		Comment: aux.Comment,
		Lyrics:  aux.Lyrics,
	}
	return nil
}

// MarshalYAML writes a track, collapsing to a bare string when only the
// title is set.
func (t Track) MarshalYAML() (interface{}, error) {
	if t.Artists == nil && t.Year == 0 && t.Genre.IsZero() && t.Comment.IsZero() && t.Lyrics.IsZero() {
		return t.Title, nil
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value interface{}) error {
		var k, v yaml.Node
		if err := k.Encode(key); err != nil {
			return err
		}
		if err := v.Encode(value); err != nil {
			return err
		}
		root.Content = append(root.Content, &k, &v)
		return nil
	}

	if err := add("title", t.Title); err != nil {
		return nil, err
	}
	if len(t.Artists) == 1 {
		if err := add("artist", t.Artists[0]); err != nil {
			return nil, err
		}
	} else if t.Artists != nil {
		if err := add("artists", t.Artists); err != nil {
			return nil, err
		}
	}
	if t.Year != 0 {
		if err := add("year", t.Year); err != nil {
			return nil, err
		}
	}
	if !t.Genre.IsZero() {
		if err := add("genre", t.Genre); err != nil {
			return nil, err
		}
	}
	if !t.Comment.IsZero() {
		if err := add("comment", t.Comment); err != nil {
			return nil, err
		}
	}
	if !t.Lyrics.IsZero() {
		if err := add("lyrics", t.Lyrics); err != nil {
			return nil, err
		}
	}
	return root, nil
}

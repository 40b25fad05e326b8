package album

import "path/filepath"

// Directory layout inside an album folder. Audio files live in the
// folder itself; everything maestro generates goes under extras/.

// ExtrasPath returns <folder>/extras.
func ExtrasPath(folder string) string {
	return filepath.Join(folder, "extras")
}

// ManifestPath returns <folder>/extras/album.yaml.
func ManifestPath(folder string) string {
	return filepath.Join(folder, "extras", "album.yaml")
}

// ImagesPath returns <folder>/extras/images, where source cover art is
// kept.
func ImagesPath(folder string) string {
	return filepath.Join(folder, "extras", "images")
}

// CachePath returns <folder>/extras/.cache, the root for processed
// artifacts.
func CachePath(folder string) string {
	return filepath.Join(folder, "extras", ".cache")
}

// CoversPath returns the cache directory for full-size processed covers.
func CoversPath(folder string) string {
	return filepath.Join(folder, "extras", ".cache", "covers")
}

// CoversVWPath returns the cache directory for the small ASCII-export
// covers.
func CoversVWPath(folder string) string {
	return filepath.Join(folder, "extras", ".cache", "covers-vw")
}

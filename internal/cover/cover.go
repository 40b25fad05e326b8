// Package cover loads and prepares album cover art. Source images live
// in extras/images (or wherever the manifest's cover key points);
// processed versions are resized, re-encoded and cached under
// extras/.cache so repeated runs don't pay for the transform.
package cover

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"

	"github.com/kstrohbeck/maestro/internal/album"
)

// Pixel bounds for the two processed variants. The full cover is what
// gets embedded in tags; the vw cover is the small one used by the
// flattened car export.
const (
	fullSize = 1000
	vwSize   = 300
)

// frontCoverName is the base name looked up in extras/images.
const frontCoverName = "Front Cover"

var sourceExts = []string{".png", ".jpg", ".jpeg"}

// Image is processed cover art ready for embedding.
type Image struct {
	Data []byte
	MIME string
}

// Ext returns the file extension matching the image's MIME type.
func (i *Image) Ext() string {
	if i.MIME == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// ForAlbum returns the album's processed full-size cover, or nil when
// the album has none. The manifest's cover key overrides the default
// extras/images lookup.
func ForAlbum(folder string, a *album.Album) (*Image, error) {
	return load(folder, a, album.CoversPath(folder), transformFull)
}

// ForAlbumVW returns the small JPEG cover used by the vw export, or nil
// when the album has no cover.
func ForAlbumVW(folder string, a *album.Album) (*Image, error) {
	return load(folder, a, album.CoversVWPath(folder), transformVW)
}

func load(folder string, a *album.Album, cacheDir string, transform func(image.Image) (*Image, error)) (*Image, error) {
	if a.Cover != "" {
		src := a.Cover
		if !filepath.IsAbs(src) {
			src = filepath.Join(folder, filepath.FromSlash(a.Cover))
		}
		return processFile(src, transform)
	}
	return loadWithCache(album.ImagesPath(folder), cacheDir, frontCoverName, transform)
}

// loadWithCache finds <name>.<ext> in imagesDir, preferring an already
// processed copy in cacheDir. A processed image is written back to the
// cache, creating the cache directory if needed.
func loadWithCache(imagesDir, cacheDir, name string, transform func(image.Image) (*Image, error)) (*Image, error) {
	for _, ext := range sourceExts {
		cached := filepath.Join(cacheDir, name+ext)
		if data, err := os.ReadFile(cached); err == nil {
			return &Image{Data: data, MIME: mimeForExt(ext)}, nil
		}
	}

	for _, ext := range sourceExts {
		src := filepath.Join(imagesDir, name+ext)
		if _, err := os.Stat(src); err != nil {
			continue
		}

		img, err := processFile(src, transform)
		if err != nil {
			return nil, err
		}

		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cover cache: %w", err)
		}
		if err := os.WriteFile(filepath.Join(cacheDir, name+img.Ext()), img.Data, 0o644); err != nil {
			return nil, fmt.Errorf("cache cover: %w", err)
		}
		return img, nil
	}

	// No cover is not an error.
	return nil, nil
}

func processFile(path string, transform func(image.Image) (*Image, error)) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cover %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode cover %s: %w", path, err)
	}
	return transform(src)
}

// transformFull fits the image inside fullSize x fullSize and keeps
// whichever of PNG and JPEG encodes smaller.
func transformFull(src image.Image) (*Image, error) {
	resized := fitWithin(src, fullSize)

	var pngBuf, jpegBuf bytes.Buffer
	if err := png.Encode(&pngBuf, resized); err != nil {
		return nil, fmt.Errorf("encode cover as png: %w", err)
	}
	if err := jpeg.Encode(&jpegBuf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode cover as jpeg: %w", err)
	}

	if pngBuf.Len() <= jpegBuf.Len() {
		return &Image{Data: pngBuf.Bytes(), MIME: "image/png"}, nil
	}
	return &Image{Data: jpegBuf.Bytes(), MIME: "image/jpeg"}, nil
}

// transformVW fits the image inside vwSize x vwSize as JPEG; car head
// units only handle small baseline JPEGs.
func transformVW(src image.Image) (*Image, error) {
	resized := fitWithin(src, vwSize)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode cover as jpeg: %w", err)
	}
	return &Image{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// fitWithin scales the image (up or down) so its larger dimension
// equals max, preserving aspect ratio.
func fitWithin(src image.Image, max int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}
	var nw, nh uint
	if w >= h {
		nw = uint(max)
		nh = uint(h * max / w)
	} else {
		nh = uint(max)
		nw = uint(w * max / h)
	}
	return resize.Resize(nw, nh, src, resize.Lanczos3)
}

func mimeForExt(ext string) string {
	if ext == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}

package plate

import (
	"bytes"
	"encoding/base64"
	"path"
	"strings"
)

// Asset is resolved image or graphic data.
type Asset struct {
	MediaType string
	Data      []byte
}

// IsSVG reports whether the asset holds vector markup.
func (a Asset) IsSVG() bool {
	if a.MediaType == MediaSVG {
		return true
	}
	d := bytes.TrimSpace(a.Data)
	return bytes.HasPrefix(d, []byte("<svg")) || bytes.HasPrefix(d, []byte("<?xml"))
}

// DataURI encodes the asset for embedding in an href.
func (a Asset) DataURI() string {
	return "data:" + a.MediaType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Assets resolves references to asset data. Implementations must be safe for
// concurrent reads; the renderer never modifies them.
type Assets interface {
	Lookup(ref string) (Asset, bool)
}

// AssetMap is an in-memory asset snapshot keyed by reference.
type AssetMap map[string]Asset

// Lookup implements Assets.
func (m AssetMap) Lookup(ref string) (Asset, bool) {
	a, ok := m[ref]
	return a, ok
}

// Media types recognised by extension.
const (
	MediaSVG  = "image/svg+xml"
	MediaPNG  = "image/png"
	MediaJPEG = "image/jpeg"
)

// MediaTypeOf guesses a media type from a reference's extension.
func MediaTypeOf(ref string) string {
	switch strings.ToLower(path.Ext(ref)) {
	case ".svg":
		return MediaSVG
	case ".png":
		return MediaPNG
	case ".jpg", ".jpeg":
		return MediaJPEG
	}
	return "application/octet-stream"
}

func isRaster(ref string) bool {
	switch MediaTypeOf(ref) {
	case MediaPNG, MediaJPEG:
		return true
	}
	return false
}

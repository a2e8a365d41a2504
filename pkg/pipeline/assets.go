package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/bedforge/pkg/render/plate"
)

// AssetDir is an immutable asset snapshot loaded from a directory tree.
// References resolve by slash-separated path relative to the root, then by
// base name when that is unambiguous.
type AssetDir struct {
	root   string
	assets plate.AssetMap
	byBase map[string]string
	digest string
}

// LoadAssets reads every SVG, PNG and JPEG file below dir.
func LoadAssets(dir string) (*AssetDir, error) {
	a := &AssetDir{
		root:   dir,
		assets: make(plate.AssetMap),
		byBase: make(map[string]string),
	}
	ambiguous := make(map[string]bool)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isAssetFile(p) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		ref := filepath.ToSlash(rel)
		a.assets[ref] = plate.Asset{MediaType: plate.MediaTypeOf(ref), Data: data}

		base := path.Base(ref)
		if _, seen := a.byBase[base]; seen {
			ambiguous[base] = true
		}
		a.byBase[base] = ref
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load assets from %s: %w", dir, err)
	}
	for base := range ambiguous {
		delete(a.byBase, base)
	}
	a.digest = a.computeDigest()
	return a, nil
}

func isAssetFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".svg", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// Lookup implements plate.Assets.
func (a *AssetDir) Lookup(ref string) (plate.Asset, bool) {
	ref = strings.TrimPrefix(filepath.ToSlash(ref), "./")
	if asset, ok := a.assets[ref]; ok {
		return asset, true
	}
	if full, ok := a.byBase[path.Base(ref)]; ok {
		return a.assets[full], true
	}
	return plate.Asset{}, false
}

// Len returns the number of loaded assets.
func (a *AssetDir) Len() int { return len(a.assets) }

// Root returns the directory the assets were loaded from.
func (a *AssetDir) Root() string { return a.root }

// Digest fingerprints the snapshot so drawings that embed assets can be cached.
func (a *AssetDir) Digest() string { return a.digest }

func (a *AssetDir) computeDigest() string {
	refs := make([]string, 0, len(a.assets))
	for ref := range a.assets {
		refs = append(refs, ref)
	}
	slices.Sort(refs)

	h := sha256.New()
	for _, ref := range refs {
		sum := sha256.Sum256(a.assets[ref].Data)
		h.Write([]byte(ref))
		h.Write([]byte{0})
		h.Write(sum[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

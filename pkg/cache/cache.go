// Package cache stores rendered bed artifacts keyed by a hash of their inputs.
//
// Rendering is deterministic, so the same template, bed content, seed and
// output format always produce the same bytes. The pipeline uses that to skip
// work across runs. Three backends are provided:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared cache for several server instances
//
// Keys are produced by a [Keyer] so callers can namespace them with
// [NewScopedKeyer].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	DrawingTTL  = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// DrawingKeyOpts identifies the inputs of one bed drawing besides its content.
type DrawingKeyOpts struct {
	TemplateHash string `json:"template"`
	Seed         uint64 `json:"seed"`
	BedIndex     int    `json:"bed"`
	Metadata     bool   `json:"metadata"`
}

// ArtifactKeyOpts identifies an exported file derived from a drawing.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// DrawingKey keys the SVG drawing of one bed.
	DrawingKey(contentHash string, opts DrawingKeyOpts) string
	// ArtifactKey keys an exported file (svg, pdf, png) of a drawing.
	ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DrawingKey returns "drawing:<sha256>".
func (DefaultKeyer) DrawingKey(contentHash string, opts DrawingKeyOpts) string {
	return hashKey("drawing", contentHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), drawingHash, opts)
}

var _ Keyer = DefaultKeyer{}

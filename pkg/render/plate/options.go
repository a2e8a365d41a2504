package plate

import "github.com/matzehuels/bedforge/pkg/geom"

// Tile places one slot explicitly, overriding the tiling formula. Nesting
// strategies use it when parts do not sit on the template's grid.
type Tile struct {
	Row    int
	Col    int
	Origin geom.Point
}

// Option configures RenderBed.
type Option func(*config)

type config struct {
	assets   Assets
	tiles    map[int]Tile
	metadata bool
	bedIndex int
}

// WithAssets sets the asset snapshot used to resolve image and graphic references.
func WithAssets(a Assets) Option { return func(c *config) { c.assets = a } }

// WithTiles positions the given slots explicitly.
func WithTiles(tiles map[int]Tile) Option { return func(c *config) { c.tiles = tiles } }

// WithoutMetadata omits the descriptive comments from the drawing.
func WithoutMetadata() Option { return func(c *config) { c.metadata = false } }

// WithBedIndex records the bed's position in its job in the metadata comments.
func WithBedIndex(i int) Option { return func(c *config) { c.bedIndex = i } }

func newConfig(opts ...Option) config {
	c := config{metadata: true, bedIndex: -1}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

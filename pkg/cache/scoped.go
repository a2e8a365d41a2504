package cache

// ScopedKeyer wraps a Keyer with a prefix, so several tenants or
// environments can share one Redis instance:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "shop-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DrawingKey generates a prefixed drawing key.
func (k *ScopedKeyer) DrawingKey(contentHash string, opts DrawingKeyOpts) string {
	return k.prefix + k.inner.DrawingKey(contentHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(drawingHash, opts)
}

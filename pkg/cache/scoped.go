package cache

// ScopedKeyer wraps a Keyer with a prefix, so entries written under one
// scope are never read under another. The CLI scopes keys by build version
// because the reduced table layout may change between releases.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), buildinfo.CacheScope())
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

// ReduceKey generates a prefixed key for reduced tables.
func (k *ScopedKeyer) ReduceKey(fingerprint string, opts ReduceKeyOpts) string {
	return k.prefix + k.inner.ReduceKey(fingerprint, opts)
}

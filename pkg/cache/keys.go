package cache

// tableVersion changes whenever the layout of a reduced table changes, so
// tables cached by an older build are not read back.
const tableVersion = 2

// ReduceKeyOpts are the reduction options that change a reduced table.
type ReduceKeyOpts struct {
	Year           int     `json:"year"`
	Mode           string  `json:"mode"`
	MergeThreshold float64 `json:"merge_threshold"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ReduceKey returns the key of a reduced table of the inputs identified
	// by fingerprint.
	ReduceKey(fingerprint string, opts ReduceKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReduceKey implements Keyer.
func (DefaultKeyer) ReduceKey(fingerprint string, opts ReduceKeyOpts) string {
	return hashKey("reduce", tableVersion, fingerprint, opts)
}

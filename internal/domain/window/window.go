// Package window provides fixed-width time bucket arithmetic for the
// aggregator. Buckets are addressed by an integer index so that window
// lookup is a single map access, independent of entity count.
package window

import "time"

// DefaultWidth is the default bucket width.
const DefaultWidth = time.Hour

// Width is a fixed bucket width. All index math is derived from it.
type Width time.Duration

// New returns a Width, falling back to DefaultWidth for non-positive input.
func New(d time.Duration) Width {
	if d <= 0 {
		return Width(DefaultWidth)
	}
	return Width(d)
}

// Duration returns the bucket width as a time.Duration.
func (w Width) Duration() time.Duration {
	return time.Duration(w)
}

// Index returns the bucket index containing ts: floor(unixNano / width).
func (w Width) Index(ts time.Time) int64 {
	n := ts.UnixNano()
	d := int64(w)
	idx := n / d
	if n < 0 && n%d != 0 {
		idx-- // floor division for pre-epoch timestamps
	}
	return idx
}

// Start returns the inclusive start instant of bucket idx.
func (w Width) Start(idx int64) time.Time {
	return time.Unix(0, idx*int64(w))
}

// End returns the exclusive end instant of bucket idx.
func (w Width) End(idx int64) time.Time {
	return time.Unix(0, (idx+1)*int64(w))
}

// Midpoint returns the midpoint instant of bucket idx. Decay ages are
// measured from the midpoint so a bucket's contribution is unbiased with
// respect to where inside the bucket its observations landed.
func (w Width) Midpoint(idx int64) time.Time {
	return time.Unix(0, idx*int64(w)+int64(w)/2)
}

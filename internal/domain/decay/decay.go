// Package decay implements the exponential time-decay weighting used by
// the trend scoring engine.
//
// A unit of weight observed Δt ago contributes exp(-Δt/τ) to the score,
// where τ is the configured half-life interval. Contributions that decay
// below a configured epsilon are clamped to zero so stale windows can be
// pruned without changing any score.
package decay

import (
	"math"
	"time"
)

// Default decay configuration constants.
const (
	DefaultHalfLife = 6 * time.Hour
	DefaultEpsilon  = 1e-9
)

// Decay computes time-decay weights for a fixed half-life and epsilon.
// The zero value is not usable; construct with New.
type Decay struct {
	halfLife time.Duration
	epsilon  float64
}

// Option applies a configuration option to a Decay.
type Option func(*Decay)

// WithHalfLife sets the decay half-life interval.
func WithHalfLife(halfLife time.Duration) Option {
	return func(d *Decay) {
		if halfLife > 0 {
			d.halfLife = halfLife
		}
	}
}

// WithEpsilon sets the underflow clamp. Weights below epsilon are
// treated as zero.
func WithEpsilon(epsilon float64) Option {
	return func(d *Decay) {
		if epsilon > 0 && epsilon < 1 {
			d.epsilon = epsilon
		}
	}
}

// New constructs a Decay with configuration options.
func New(opts ...Option) *Decay {
	d := &Decay{
		halfLife: DefaultHalfLife,
		epsilon:  DefaultEpsilon,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// HalfLife returns the configured half-life interval.
func (d *Decay) HalfLife() time.Duration {
	return d.halfLife
}

// Weight returns the decay factor for an age of elapsed. Ages at or
// below zero return 1. Results below epsilon clamp to 0.
func (d *Decay) Weight(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1.0
	}

	w := math.Exp(-float64(elapsed) / float64(d.halfLife))
	if w < d.epsilon {
		return 0
	}
	return w
}

// Factor returns the raw decay factor between two instants, without the
// epsilon clamp. It is used to re-age a memoized score: with pure
// exponential decay, score(t2) = score(t1) * Factor(t1, t2) when no
// observations arrived in between.
func (d *Decay) Factor(from, to time.Time) float64 {
	elapsed := to.Sub(from)
	if elapsed <= 0 {
		return 1.0
	}
	return math.Exp(-float64(elapsed) / float64(d.halfLife))
}

// Horizon returns the age beyond which a unit weight decays below
// epsilon. Windows older than the horizon contribute nothing and may be
// dropped.
func (d *Decay) Horizon() time.Duration {
	// exp(-h/τ) = ε  =>  h = τ * ln(1/ε)
	return time.Duration(float64(d.halfLife) * math.Log(1/d.epsilon))
}
